// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/roommatch/internal/config"
	"github.com/tomtom215/roommatch/internal/match"
	"github.com/tomtom215/roommatch/internal/match/engine"
	"github.com/tomtom215/roommatch/internal/match/similarity"
)

// setupEnv points every command at throwaway storage with events off.
func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DUCKDB_PATH", filepath.Join(dir, "roommatch.duckdb"))
	t.Setenv("BADGER_PATH", filepath.Join(dir, "weights"))
	t.Setenv("BADGER_IN_MEMORY", "false")
	t.Setenv("NATS_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv(config.ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("%v: error = %v", args, err)
	}
	return out
}

func decode(t *testing.T, out string, v interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
}

func TestSeedCommand(t *testing.T) {
	setupEnv(t)

	var got struct {
		Inserted   int   `json:"inserted"`
		Seed       int64 `json:"seed"`
		Population int   `json:"population"`
	}
	decode(t, mustExecute(t, "seed", "--count", "12", "--seed", "3"), &got)

	if got.Inserted != 12 || got.Population != 12 || got.Seed != 3 {
		t.Errorf("seed output = %+v, want 12 inserted with seed 3", got)
	}

	if _, err := execute(t, "seed", "--count", "0"); err == nil {
		t.Error("seed --count 0 should fail")
	}
}

func TestMatchCommand(t *testing.T) {
	setupEnv(t)
	mustExecute(t, "seed", "--count", "12")

	var resp engine.GroupResponse
	decode(t, mustExecute(t, "match", "--runs", "3", "--seed", "11"), &resp)

	if resp.Metadata.Population != 12 {
		t.Errorf("Population = %d, want 12", resp.Metadata.Population)
	}
	if resp.Metadata.Runs != 3 {
		t.Errorf("Runs = %d, want 3", resp.Metadata.Runs)
	}
	if len(resp.Options) == 0 {
		t.Fatal("expected at least one option")
	}
	for i, opt := range resp.Options {
		if opt.Rank != i+1 {
			t.Errorf("Options[%d].Rank = %d, want %d", i, opt.Rank, i+1)
		}
	}

	decode(t, mustExecute(t, "match", "--runs", "3", "--seed", "11", "--top", "1"), &resp)
	if len(resp.Options) != 1 {
		t.Errorf("--top 1 printed %d options", len(resp.Options))
	}
}

func TestMatchCommandCohort(t *testing.T) {
	setupEnv(t)
	mustExecute(t, "seed", "--count", "12")

	var resp engine.GroupResponse
	decode(t, mustExecute(t, "match", "--runs", "2", "--seed", "5", "--ids", "1,2,3,4"), &resp)
	if resp.Metadata.Population != 4 {
		t.Errorf("Population = %d, want 4", resp.Metadata.Population)
	}

	if _, err := execute(t, "match", "--ids", "1,999"); err == nil {
		t.Error("match with an unknown id should fail")
	}
}

func TestRecommendCommand(t *testing.T) {
	setupEnv(t)
	mustExecute(t, "seed", "--count", "10")

	var resp engine.RecommendResponse
	decode(t, mustExecute(t, "recommend", "1", "--limit", "3"), &resp)

	if resp.SubjectID != 1 {
		t.Errorf("SubjectID = %d, want 1", resp.SubjectID)
	}
	if len(resp.Recommendations) != 3 {
		t.Fatalf("len(Recommendations) = %d, want 3", len(resp.Recommendations))
	}
	for _, r := range resp.Recommendations {
		if r.ID == 1 {
			t.Error("subject recommended to itself")
		}
	}
}

func TestRejectExcludesFromRecommendations(t *testing.T) {
	setupEnv(t)
	mustExecute(t, "seed", "--count", "5")

	var rejection match.Rejection
	decode(t, mustExecute(t, "reject", "2", "1", "--status", "declined"), &rejection)
	if rejection.Status != match.StatusDeclined {
		t.Errorf("Status = %q, want %q", rejection.Status, match.StatusDeclined)
	}

	var resp engine.RecommendResponse
	decode(t, mustExecute(t, "recommend", "1"), &resp)
	for _, r := range resp.Recommendations {
		if r.ID == 2 {
			t.Error("rejected candidate 2 still recommended to 1")
		}
	}
}

func TestScoreCommand(t *testing.T) {
	setupEnv(t)
	mustExecute(t, "seed", "--count", "4")

	var result similarity.Result
	decode(t, mustExecute(t, "score", "1", "2"), &result)
	if result.Similarity < 0 || result.Similarity > 1 {
		t.Errorf("Similarity = %v, want within [0, 1]", result.Similarity)
	}
	if len(result.Breakdown) == 0 {
		t.Error("expected a per-attribute breakdown")
	}
}

func TestFeedbackAndHistory(t *testing.T) {
	setupEnv(t)
	mustExecute(t, "seed", "--count", "4")

	var resp engine.FeedbackResponse
	decode(t, mustExecute(t, "feedback", "1", "2", "accepted"), &resp)
	if !resp.Persisted {
		t.Error("Persisted = false, want true")
	}
	if resp.Outcome != match.OutcomeAccepted {
		t.Errorf("Outcome = %q, want %q", resp.Outcome, match.OutcomeAccepted)
	}

	var entries []match.FeedbackEntry
	decode(t, mustExecute(t, "history", "1"), &entries)
	if len(entries) != 1 {
		t.Fatalf("history has %d entries, want 1", len(entries))
	}
	if entries[0].TargetID != 2 {
		t.Errorf("TargetID = %d, want 2", entries[0].TargetID)
	}

	decode(t, mustExecute(t, "history", "3"), &entries)
	if len(entries) != 0 {
		t.Errorf("history for 3 has %d entries, want 0", len(entries))
	}
}

func TestInvalidArguments(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"non numeric id", []string{"recommend", "abc"}, "subject-id"},
		{"zero id", []string{"score", "0", "1"}, "subject-id"},
		{"negative target", []string{"score", "--", "1", "-4"}, "target-id"},
		{"non numeric target", []string{"score", "1", "x"}, "target-id"},
		{"unknown outcome", []string{"feedback", "1", "2", "maybe"}, "outcome"},
		{"missing args", []string{"feedback", "1"}, "accepts 3 arg"},
		{"self rejection", []string{"reject", "1", "1"}, "to_id"},
		{"bad status", []string{"reject", "1", "2", "--status", "ignored"}, "status"},
		{"bad log level", []string{"--log-level", "loud", "seed"}, "log-level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatalf("%v: expected error", tt.args)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestEmbeddedServerOptions(t *testing.T) {
	tests := []struct {
		url      string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"", "", 0, false},
		{"nats://127.0.0.1:4333", "127.0.0.1", 4333, false},
		{"nats://localhost", "localhost", 0, false},
		{"nats://host:notaport", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			opts, err := embeddedServerOptions(&config.NATSConfig{URL: tt.url, StoreDir: "js"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if opts.Host != tt.wantHost || opts.Port != tt.wantPort {
				t.Errorf("opts = %s:%d, want %s:%d", opts.Host, opts.Port, tt.wantHost, tt.wantPort)
			}
			if opts.StoreDir != "js" {
				t.Errorf("StoreDir = %q, want js", opts.StoreDir)
			}
		})
	}
}
