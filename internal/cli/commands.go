// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/roommatch/internal/logging"
	"github.com/tomtom215/roommatch/internal/match"
	"github.com/tomtom215/roommatch/internal/match/engine"
)

func parseID(arg, name string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, arg)
	}
	return id, nil
}

func newMatchCommand(a *app) *cobra.Command {
	var (
		req engine.GroupRequest
		top int
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Partition the population into roommate groups",
		Long: `Run a matching batch and print the ranked options as JSON.

Examples:
  roommatch match
  roommatch match --runs 100 --seed 7
  roommatch match --ids 1,2,3,4,5,6 --top 1`,
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			ctx := logging.ContextWithNewCorrelationID(cmd.Context())
			eng, err := a.openEngine(ctx)
			if err != nil {
				return err
			}

			resp, err := eng.MatchGroups(ctx, req)
			if err != nil {
				return fmt.Errorf("match groups: %w", err)
			}
			if top > 0 && len(resp.Options) > top {
				resp.Options = resp.Options[:top]
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		}),
	}

	cmd.Flags().IntVarP(&req.Runs, "runs", "r", 0, "shuffled runs (0 uses the configured default)")
	cmd.Flags().Int64Var(&req.Seed, "seed", 0, "seed to reproduce a batch (0 draws one)")
	cmd.Flags().Int64SliceVar(&req.IDs, "ids", nil, "match only these person ids")
	cmd.Flags().IntVarP(&top, "top", "n", 0, "print only the best n options")
	return cmd
}

func newRecommendCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recommend <subject-id>",
		Short: "Rank roommate candidates for one person",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			subject, err := parseID(args[0], "subject-id")
			if err != nil {
				return err
			}

			ctx := logging.ContextWithNewCorrelationID(cmd.Context())
			eng, err := a.openEngine(ctx)
			if err != nil {
				return err
			}

			resp, err := eng.Recommend(ctx, engine.RecommendRequest{SubjectID: subject, Limit: limit})
			if err != nil {
				return fmt.Errorf("recommend: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		}),
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "result size (0 uses the configured default)")
	return cmd
}

func newScoreCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "score <subject-id> <target-id>",
		Short: "Show the directional similarity breakdown for a pair",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			subject, err := parseID(args[0], "subject-id")
			if err != nil {
				return err
			}
			target, err := parseID(args[1], "target-id")
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			eng, err := a.openEngine(ctx)
			if err != nil {
				return err
			}

			result, err := eng.Score(ctx, subject, target)
			if err != nil {
				return fmt.Errorf("score: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), result)
		}),
	}
}

func newFeedbackCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "feedback <subject-id> <target-id> <accepted|request_sent|rejected>",
		Short: "Adapt a person's weights from a match outcome",
		Args:  cobra.ExactArgs(3),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			subject, err := parseID(args[0], "subject-id")
			if err != nil {
				return err
			}
			target, err := parseID(args[1], "target-id")
			if err != nil {
				return err
			}
			outcome, err := match.ParseOutcome(strings.ToUpper(args[2]))
			if err != nil {
				return err
			}

			ctx := logging.ContextWithNewCorrelationID(cmd.Context())
			eng, err := a.openEngine(ctx)
			if err != nil {
				return err
			}

			resp, err := eng.ApplyFeedback(ctx, engine.FeedbackRequest{SubjectID: subject, TargetID: target, Outcome: outcome})
			if err != nil {
				return fmt.Errorf("apply feedback: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		}),
	}
}

func newHistoryCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <subject-id>",
		Short: "List applied feedback for a person, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			subject, err := parseID(args[0], "subject-id")
			if err != nil {
				return err
			}
			if err := a.openData(); err != nil {
				return err
			}

			entries, err := a.store.ListFeedback(cmd.Context(), subject, limit)
			if err != nil {
				return fmt.Errorf("list feedback: %w", err)
			}
			if entries == nil {
				entries = []match.FeedbackEntry{}
			}
			return writeJSON(cmd.OutOrStdout(), entries)
		}),
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries (0 lists all)")
	return cmd
}

func newRejectCommand(a *app) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "reject <from-id> <to-id>",
		Short: "Record that one person rejected or declined another",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			from, err := parseID(args[0], "from-id")
			if err != nil {
				return err
			}
			to, err := parseID(args[1], "to-id")
			if err != nil {
				return err
			}
			if err := a.openData(); err != nil {
				return err
			}

			rejection := match.Rejection{FromID: from, ToID: to, Status: match.RejectionStatus(strings.ToUpper(status))}
			if err := a.db.AddRejection(cmd.Context(), rejection); err != nil {
				return fmt.Errorf("add rejection: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), rejection)
		}),
	}

	cmd.Flags().StringVar(&status, "status", string(match.StatusRejected), "rejected or declined")
	return cmd
}

func newSeedCommand(a *app) *cobra.Command {
	var (
		count int
		seed  int64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert a generated demo population",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1, got %d", count)
			}
			if err := a.openData(); err != nil {
				return err
			}
			if err := a.db.Seed(cmd.Context(), count, seed); err != nil {
				return err
			}

			total, err := a.db.Count(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"inserted":   count,
				"seed":       seed,
				"population": total,
			})
		}),
	}

	cmd.Flags().IntVarP(&count, "count", "n", 50, "people to generate")
	cmd.Flags().Int64Var(&seed, "seed", 1, "generator seed")
	return cmd
}
