// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package main

import (
	"os"

	"github.com/tomtom215/roommatch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
