// Copyright 2023 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"

	"github.com/cockroachdb/ldp-membership-index/internal/membership"
)

var clearIndexForce bool

var clearIndexCmd = &cobra.Command{
	Use:   "clear-index",
	Short: "Truncate both the committed and staging relations",
	Long: `clear-index truncates the entire membership index, committed rows and
pending staging rows alike. It is a destructive, test/administrative-only
operation and requires --force.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearIndexForce {
			return errNeedsForce
		}
		ctx := cmd.Context()
		mgr, db, err := membership.Open(ctx, &cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		return mgr.ClearIndex(ctx, db)
	},
}

func init() {
	clearIndexCmd.Flags().BoolVar(&clearIndexForce, "force", false,
		"required acknowledgement that this command is destructive")
}
