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
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cockroachdb/ldp-membership-index/internal/membership"
)

// statusTargets holds one driver=dataSource pair per data source to
// smoke-check. Flags are repeatable: --target sqlite=... --target pgx=...
var statusTargets []string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Open and ping every configured platform's data source concurrently",
	Long: `status connects to every --target given (or the single configured
dataSource if none are given) and reports whether each is reachable and
what platform it was detected as. Targets are probed concurrently.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		targets := statusTargets
		if len(targets) == 0 {
			targets = []string{cfg.Driver + "=" + cfg.DataSource}
		}

		group, ctx := errgroup.WithContext(cmd.Context())
		results := make([]string, len(targets))
		for i, t := range targets {
			i, t := i, t
			group.Go(func() error {
				driver, dsn, err := splitTarget(t)
				if err != nil {
					results[i] = fmt.Sprintf("%s: %v", t, err)
					return nil
				}
				c := cfg
				c.Driver = driver
				c.DataSource = dsn
				c.Platform = ""
				mgr, db, err := membership.Open(ctx, &c)
				if err != nil {
					results[i] = fmt.Sprintf("%s: unreachable: %v", t, err)
					return nil
				}
				defer db.Close()
				results[i] = fmt.Sprintf("%s: ok, platform=%s", t, mgr.Platform())
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return err
		}
		for _, r := range results {
			fmt.Fprintln(cmd.OutOrStdout(), r)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringArrayVar(&statusTargets, "target", nil,
		"driver=dataSource pair to probe; may be repeated")
}

func splitTarget(t string) (driver, dsn string, err error) {
	for i := 0; i < len(t); i++ {
		if t[i] == '=' {
			return t[:i], t[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("target %q is not in driver=dataSource form", t)
}
