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

var initSchemaCmd = &cobra.Command{
	Use:   "init-schema",
	Short: "Apply the membership index DDL for the configured platform",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		mgr, db, err := membership.Open(ctx, &cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		return mgr.InitSchema(ctx)
	},
}
