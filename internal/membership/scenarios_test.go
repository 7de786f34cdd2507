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

package membership

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return tm
}

// S1: add + commit + query.
func TestScenarioAddCommitQuery(t *testing.T) {
	mgr, db := newTestManager(t)
	ctx := context.Background()

	trip := Triple{Subject: NewId("s/1"), Property: "p/member", Object: NewId("o/1")}
	require.NoError(t, mgr.WithTransaction(ctx, func(ctx context.Context, q Querier) error {
		if err := mgr.AddMembership(ctx, q, "tx1", "src/A", trip, mustTime(t, "2024-01-01T00:00:00Z")); err != nil {
			return err
		}
		return mgr.Commit(ctx, q, "tx1")
	}))

	rows, err := mgr.GetMembership(ctx, db, "", NewId("s/1"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "p/member", rows[0].Property)
	require.Equal(t, "o/1", rows[0].Object)
	require.True(t, rows[0].Live())
}

// S2: end within the same transaction withdraws the pending add; no
// row ever reaches the committed table.
func TestScenarioEndWithinSameTxIsWithdrawal(t *testing.T) {
	mgr, db := newTestManager(t)
	ctx := context.Background()

	trip := Triple{Subject: NewId("s/2"), Property: "p/m", Object: NewId("o/2")}
	t0 := mustTime(t, "2024-01-01T00:00:00Z")
	t1 := mustTime(t, "2024-02-01T00:00:00Z")

	require.NoError(t, mgr.WithTransaction(ctx, func(ctx context.Context, q Querier) error {
		if err := mgr.AddMembership(ctx, q, "tx2", "src/A", trip, t0); err != nil {
			return err
		}
		if err := mgr.EndMembership(ctx, q, "tx2", "src/A", trip, t1); err != nil {
			return err
		}
		return mgr.Commit(ctx, q, "tx2")
	}))

	rows, err := mgr.GetMembership(ctx, db, "", NewId("s/2"))
	require.NoError(t, err)
	require.Empty(t, rows)

	staging, err := mgr.DumpStaging(ctx, db)
	require.NoError(t, err)
	for _, s := range staging {
		require.NotEqual(t, "tx2", s.TxID)
	}
}

// S3: end-dating a previously committed triple preserves its memento
// view while removing it from the live view.
func TestScenarioEndDatePreviouslyCommitted(t *testing.T) {
	mgr, db := newTestManager(t)
	ctx := context.Background()

	trip := Triple{Subject: NewId("s/1"), Property: "p/member", Object: NewId("o/1")}
	require.NoError(t, mgr.WithTransaction(ctx, func(ctx context.Context, q Querier) error {
		if err := mgr.AddMembership(ctx, q, "tx1", "src/A", trip, mustTime(t, "2024-01-01T00:00:00Z")); err != nil {
			return err
		}
		return mgr.Commit(ctx, q, "tx1")
	}))

	require.NoError(t, mgr.WithTransaction(ctx, func(ctx context.Context, q Querier) error {
		if err := mgr.EndMembership(ctx, q, "tx3", "src/A", trip, mustTime(t, "2024-06-01T00:00:00Z")); err != nil {
			return err
		}
		return mgr.Commit(ctx, q, "tx3")
	}))

	live, err := mgr.GetMembership(ctx, db, "", NewId("s/1"))
	require.NoError(t, err)
	require.Empty(t, live)

	march, err := mgr.GetMembership(ctx, db, "", NewMementoId("s/1", mustTime(t, "2024-03-01T00:00:00Z")))
	require.NoError(t, err)
	require.Len(t, march, 1)

	july, err := mgr.GetMembership(ctx, db, "", NewMementoId("s/1", mustTime(t, "2024-07-01T00:00:00Z")))
	require.NoError(t, err)
	require.Empty(t, july)
}

// S4: ending every live triple from a source end-dates all of them and
// leaves none live.
func TestScenarioEndMembershipForSource(t *testing.T) {
	mgr, db := newTestManager(t)
	ctx := context.Background()

	t0 := mustTime(t, "2024-01-01T00:00:00Z")
	tripA := Triple{Subject: NewId("s/b1"), Property: "p/m", Object: NewId("o/b1")}
	tripB := Triple{Subject: NewId("s/b2"), Property: "p/m", Object: NewId("o/b2")}

	require.NoError(t, mgr.WithTransaction(ctx, func(ctx context.Context, q Querier) error {
		if err := mgr.AddMembership(ctx, q, "tx4a", "src/B", tripA, t0); err != nil {
			return err
		}
		if err := mgr.AddMembership(ctx, q, "tx4a", "src/B", tripB, t0); err != nil {
			return err
		}
		return mgr.Commit(ctx, q, "tx4a")
	}))

	tEnd := mustTime(t, "2024-05-01T00:00:00Z")
	require.NoError(t, mgr.WithTransaction(ctx, func(ctx context.Context, q Querier) error {
		if err := mgr.EndMembershipForSource(ctx, q, "tx4", "src/B", tEnd); err != nil {
			return err
		}
		return mgr.Commit(ctx, q, "tx4")
	}))

	for _, subj := range []string{"s/b1", "s/b2"} {
		rows, err := mgr.GetMembership(ctx, db, "", NewId(subj))
		require.NoError(t, err)
		require.Empty(t, rows)
	}

	all, err := mgr.DumpMembership(ctx, db)
	require.NoError(t, err)
	for _, r := range all {
		if r.Source == "src/B" {
			require.True(t, r.EndTime.Equal(tEnd))
		}
	}
}

// S5: force-deleting everything after a timestamp removes matching
// rows outright and leaves the rest untouched.
func TestScenarioDeleteForSourceAfter(t *testing.T) {
	mgr, db := newTestManager(t)
	ctx := context.Background()

	star := mustTime(t, "2024-06-01T00:00:00Z")
	require.NoError(t, mgr.WithTransaction(ctx, func(ctx context.Context, q Querier) error {
		early := Triple{Subject: NewId("s/c1"), Property: "p/m", Object: NewId("o/c1")}
		if err := mgr.AddMembershipBounded(ctx, q, "tx5a", "src/C", early,
			mustTime(t, "2024-01-01T00:00:00Z"), mustTime(t, "2024-03-01T00:00:00Z")); err != nil {
			return err
		}
		straddle := Triple{Subject: NewId("s/c2"), Property: "p/m", Object: NewId("o/c2")}
		if err := mgr.AddMembership(ctx, q, "tx5a", "src/C", straddle, mustTime(t, "2024-05-01T00:00:00Z")); err != nil {
			return err
		}
		late := Triple{Subject: NewId("s/c3"), Property: "p/m", Object: NewId("o/c3")}
		if err := mgr.AddMembership(ctx, q, "tx5a", "src/C", late, mustTime(t, "2024-07-01T00:00:00Z")); err != nil {
			return err
		}
		return mgr.Commit(ctx, q, "tx5a")
	}))

	require.NoError(t, mgr.WithTransaction(ctx, func(ctx context.Context, q Querier) error {
		if err := mgr.DeleteMembershipForSourceAfter(ctx, q, "tx5", "src/C", star); err != nil {
			return err
		}
		return mgr.Commit(ctx, q, "tx5")
	}))

	all, err := mgr.DumpMembership(ctx, db)
	require.NoError(t, err)
	bySubject := map[string]Row{}
	for _, r := range all {
		if r.Source == "src/C" {
			bySubject[r.Subject] = r
		}
	}
	_, stillThere := bySubject["s/c1"]
	require.True(t, stillThere, "row ending before the cutoff must survive")
	_, gone1 := bySubject["s/c2"]
	require.False(t, gone1, "row with end_time >= cutoff must be force-deleted")
	_, gone2 := bySubject["s/c3"]
	require.False(t, gone2, "row starting after the cutoff must be force-deleted")
}

// S6: rollback leaves no trace, committed or staged.
func TestScenarioRollbackLeavesNoTrace(t *testing.T) {
	mgr, db := newTestManager(t)
	ctx := context.Background()

	trip := Triple{Subject: NewId("s/d1"), Property: "p/m", Object: NewId("o/d1")}
	require.NoError(t, mgr.WithTransaction(ctx, func(ctx context.Context, q Querier) error {
		if err := mgr.AddMembership(ctx, q, "tx6", "src/D", trip, mustTime(t, "2024-01-01T00:00:00Z")); err != nil {
			return err
		}
		return mgr.Rollback(ctx, q, "tx6")
	}))

	rows, err := mgr.GetMembership(ctx, db, "", NewId("s/d1"))
	require.NoError(t, err)
	require.Empty(t, rows)

	staging, err := mgr.DumpStaging(ctx, db)
	require.NoError(t, err)
	for _, s := range staging {
		require.NotEqual(t, "tx6", s.TxID)
	}
}
