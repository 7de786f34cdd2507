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
	"time"

	log "github.com/sirupsen/logrus"
)

// AddMembership stages an ADD. It first removes any pending DELETE for
// the same identity key in the same transaction, so that "delete then
// add" within one transaction collapses to a no-op, then inserts an
// ADD staging row with EndTime = NoEnd.
func (m *Manager) AddMembership(ctx context.Context, q Querier, txID, source string, t Triple, start time.Time) error {
	return m.timed("add_membership", func() error {
		return m.addMembership(ctx, q, txID, source, t, start, NoEnd)
	})
}

// AddMembershipBounded is the overloaded form of AddMembership that
// supplies a bounded end time instead of NoEnd, used when staging a
// historical interval directly (e.g. during a backfill).
func (m *Manager) AddMembershipBounded(ctx context.Context, q Querier, txID, source string, t Triple, start, end time.Time) error {
	return m.timed("add_membership", func() error {
		return m.addMembership(ctx, q, txID, source, t, start, end)
	})
}

func (m *Manager) addMembership(ctx context.Context, q Querier, txID, source string, t Triple, start, end time.Time) error {
	key := KeyOf(source, t)
	if _, err := q.ExecContext(ctx, m.dialect.sql.clearDeleteStagingForKeyInTx,
		txID, key.Source, key.Subject, key.Property, key.Object); err != nil {
		return wrapStore(err)
	}

	start, end = TruncateToSecond(start), TruncateToSecond(end)
	if _, err := q.ExecContext(ctx, m.dialect.sql.insertAddStaging,
		txID, key.Source, key.Subject, key.Property, key.Object, start, end); err != nil {
		return wrapStore(err)
	}
	m.metrics.rowsStaged.WithLabelValues(string(OpAdd)).Inc()
	return nil
}

// EndMembership ends a single triple. If an ADD staging row for this
// identity key already exists in txID, it is simply withdrawn.
// Otherwise, a DELETE staging row is inserted for every live committed
// row matching (source, subject, property, object). A match against
// no live committed row is a no-op, not an error.
func (m *Manager) EndMembership(ctx context.Context, q Querier, txID, source string, t Triple, end time.Time) error {
	return m.timed("end_membership", func() error {
		key := KeyOf(source, t)
		end = TruncateToSecond(end)

		res, err := q.ExecContext(ctx, m.dialect.sql.deleteAddStagingForKeyInTx,
			txID, key.Source, key.Subject, key.Property, key.Object)
		if err != nil {
			return wrapStore(err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return wrapStore(err)
		} else if n > 0 {
			// A just-added triple was withdrawn; nothing else to do.
			return nil
		}

		rows, err := q.QueryContext(ctx, m.dialect.sql.selectLiveCommittedForKey,
			key.Source, key.Subject, key.Property, key.Object, NoEnd)
		if err != nil {
			return wrapStore(err)
		}
		defer rows.Close()

		var live []Row
		for rows.Next() {
			r, err := scanRow(rows)
			if err != nil {
				return wrapStore(err)
			}
			live = append(live, r)
		}
		if err := rows.Err(); err != nil {
			return wrapStore(err)
		}
		if len(live) > 1 {
			return &InvariantViolation{Key: key, Detail: "multiple live committed rows for one identity key"}
		}

		for _, r := range live {
			if _, err := q.ExecContext(ctx, m.dialect.sql.insertDeleteStaging,
				txID, string(NotForce), key.Source, key.Subject, key.Property, key.Object, r.StartTime, end); err != nil {
				return wrapStore(err)
			}
			m.metrics.rowsStaged.WithLabelValues(string(OpDelete)).Inc()
		}
		return nil
	})
}

// EndMembershipForSource bulk-ends every live triple produced by
// source. It first clears every ADD staging row in txID for this
// source, then inserts DELETE staging rows for every live committed
// row from source that does not already have a DELETE staging row
// pending from any transaction.
func (m *Manager) EndMembershipForSource(ctx context.Context, q Querier, txID, source string, end time.Time) error {
	return m.timed("end_membership_for_source", func() error {
		end = TruncateToSecond(end)

		if _, err := q.ExecContext(ctx, m.dialect.sql.clearAddStagingForSourceInTx, txID, source); err != nil {
			return wrapStore(err)
		}

		rows, err := q.QueryContext(ctx, m.dialect.sql.selectLiveCommittedForSource, source, NoEnd)
		if err != nil {
			return wrapStore(err)
		}
		defer rows.Close()

		var live []Row
		for rows.Next() {
			r, err := scanRow(rows)
			if err != nil {
				return wrapStore(err)
			}
			live = append(live, r)
		}
		if err := rows.Err(); err != nil {
			return wrapStore(err)
		}

		for _, r := range live {
			var exists bool
			if err := q.QueryRowContext(ctx, m.dialect.sql.existsDeleteStagingForKey,
				r.Source, r.Subject, r.Property, r.Object).Scan(&exists); err != nil {
				return wrapStore(err)
			}
			if exists {
				continue
			}
			if _, err := q.ExecContext(ctx, m.dialect.sql.insertDeleteStaging,
				txID, string(NotForce), r.Source, r.Subject, r.Property, r.Object, r.StartTime, end); err != nil {
				return wrapStore(err)
			}
			m.metrics.rowsStaged.WithLabelValues(string(OpDelete)).Inc()
		}
		return nil
	})
}

// DeleteMembershipForSourceAfter is the strong form used when a source
// is purged or reverted. It clears the transaction's ADDs for source,
// then inserts force DELETE staging rows for every committed row from
// source whose StartTime >= after or EndTime >= after. If after is the
// zero time, NoStart is used, selecting all history.
func (m *Manager) DeleteMembershipForSourceAfter(ctx context.Context, q Querier, txID, source string, after time.Time) error {
	return m.timed("delete_membership_for_source_after", func() error {
		if after.IsZero() {
			after = NoStart
		}
		after = TruncateToSecond(after)

		if _, err := q.ExecContext(ctx, m.dialect.sql.clearAddStagingForSourceInTx, txID, source); err != nil {
			return wrapStore(err)
		}

		rows, err := q.QueryContext(ctx, m.dialect.sql.selectCommittedForSourceAfter, source, after, after)
		if err != nil {
			return wrapStore(err)
		}
		defer rows.Close()

		var toForce []Row
		for rows.Next() {
			r, err := scanRow(rows)
			if err != nil {
				return wrapStore(err)
			}
			toForce = append(toForce, r)
		}
		if err := rows.Err(); err != nil {
			return wrapStore(err)
		}

		for _, r := range toForce {
			if _, err := q.ExecContext(ctx, m.dialect.sql.insertDeleteStaging,
				txID, string(Force), r.Source, r.Subject, r.Property, r.Object, r.StartTime, r.EndTime); err != nil {
				return wrapStore(err)
			}
			m.metrics.rowsStaged.WithLabelValues(string(OpDelete)).Inc()
		}
		return nil
	})
}

// DeleteMembershipReferences removes every staging row in txID whose
// source, subject, or object equals targetID, then removes every
// committed row likewise. Used when a resource is permanently
// expunged.
func (m *Manager) DeleteMembershipReferences(ctx context.Context, q Querier, txID, targetID string) error {
	return m.timed("delete_membership_references", func() error {
		if _, err := q.ExecContext(ctx, m.dialect.sql.deleteStagingReferencing, txID, targetID, targetID, targetID); err != nil {
			return wrapStore(err)
		}
		if _, err := q.ExecContext(ctx, m.dialect.sql.deleteCommittedReferencing, targetID, targetID, targetID); err != nil {
			return wrapStore(err)
		}
		return nil
	})
}

// Commit drains staging rows for txID into the committed relation in
// three phases — force deletes, end-dates, adds — and then purges
// every staging row for txID. Each step is a single SQL statement; the
// force-delete and end-date statements are the ones that vary in shape
// by platform (see dialect.go).
func (m *Manager) Commit(ctx context.Context, q Querier, txID string) error {
	return m.timed("commit", func() error {
		if _, err := q.ExecContext(ctx, m.dialect.sql.commitForceDelete, txID); err != nil {
			return wrapStore(err)
		}

		if m.dialect.platform == PlatformH2 {
			// The correlated-subquery form references tx_id twice: once
			// for the SET subquery, once for the WHERE EXISTS guard.
			if _, err := q.ExecContext(ctx, m.dialect.sql.commitEndDate, txID, txID); err != nil {
				return wrapStore(err)
			}
		} else {
			if _, err := q.ExecContext(ctx, m.dialect.sql.commitEndDate, txID); err != nil {
				return wrapStore(err)
			}
		}

		res, err := q.ExecContext(ctx, m.dialect.sql.commitAdd, txID)
		if err != nil {
			return wrapStore(err)
		}
		if n, err := res.RowsAffected(); err == nil {
			m.metrics.rowsCommitted.Add(float64(n))
		}

		if _, err := q.ExecContext(ctx, m.dialect.sql.deleteStagingForTx, txID); err != nil {
			return wrapStore(err)
		}

		log.WithField("tx", txID).Debug("committed membership staging rows")
		return nil
	})
}

// Rollback deletes every staging row with tx_id = txID. It has no
// effect on committed rows.
func (m *Manager) Rollback(ctx context.Context, q Querier, txID string) error {
	return m.timed("rollback", func() error {
		_, err := q.ExecContext(ctx, m.dialect.sql.deleteStagingForTx, txID)
		return wrapStore(err)
	})
}

// ClearIndex truncates both relations. Test/administrative only.
func (m *Manager) ClearIndex(ctx context.Context, q Querier) error {
	return m.timed("clear_index", func() error {
		if _, err := q.ExecContext(ctx, m.dialect.sql.clearStaging); err != nil {
			return wrapStore(err)
		}
		if _, err := q.ExecContext(ctx, m.dialect.sql.clearMembership); err != nil {
			return wrapStore(err)
		}
		return nil
	})
}

// timed runs fn, recording its duration and any resulting error
// against the named operation's metrics.
func (m *Manager) timed(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	return m.metrics.observe(op, time.Since(start).Seconds(), err)
}
