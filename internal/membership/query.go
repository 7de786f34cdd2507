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
	"database/sql"
	"time"
)

// scanRow reads one committed membership row in colList order.
func scanRow(rows *sql.Rows) (Row, error) {
	var r Row
	err := rows.Scan(&r.Source, &r.Subject, &r.Property, &r.Object, &r.StartTime, &r.EndTime)
	return r, err
}

// scanStagingRow reads one staging row in stgColList order. force_flag
// is NULLable in the schema; NULL maps to NotForce.
func scanStagingRow(rows *sql.Rows) (StagingRow, error) {
	var s StagingRow
	var op string
	var force sql.NullString
	if err := rows.Scan(&s.TxID, &op, &force, &s.Source, &s.Subject, &s.Property, &s.Object, &s.StartTime, &s.EndTime); err != nil {
		return s, err
	}
	s.Operation = Operation(op)
	if force.Valid {
		s.Force = ForceFlag(force.String)
	} else {
		s.Force = NotForce
	}
	return s, nil
}

// exists runs a "SELECT 1 ... LIMIT 1" style probe and reports whether
// it returned a row.
func exists(ctx context.Context, q Querier, query string, args ...any) (bool, error) {
	var dummy int
	switch err := q.QueryRowContext(ctx, query, args...).Scan(&dummy); err {
	case nil:
		return true, nil
	case sql.ErrNoRows:
		return false, nil
	default:
		return false, err
	}
}

// GetMembership returns the currently-visible set of (subject,
// property, object) triples for subject under transaction txID (pass
// "" for "no transaction", seeing only committed state). subject may
// be memento-qualified, in which case the memento view as of its
// instant is returned instead of the live view. The returned rows
// carry the base id (memento suffix stripped) regardless.
func (m *Manager) GetMembership(ctx context.Context, q Querier, txID string, subject Id) ([]Row, error) {
	var out []Row
	err := m.timed("get_membership", func() error {
		base := subject.BaseID()
		var err error
		if subject.IsMemento() {
			out, err = m.liveAt(ctx, q, txID, base, subject.MementoInstant())
		} else {
			out, err = m.liveNow(ctx, q, txID, base)
		}
		return err
	})
	return out, err
}

// liveNow implements the non-memento branch of GetMembership.
func (m *Manager) liveNow(ctx context.Context, q Querier, txID, subject string) ([]Row, error) {
	var out []Row

	if txID != "" {
		staged, err := m.queryStaging(ctx, q, m.dialect.sql.selectAddStagingForSubjectLive, txID, subject, NoEnd)
		if err != nil {
			return nil, err
		}
		for _, s := range staged {
			out = append(out, Row{Source: s.Source, Subject: s.Subject, Property: s.Property, Object: s.Object, StartTime: s.StartTime, EndTime: s.EndTime})
		}
	}

	rows, err := q.QueryContext(ctx, m.dialect.sql.selectLiveCommittedForSubject, subject, NoEnd)
	if err != nil {
		return nil, wrapStore(err)
	}
	defer rows.Close()

	var committed []Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, wrapStore(err)
		}
		committed = append(committed, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore(err)
	}

	for _, r := range committed {
		if txID != "" {
			suppressed, err := exists(ctx, q, m.dialect.sql.selectDeleteStagingForSourceObj, txID, r.Source, r.Object)
			if err != nil {
				return nil, wrapStore(err)
			}
			if suppressed {
				continue
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// liveAt implements the memento branch of GetMembership: every row,
// committed or staged under txID, whose interval covers at.
func (m *Manager) liveAt(ctx context.Context, q Querier, txID, subject string, at time.Time) ([]Row, error) {
	var out []Row

	if txID != "" {
		staged, err := m.queryStaging(ctx, q, m.dialect.sql.selectAddStagingForSubjectAtTime, txID, subject, at, at)
		if err != nil {
			return nil, err
		}
		for _, s := range staged {
			out = append(out, Row{Source: s.Source, Subject: s.Subject, Property: s.Property, Object: s.Object, StartTime: s.StartTime, EndTime: s.EndTime})
		}
	}

	rows, err := q.QueryContext(ctx, m.dialect.sql.selectCommittedForSubjectAtTime, subject, at, at)
	if err != nil {
		return nil, wrapStore(err)
	}
	defer rows.Close()

	var committed []Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, wrapStore(err)
		}
		committed = append(committed, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore(err)
	}

	for _, r := range committed {
		if txID != "" {
			suppressed, err := exists(ctx, q, m.dialect.sql.selectDeleteStagingForSourcePropObjBefore,
				txID, r.Source, r.Property, r.Object, at)
			if err != nil {
				return nil, wrapStore(err)
			}
			if suppressed {
				continue
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// queryStaging runs query and scans every resulting staging row.
func (m *Manager) queryStaging(ctx context.Context, q Querier, query string, args ...any) ([]StagingRow, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStore(err)
	}
	defer rows.Close()

	var out []StagingRow
	for rows.Next() {
		s, err := scanStagingRow(rows)
		if err != nil {
			return nil, wrapStore(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore(err)
	}
	return out, nil
}

// DumpMembership streams every committed row in the index. It exists
// for operational introspection and test assertions, not for any
// runtime code path.
func (m *Manager) DumpMembership(ctx context.Context, q Querier) ([]Row, error) {
	rows, err := q.QueryContext(ctx, m.dialect.sql.selectAllMembership)
	if err != nil {
		return nil, wrapStore(err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, wrapStore(err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore(err)
	}
	return out, nil
}

// DumpStaging streams every pending staging row, across every
// transaction. Operational introspection only.
func (m *Manager) DumpStaging(ctx context.Context, q Querier) ([]StagingRow, error) {
	return m.queryStaging(ctx, q, m.dialect.sql.selectAllStaging)
}
