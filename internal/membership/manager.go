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

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Querier is implemented by *sql.DB and *sql.Tx. It is the common
// denominator across the pgx stdlib adapter, the MySQL driver, and the
// embedded sqlite driver, letting one Manager implementation dispatch
// uniformly over all four supported platforms.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// Manager is the Index Manager: it owns the MEMBERSHIP and STAGING
// relations and exposes the mutating and query operations. A Manager
// borrows connections from the pool per operation and retains none of
// its own; the dialect, once selected at construction, is immutable
// and safe to read without synchronization from multiple goroutines.
type Manager struct {
	db      *sql.DB
	dialect *dialect
	metrics *metrics
}

// New constructs a Manager for the given platform over db. db is a
// connection pool owned by the caller; the Manager never closes it.
func New(db *sql.DB, platform Platform) (*Manager, error) {
	d, err := dialectFor(platform)
	if err != nil {
		return nil, err
	}
	return &Manager{db: db, dialect: d, metrics: newMetrics()}, nil
}

// Platform returns the back-end platform this Manager was configured
// for.
func (m *Manager) Platform() Platform { return m.dialect.platform }

// InitSchema applies this platform's DDL script. It is idempotent: the
// shipped scripts use CREATE TABLE/INDEX IF NOT EXISTS.
func (m *Manager) InitSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, m.dialect.sql.ddl); err != nil {
		return wrapStore(err)
	}
	log.WithField("platform", m.dialect.platform).Info("membership index schema initialized")
	return nil
}

// WithTransaction opens one store-transaction, invokes fn with it, and
// commits on a nil return or rolls back otherwise. This is the
// explicit replacement for the container-managed, declarative
// transaction boundaries the surrounding service would otherwise rely
// on: every mutating operation in this package takes the Querier it
// runs on and opens no transaction of its own, so callers run it
// inside a WithTransaction closure to get one store-transaction.
func (m *Manager) WithTransaction(ctx context.Context, fn func(ctx context.Context, q Querier) error) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStore(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = wrapStore(cerr)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
