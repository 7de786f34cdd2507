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
	"strings"

	"github.com/pkg/errors"
)

// Platform is an enum type to make it easy to switch on the
// underlying relational back-end. It mirrors the set the surrounding
// service is expected to detect: H2, PostgreSQL, MySQL, MariaDB.
type Platform int

// The supported back-end platforms.
const (
	PlatformUnknown Platform = iota
	PlatformH2
	PlatformPostgreSQL
	PlatformMySQL
	PlatformMariaDB
)

// String implements fmt.Stringer.
func (p Platform) String() string {
	switch p {
	case PlatformH2:
		return "H2"
	case PlatformPostgreSQL:
		return "PostgreSQL"
	case PlatformMySQL:
		return "MySQL"
	case PlatformMariaDB:
		return "MariaDB"
	default:
		return "Unknown"
	}
}

// DetectPlatform determines the platform from driverName. The pgx and
// sqlite drivers map directly to PostgreSQL and H2 without querying
// db; for the mysql driver it runs one `SELECT VERSION()` probe on the
// live connection and reports MariaDB when the version string names
// it, MySQL otherwise.
func DetectPlatform(ctx context.Context, db *sql.DB, driverName string) (Platform, error) {
	switch driverName {
	case "pgx", "postgres":
		return PlatformPostgreSQL, nil
	case "sqlite":
		return PlatformH2, nil
	case "mysql":
		var version string
		if err := db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version); err != nil {
			return PlatformUnknown, errors.Wrap(err, "could not query version")
		}
		if strings.Contains(strings.ToLower(version), "mariadb") {
			return PlatformMariaDB, nil
		}
		return PlatformMySQL, nil
	default:
		return PlatformUnknown, &ConfigurationError{Platform: driverName}
	}
}
