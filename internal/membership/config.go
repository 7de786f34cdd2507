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

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	_ "github.com/go-sql-driver/mysql" // register driver
	_ "github.com/jackc/pgx/v5/stdlib" // register driver
	_ "modernc.org/sqlite"             // register driver
)

// Config is the user-visible configuration for opening and operating
// an Index Manager.
type Config struct {
	// DataSource is the driver-specific connection string passed to
	// sql.Open. Its driver name, not this string, determines which
	// platform dialect is requested below.
	DataSource string

	// Driver names the registered database/sql driver to open
	// DataSource with: "pgx", "mysql", or "sqlite".
	Driver string

	// Platform, if set, overrides automatic platform detection. Leave
	// empty to probe the connection at startup.
	Platform string

	// MaxOpenConns bounds the pool this Manager borrows connections
	// from.
	MaxOpenConns int

	// ConnMaxLifetime recycles pooled connections after this long.
	ConnMaxLifetime time.Duration
}

// Bind registers flags for Config on flags.
func (c *Config) Bind(flags *pflag.FlagSet) {
	flags.StringVar(&c.DataSource, "dataSource", "",
		"the connection string for the membership index's backing database")
	flags.StringVar(&c.Driver, "driver", "pgx",
		"the database/sql driver name to open dataSource with (pgx, mysql, sqlite)")
	flags.StringVar(&c.Platform, "platform", "",
		"override automatic platform detection (h2, postgresql, mysql, mariadb)")
	flags.IntVar(&c.MaxOpenConns, "maxOpenConns", 16,
		"the maximum number of open connections to the backing database")
	flags.DurationVar(&c.ConnMaxLifetime, "connMaxLifetime", 30*time.Minute,
		"recycle pooled connections after this long")
}

// LoadFile overlays Config with any fields present in a TOML file at
// path, leaving fields the file omits untouched. Every field present
// in the file is overwritten, whatever its current value; this package
// does not itself track which flags were explicit, so callers that
// want command-line flags to win should load the file after Bind and
// before calling flags.Parse.
func (c *Config) LoadFile(path string) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		return errors.Wrapf(err, "loading config file %s", path)
	}
	return nil
}

// Preflight validates Config and returns a descriptive error for the
// first problem found.
func (c *Config) Preflight() error {
	if c.DataSource == "" {
		return errors.New("dataSource unset")
	}
	switch c.Driver {
	case "pgx", "mysql", "sqlite":
	default:
		return errors.Errorf("unsupported driver %q", c.Driver)
	}
	if c.Platform != "" {
		switch c.Platform {
		case "h2", "postgresql", "mysql", "mariadb":
		default:
			return errors.Errorf("unsupported platform override %q", c.Platform)
		}
	}
	if c.MaxOpenConns <= 0 {
		return errors.New("maxOpenConns must be positive")
	}
	return nil
}

// ResolvePlatform maps the Platform override string, if set, to a
// Platform value. It returns PlatformUnknown (and a nil error) when no
// override was configured, signaling the caller should auto-detect.
func (c *Config) ResolvePlatform() (Platform, error) {
	switch c.Platform {
	case "":
		return PlatformUnknown, nil
	case "h2":
		return PlatformH2, nil
	case "postgresql":
		return PlatformPostgreSQL, nil
	case "mysql":
		return PlatformMySQL, nil
	case "mariadb":
		return PlatformMariaDB, nil
	default:
		return PlatformUnknown, &ConfigurationError{Platform: c.Platform}
	}
}

// Open opens the backing database pool described by Config, pings it,
// resolves the platform (honoring an explicit override, else probing),
// and returns a ready Manager. The caller owns the returned *sql.DB's
// lifetime and should Close it when the Manager is no longer needed.
func Open(ctx context.Context, c *Config) (*Manager, *sql.DB, error) {
	if err := c.Preflight(); err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(c.Driver, c.DataSource)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not open data source")
	}
	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetConnMaxLifetime(c.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, errors.Wrap(err, "could not ping data source")
	}

	platform, err := c.ResolvePlatform()
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if platform == PlatformUnknown {
		platform, err = DetectPlatform(ctx, db, c.Driver)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}

	mgr, err := New(db, platform)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	logrus.WithField("platform", platform).Info("membership index connected")
	return mgr, db, nil
}
