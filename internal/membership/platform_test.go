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

	"github.com/stretchr/testify/require"
)

func TestDetectPlatformBySqliteDriver(t *testing.T) {
	_, db := newTestManager(t)
	p, err := DetectPlatform(context.Background(), db, "sqlite")
	require.NoError(t, err)
	require.Equal(t, PlatformH2, p)
}

func TestDetectPlatformUnknownDriver(t *testing.T) {
	_, db := newTestManager(t)
	_, err := DetectPlatform(context.Background(), db, "oracle")
	cfgErr, ok := IsConfigurationError(err)
	require.True(t, ok)
	require.Equal(t, "oracle", cfgErr.Platform)
}

func TestPlatformString(t *testing.T) {
	require.Equal(t, "H2", PlatformH2.String())
	require.Equal(t, "PostgreSQL", PlatformPostgreSQL.String())
	require.Equal(t, "MySQL", PlatformMySQL.String())
	require.Equal(t, "MariaDB", PlatformMariaDB.String())
	require.Equal(t, "Unknown", PlatformUnknown.String())
}

func TestNewRejectsUnknownPlatform(t *testing.T) {
	_, db := newTestManager(t)
	_, err := New(db, Platform(999))
	_, ok := IsConfigurationError(err)
	require.True(t, ok)
}
