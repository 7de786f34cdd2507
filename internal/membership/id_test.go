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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIdPlain(t *testing.T) {
	id := NewId("s/1")
	require.Equal(t, "s/1", id.FullID())
	require.Equal(t, "s/1", id.BaseID())
	require.False(t, id.IsMemento())
}

func TestIdMemento(t *testing.T) {
	id := NewId("s/1@2024-03-01T00:00:00Z")
	require.Equal(t, "s/1", id.BaseID())
	require.True(t, id.IsMemento())
	require.Equal(t, "2024-03-01T00:00:00Z", id.MementoInstant().Format(time.RFC3339))
}

func TestIdMementoMalformedSuffixFallsBackToOpaque(t *testing.T) {
	id := NewId("s/1@not-a-time")
	require.Equal(t, "s/1@not-a-time", id.BaseID())
	require.False(t, id.IsMemento())
}

func TestNewMementoIdRoundTrips(t *testing.T) {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	id := NewMementoId("s/1", at)
	require.True(t, id.IsMemento())
	require.Equal(t, "s/1", id.BaseID())
	require.True(t, id.MementoInstant().Equal(at))
	require.Equal(t, "s/1@2024-03-01T00:00:00Z", id.FullID())
}

func TestIdEqual(t *testing.T) {
	a := NewId("s/1@2024-03-01T00:00:00Z")
	b := NewId("s/1@2024-03-01T00:00:00Z")
	c := NewId("s/1")
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}
