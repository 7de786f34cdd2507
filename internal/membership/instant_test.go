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

func TestTruncateToSecondDropsNanosAndNormalizesZone(t *testing.T) {
	loc := time.FixedZone("test", 3600)
	in := time.Date(2024, 3, 1, 12, 0, 0, 123456789, loc)
	out := TruncateToSecond(in)
	require.Equal(t, time.UTC, out.Location())
	require.Zero(t, out.Nanosecond())
	require.True(t, out.Equal(time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)))
}

func TestCompare(t *testing.T) {
	a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, -1, Compare(a, b))
	require.Equal(t, 1, Compare(b, a))
	require.Equal(t, 0, Compare(a, a))
}

func TestNoEndIsFarFuture(t *testing.T) {
	require.True(t, NoEnd.After(time.Now().AddDate(100, 0, 0)))
}
