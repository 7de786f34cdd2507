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

import "time"

// NoEnd is the sentinel "no end instant" value. A committed row with
// EndTime == NoEnd is live. Join predicates rely on bitwise equality
// of this value, so it must never be substituted with NULL or with a
// distinct-but-equivalent far-future time.
var NoEnd = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// NoStart is the sentinel "beginning of time" instant, used when a
// caller asks to delete everything after the beginning of time.
var NoStart = time.Date(1000, time.January, 1, 0, 0, 0, 0, time.UTC)

// TruncateToSecond zeroes the nanosecond component of t and normalizes
// it to UTC. All timestamps are stored at whole-second precision so
// that memento-datetime comparisons are deterministic.
func TruncateToSecond(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// Compare returns -1, 0, or 1 according to whether a is before, equal
// to, or after b, mirroring the comparison helper the surrounding
// service exposes for its own hybrid-logical-clock timestamps.
func Compare(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
