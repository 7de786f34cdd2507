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
	"strings"
	"time"
)

// mementoSep separates a base id from its memento instant, e.g.
// "s/1@2024-03-01T00:00:00Z".
const mementoSep = "@"

// An Id is a stable, opaque string naming a resource. Ids are
// partitioned into a base id and an optional memento instant; a
// memento-qualified id names a historical view of the base resource.
// Equality is exact-string on the full form.
type Id struct {
	full    string
	base    string
	memento time.Time
	hasTime bool
}

// NewId parses a possibly memento-qualified identifier string into an
// Id. Strings without a "@<RFC3339 instant>" suffix are treated as
// plain, non-memento ids.
func NewId(raw string) Id {
	base, suffix, found := strings.Cut(raw, mementoSep)
	if !found {
		return Id{full: raw, base: raw}
	}

	t, err := time.Parse(time.RFC3339, suffix)
	if err != nil {
		// Not a parseable instant; treat the whole string as an opaque,
		// non-memento id rather than erroring out at construction time.
		return Id{full: raw, base: raw}
	}

	return Id{
		full:    raw,
		base:    base,
		memento: TruncateToSecond(t),
		hasTime: true,
	}
}

// NewMementoId builds an Id for base at the given instant.
func NewMementoId(base string, at time.Time) Id {
	at = TruncateToSecond(at)
	return Id{
		full:    base + mementoSep + at.Format(time.RFC3339),
		base:    base,
		memento: at,
		hasTime: true,
	}
}

// FullID returns the complete identifier string, memento suffix
// included if present.
func (i Id) FullID() string { return i.full }

// BaseID returns the identifier with any memento suffix stripped.
func (i Id) BaseID() string { return i.base }

// IsMemento reports whether this id names a historical view.
func (i Id) IsMemento() bool { return i.hasTime }

// MementoInstant returns the instant this id was qualified with. The
// zero time is returned if IsMemento is false.
func (i Id) MementoInstant() time.Time { return i.memento }

// String implements fmt.Stringer.
func (i Id) String() string { return i.full }

// Equal reports exact-string equality on the full form, per the data
// model's equality rule.
func (i Id) Equal(other Id) bool { return i.full == other.full }
