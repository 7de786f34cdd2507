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

// A Triple is a membership assertion: (subject, property, object).
// The property and object fields expose URI strings, per the
// collaborator contract.
type Triple struct {
	Subject  Id
	Property string
	Object   Id
}

// IdentityKey is the four-tuple (source, subject, property, object)
// that uniquely identifies a membership slot. Multiple committed rows
// may share an IdentityKey, but their [start, end) intervals must be
// disjoint.
type IdentityKey struct {
	Source   string
	Subject  string
	Property string
	Object   string
}

// KeyOf builds the IdentityKey for a triple produced by source.
func KeyOf(source string, t Triple) IdentityKey {
	return IdentityKey{
		Source:   source,
		Subject:  t.Subject.BaseID(),
		Property: t.Property,
		Object:   t.Object.BaseID(),
	}
}
