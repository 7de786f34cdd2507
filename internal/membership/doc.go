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

// Package membership implements a transactional, time-versioned
// membership index for LDP Direct and Indirect Container semantics.
//
// A source (a container resource) produces membership triples of the
// form (subject, property, object). Every write is staged under a
// transaction id and only becomes visible to other callers once that
// transaction commits. Committed rows carry a [start, end) interval so
// that historical mementos can be reconstructed.
package membership
