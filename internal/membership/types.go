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

// Operation distinguishes a pending staging row as an addition or a
// pending end-dating / removal.
type Operation string

// The two staging operations.
const (
	OpAdd    Operation = "ADD"
	OpDelete Operation = "DELETE"
)

// ForceFlag marks a DELETE staging row as a hard purge: on commit the
// matching committed row is removed outright rather than end-dated.
type ForceFlag string

// The two force-flag states. Non-force is stored as the empty string
// so that the staging table's force_flag column can remain NULLable
// without a third sentinel value.
const (
	NotForce ForceFlag = ""
	Force    ForceFlag = "FORCE"
)

// Row is a committed membership interval: the durable, visible record
// that a source asserted (subject, property, object) during
// [StartTime, EndTime).
type Row struct {
	Source    string
	Subject   string
	Property  string
	Object    string
	StartTime time.Time
	EndTime   time.Time
}

// Key returns the IdentityKey this row belongs to.
func (r Row) Key() IdentityKey {
	return IdentityKey{Source: r.Source, Subject: r.Subject, Property: r.Property, Object: r.Object}
}

// Live reports whether this row is currently asserted, i.e. has not
// been end-dated.
func (r Row) Live() bool { return r.EndTime.Equal(NoEnd) }

// StagingRow is a pending addition or deletion, scoped to a
// transaction id.
type StagingRow struct {
	TxID      string
	Operation Operation
	Force     ForceFlag
	Source    string
	Subject   string
	Property  string
	Object    string
	StartTime time.Time
	EndTime   time.Time
}

// Key returns the IdentityKey this staging row belongs to.
func (s StagingRow) Key() IdentityKey {
	return IdentityKey{Source: s.Source, Subject: s.Subject, Property: s.Property, Object: s.Object}
}

// IsForce reports whether this is a hard-purge DELETE.
func (s StagingRow) IsForce() bool { return s.Force == Force }
