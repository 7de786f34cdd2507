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

import _ "embed"

//go:embed schema/h2_postgres.sql
var ddlH2Postgres string

//go:embed schema/mysql.sql
var ddlMySQL string

//go:embed schema/mariadb.sql
var ddlMariaDB string

// sqlSet holds the fully-rendered SQL text for one platform. The
// commit end-date and force-delete statements vary in shape (join
// syntax); the rest vary only in placeholder style, but all are
// spelled out here so that each
// dialect's SQL reads as a single, reviewable unit rather than being
// reassembled at call time, following the teacher's convention of
// caching fully-formatted SQL on the owning struct at construction.
type sqlSet struct {
	ddl string

	clearDeleteStagingForKeyInTx    string
	insertAddStaging                string
	insertDeleteStaging             string
	deleteAddStagingForKeyInTx      string
	clearAddStagingForSourceInTx    string
	selectLiveCommittedForKey       string
	selectLiveCommittedForSource    string
	existsDeleteStagingForKey       string
	selectCommittedForSourceAfter   string
	deleteStagingForTx              string
	deleteStagingReferencing        string
	deleteCommittedReferencing      string
	clearMembership                 string
	clearStaging                    string
	commitForceDelete                string
	commitEndDate                    string
	commitAdd                        string
	selectAllMembership              string
	selectAllStaging                 string
	selectLiveCommittedForSubject     string
	selectCommittedForSubjectAtTime   string
	selectAddStagingForSubjectLive    string
	selectAddStagingForSubjectAtTime  string
	selectDeleteStagingForSourceObj   string
	selectDeleteStagingForSourcePropObjBefore string
}

// dialect pairs a platform with its rendered SQL.
type dialect struct {
	platform Platform
	sql      sqlSet
}

const (
	colList   = "source_id, subject_id, property, object_id, start_time, end_time"
	stgColList = "tx_id, operation, force_flag, source_id, subject_id, property, object_id, start_time, end_time"
)

func dialectFor(p Platform) (*dialect, error) {
	switch p {
	case PlatformH2:
		return &dialect{platform: p, sql: sqliteStyleSQL(ddlH2Postgres)}, nil
	case PlatformPostgreSQL:
		return &dialect{platform: p, sql: postgresStyleSQL(ddlH2Postgres)}, nil
	case PlatformMySQL, PlatformMariaDB:
		ddl := ddlMySQL
		if p == PlatformMariaDB {
			ddl = ddlMariaDB
		}
		return &dialect{platform: p, sql: mysqlStyleSQL(ddl)}, nil
	default:
		return nil, &ConfigurationError{Platform: p.String()}
	}
}

// postgresStyleSQL renders the query set using PostgreSQL's $N
// placeholders and its FROM-style UPDATE for the commit end-date step.
func postgresStyleSQL(ddl string) sqlSet {
	return sqlSet{
		ddl: ddl,

		clearDeleteStagingForKeyInTx: `DELETE FROM membership_tx_operations
			WHERE tx_id=$1 AND operation='DELETE' AND source_id=$2 AND subject_id=$3 AND property=$4 AND object_id=$5`,

		insertAddStaging: `INSERT INTO membership_tx_operations (` + stgColList + `)
			VALUES ($1,'ADD',NULL,$2,$3,$4,$5,$6,$7)`,

		insertDeleteStaging: `INSERT INTO membership_tx_operations (` + stgColList + `)
			VALUES ($1,'DELETE',$2,$3,$4,$5,$6,$7,$8)`,

		deleteAddStagingForKeyInTx: `DELETE FROM membership_tx_operations
			WHERE tx_id=$1 AND operation='ADD' AND force_flag IS NULL
			  AND source_id=$2 AND subject_id=$3 AND property=$4 AND object_id=$5`,

		clearAddStagingForSourceInTx: `DELETE FROM membership_tx_operations
			WHERE tx_id=$1 AND operation='ADD' AND source_id=$2`,

		selectLiveCommittedForKey: `SELECT ` + colList + ` FROM membership
			WHERE source_id=$1 AND subject_id=$2 AND property=$3 AND object_id=$4 AND end_time=$5`,

		selectLiveCommittedForSource: `SELECT ` + colList + ` FROM membership
			WHERE source_id=$1 AND end_time=$2`,

		existsDeleteStagingForKey: `SELECT EXISTS (
			SELECT 1 FROM membership_tx_operations
			WHERE operation='DELETE' AND source_id=$1 AND subject_id=$2 AND property=$3 AND object_id=$4)`,

		selectCommittedForSourceAfter: `SELECT ` + colList + ` FROM membership
			WHERE source_id=$1 AND (start_time>=$2 OR end_time>=$3)`,

		deleteStagingForTx: `DELETE FROM membership_tx_operations WHERE tx_id=$1`,

		deleteStagingReferencing: `DELETE FROM membership_tx_operations
			WHERE tx_id=$1 AND (source_id=$2 OR subject_id=$3 OR object_id=$4)`,

		deleteCommittedReferencing: `DELETE FROM membership
			WHERE source_id=$1 OR subject_id=$2 OR object_id=$3`,

		clearMembership: `DELETE FROM membership`,
		clearStaging:    `DELETE FROM membership_tx_operations`,

		commitForceDelete: `DELETE FROM membership m
			USING membership_tx_operations s
			WHERE s.tx_id=$1 AND s.operation='DELETE' AND s.force_flag='FORCE'
			  AND m.source_id=s.source_id AND m.subject_id=s.subject_id
			  AND m.property=s.property AND m.object_id=s.object_id`,

		commitEndDate: `UPDATE membership m
			SET end_time = s.end_time
			FROM membership_tx_operations s
			WHERE s.tx_id=$1 AND s.operation='DELETE'
			  AND m.source_id=s.source_id AND m.subject_id=s.subject_id
			  AND m.property=s.property AND m.object_id=s.object_id`,

		commitAdd: `INSERT INTO membership (` + colList + `)
			SELECT s.source_id, s.subject_id, s.property, s.object_id, s.start_time, s.end_time
			FROM membership_tx_operations s
			WHERE s.tx_id=$1 AND s.operation='ADD'
			  AND NOT EXISTS (
			    SELECT 1 FROM membership m
			    WHERE m.source_id=s.source_id AND m.subject_id=s.subject_id
			      AND m.property=s.property AND m.object_id=s.object_id
			      AND m.start_time=s.start_time AND m.end_time=s.end_time)`,

		selectAllMembership: `SELECT ` + colList + ` FROM membership`,
		selectAllStaging:    `SELECT ` + stgColList + ` FROM membership_tx_operations`,

		selectLiveCommittedForSubject: `SELECT ` + colList + ` FROM membership
			WHERE subject_id=$1 AND end_time=$2`,

		selectCommittedForSubjectAtTime: `SELECT ` + colList + ` FROM membership
			WHERE subject_id=$1 AND start_time<=$2 AND end_time>$3`,

		selectAddStagingForSubjectLive: `SELECT ` + stgColList + ` FROM membership_tx_operations
			WHERE tx_id=$1 AND operation='ADD' AND subject_id=$2 AND end_time=$3`,

		selectAddStagingForSubjectAtTime: `SELECT ` + stgColList + ` FROM membership_tx_operations
			WHERE tx_id=$1 AND operation='ADD' AND subject_id=$2 AND start_time<=$3 AND end_time>$4`,

		selectDeleteStagingForSourceObj: `SELECT 1 FROM membership_tx_operations
			WHERE tx_id=$1 AND operation='DELETE' AND source_id=$2 AND object_id=$3 LIMIT 1`,

		selectDeleteStagingForSourcePropObjBefore: `SELECT 1 FROM membership_tx_operations
			WHERE tx_id=$1 AND operation='DELETE' AND source_id=$2 AND property=$3 AND object_id=$4 AND end_time<=$5 LIMIT 1`,
	}
}

// mysqlStyleSQL renders the query set using "?" placeholders and an
// INNER JOIN UPDATE for the commit end-date step, shared by MySQL and
// MariaDB.
func mysqlStyleSQL(ddl string) sqlSet {
	return sqlSet{
		ddl: ddl,

		clearDeleteStagingForKeyInTx: `DELETE FROM membership_tx_operations
			WHERE tx_id=? AND operation='DELETE' AND source_id=? AND subject_id=? AND property=? AND object_id=?`,

		insertAddStaging: `INSERT INTO membership_tx_operations (` + stgColList + `)
			VALUES (?,'ADD',NULL,?,?,?,?,?,?)`,

		insertDeleteStaging: `INSERT INTO membership_tx_operations (` + stgColList + `)
			VALUES (?,'DELETE',?,?,?,?,?,?,?)`,

		deleteAddStagingForKeyInTx: `DELETE FROM membership_tx_operations
			WHERE tx_id=? AND operation='ADD' AND force_flag IS NULL
			  AND source_id=? AND subject_id=? AND property=? AND object_id=?`,

		clearAddStagingForSourceInTx: `DELETE FROM membership_tx_operations
			WHERE tx_id=? AND operation='ADD' AND source_id=?`,

		selectLiveCommittedForKey: `SELECT ` + colList + ` FROM membership
			WHERE source_id=? AND subject_id=? AND property=? AND object_id=? AND end_time=?`,

		selectLiveCommittedForSource: `SELECT ` + colList + ` FROM membership
			WHERE source_id=? AND end_time=?`,

		existsDeleteStagingForKey: `SELECT EXISTS (
			SELECT 1 FROM membership_tx_operations
			WHERE operation='DELETE' AND source_id=? AND subject_id=? AND property=? AND object_id=?)`,

		selectCommittedForSourceAfter: `SELECT ` + colList + ` FROM membership
			WHERE source_id=? AND (start_time>=? OR end_time>=?)`,

		deleteStagingForTx: `DELETE FROM membership_tx_operations WHERE tx_id=?`,

		deleteStagingReferencing: `DELETE FROM membership_tx_operations
			WHERE tx_id=? AND (source_id=? OR subject_id=? OR object_id=?)`,

		deleteCommittedReferencing: `DELETE FROM membership
			WHERE source_id=? OR subject_id=? OR object_id=?`,

		clearMembership: `DELETE FROM membership`,
		clearStaging:    `DELETE FROM membership_tx_operations`,

		// MySQL/MariaDB lack a DELETE...USING join form; a multi-table
		// DELETE with an INNER JOIN plays the same role.
		commitForceDelete: `DELETE m FROM membership m
			INNER JOIN membership_tx_operations s
			  ON m.source_id=s.source_id AND m.subject_id=s.subject_id
			 AND m.property=s.property AND m.object_id=s.object_id
			WHERE s.tx_id=? AND s.operation='DELETE' AND s.force_flag='FORCE'`,

		// The dialect-specific quirk called out by the design notes: an
		// UPDATE ... INNER JOIN, joined on all four identity columns
		// exactly once.
		commitEndDate: `UPDATE membership m
			INNER JOIN membership_tx_operations s
			  ON m.source_id=s.source_id AND m.subject_id=s.subject_id
			 AND m.property=s.property AND m.object_id=s.object_id
			SET m.end_time = s.end_time
			WHERE s.tx_id=? AND s.operation='DELETE'`,

		commitAdd: `INSERT INTO membership (` + colList + `)
			SELECT s.source_id, s.subject_id, s.property, s.object_id, s.start_time, s.end_time
			FROM membership_tx_operations s
			WHERE s.tx_id=? AND s.operation='ADD'
			  AND NOT EXISTS (
			    SELECT 1 FROM membership m
			    WHERE m.source_id=s.source_id AND m.subject_id=s.subject_id
			      AND m.property=s.property AND m.object_id=s.object_id
			      AND m.start_time=s.start_time AND m.end_time=s.end_time)`,

		selectAllMembership: `SELECT ` + colList + ` FROM membership`,
		selectAllStaging:    `SELECT ` + stgColList + ` FROM membership_tx_operations`,

		selectLiveCommittedForSubject: `SELECT ` + colList + ` FROM membership
			WHERE subject_id=? AND end_time=?`,

		selectCommittedForSubjectAtTime: `SELECT ` + colList + ` FROM membership
			WHERE subject_id=? AND start_time<=? AND end_time>?`,

		selectAddStagingForSubjectLive: `SELECT ` + stgColList + ` FROM membership_tx_operations
			WHERE tx_id=? AND operation='ADD' AND subject_id=? AND end_time=?`,

		selectAddStagingForSubjectAtTime: `SELECT ` + stgColList + ` FROM membership_tx_operations
			WHERE tx_id=? AND operation='ADD' AND subject_id=? AND start_time<=? AND end_time>?`,

		selectDeleteStagingForSourceObj: `SELECT 1 FROM membership_tx_operations
			WHERE tx_id=? AND operation='DELETE' AND source_id=? AND object_id=? LIMIT 1`,

		selectDeleteStagingForSourcePropObjBefore: `SELECT 1 FROM membership_tx_operations
			WHERE tx_id=? AND operation='DELETE' AND source_id=? AND property=? AND object_id=? AND end_time<=? LIMIT 1`,
	}
}

// sqliteStyleSQL renders the query set for the embedded Go stand-in
// for H2. It shares MySQL/MariaDB's "?" placeholder style but, like
// H2, has no native multi-table UPDATE/DELETE, so the commit
// end-date and force-delete steps use a correlated subquery instead
// of a join.
func sqliteStyleSQL(ddl string) sqlSet {
	s := mysqlStyleSQL(ddl)
	s.ddl = ddl

	s.commitForceDelete = `DELETE FROM membership
		WHERE EXISTS (
			SELECT 1 FROM membership_tx_operations s
			WHERE s.tx_id=? AND s.operation='DELETE' AND s.force_flag='FORCE'
			  AND s.source_id=membership.source_id AND s.subject_id=membership.subject_id
			  AND s.property=membership.property AND s.object_id=membership.object_id)`

	s.commitEndDate = `UPDATE membership
		SET end_time = (
			SELECT s.end_time FROM membership_tx_operations s
			WHERE s.tx_id=? AND s.operation='DELETE'
			  AND s.source_id=membership.source_id AND s.subject_id=membership.subject_id
			  AND s.property=membership.property AND s.object_id=membership.object_id)
		WHERE EXISTS (
			SELECT 1 FROM membership_tx_operations s
			WHERE s.tx_id=? AND s.operation='DELETE'
			  AND s.source_id=membership.source_id AND s.subject_id=membership.subject_id
			  AND s.property=membership.property AND s.object_id=membership.object_id)`

	return s
}
