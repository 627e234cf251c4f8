// ABOUTME: Database schema definitions
// ABOUTME: Record tables shared by the SQLite and PostgreSQL stores; dates are kept as raw text
package db

import (
	"database/sql"
	"fmt"
)

// Dates stay TEXT: upstream records may carry malformed values that the
// analytics layer treats as absent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		team_id TEXT,
		team_leader_id TEXT,
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_team_leader ON users(team_leader_id)`,

	`CREATE TABLE IF NOT EXISTS leads (
		id TEXT PRIMARY KEY,
		owner_id TEXT,
		name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		budget DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT '',
		last_call_date TEXT NOT NULL DEFAULT '',
		last_visit_date TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_owner ON leads(owner_id)`,

	`CREATE TABLE IF NOT EXISTS calls (
		id TEXT PRIMARY KEY,
		lead_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		call_date TEXT NOT NULL DEFAULT '',
		duration INTEGER NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_calls_lead ON calls(lead_id)`,

	`CREATE TABLE IF NOT EXISTS visits (
		id TEXT PRIMARY KEY,
		lead_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		visit_date TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_visits_lead ON visits(lead_id)`,

	`CREATE TABLE IF NOT EXISTS meetings (
		id TEXT PRIMARY KEY,
		assigned_to_id TEXT NOT NULL,
		meeting_date TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		client TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_meetings_assigned ON meetings(assigned_to_id)`,

	`CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		created_by_id TEXT NOT NULL,
		client_name TEXT NOT NULL DEFAULT '',
		deal_value DOUBLE PRECISION NOT NULL DEFAULT 0,
		contract_date TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_created_by ON contracts(created_by_id)`,
}

func InitSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
