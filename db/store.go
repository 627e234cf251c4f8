// ABOUTME: Record store that loads and imports the datasets reports are built from
// ABOUTME: Works against SQLite or PostgreSQL; import upserts so it can be re-run safely
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/harperreed/salesreport/models"
)

// Store reads and writes CRM records.
type Store struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewStore(db *sql.DB, dialect Dialect) *Store {
	return &Store{DB: db, Dialect: dialect}
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) q(query string) string {
	return rebind(s.Dialect, query)
}

// LoadDataset reads every record in import order.
func (s *Store) LoadDataset(ctx context.Context) (*models.Dataset, error) {
	ds := &models.Dataset{}
	var err error

	if ds.Users, err = s.loadUsers(ctx); err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	if ds.Leads, err = s.loadLeads(ctx); err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}
	if ds.Meetings, err = s.loadMeetings(ctx); err != nil {
		return nil, fmt.Errorf("failed to load meetings: %w", err)
	}
	if ds.Contracts, err = s.loadContracts(ctx); err != nil {
		return nil, fmt.Errorf("failed to load contracts: %w", err)
	}
	return ds, nil
}

func (s *Store) loadUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, role, team_id, team_leader_id
		FROM users ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		var role string
		var teamID, leaderID sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &role, &teamID, &leaderID); err != nil {
			return nil, err
		}
		// Unrecognised roles get no report access
		u.Role, _ = models.ParseRole(role)
		if teamID.Valid {
			u.TeamID = &teamID.String
		}
		if leaderID.Valid {
			u.TeamLeaderID = &leaderID.String
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) loadLeads(ctx context.Context) ([]models.Lead, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, owner_id, name, status, source, budget, created_at, last_call_date, last_visit_date
		FROM leads ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []models.Lead
	index := map[string]int{}
	for rows.Next() {
		var l models.Lead
		var owner sql.NullString
		var status string
		if err := rows.Scan(&l.ID, &owner, &l.Name, &status, &l.Source, &l.Budget, &l.CreatedAt, &l.LastCallDate, &l.LastVisitDate); err != nil {
			return nil, err
		}
		l.Status = models.LeadStatus(status)
		if owner.Valid {
			l.OwnerID = &owner.String
		}
		index[l.ID] = len(leads)
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachCalls(ctx, leads, index); err != nil {
		return nil, err
	}
	if err := s.attachVisits(ctx, leads, index); err != nil {
		return nil, err
	}
	return leads, nil
}

func (s *Store) attachCalls(ctx context.Context, leads []models.Lead, index map[string]int) error {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT lead_id, call_date, duration, outcome, notes
		FROM calls ORDER BY lead_id, seq
	`)
	if err != nil {
		return fmt.Errorf("failed to load calls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var leadID string
		var c models.Call
		if err := rows.Scan(&leadID, &c.Date, &c.Duration, &c.Outcome, &c.Notes); err != nil {
			return err
		}
		if i, ok := index[leadID]; ok {
			leads[i].Calls = append(leads[i].Calls, c)
		}
	}
	return rows.Err()
}

func (s *Store) attachVisits(ctx context.Context, leads []models.Lead, index map[string]int) error {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT lead_id, visit_date, status, notes
		FROM visits ORDER BY lead_id, seq
	`)
	if err != nil {
		return fmt.Errorf("failed to load visits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var leadID string
		var v models.Visit
		if err := rows.Scan(&leadID, &v.Date, &v.Status, &v.Notes); err != nil {
			return err
		}
		if i, ok := index[leadID]; ok {
			leads[i].Visits = append(leads[i].Visits, v)
		}
	}
	return rows.Err()
}

func (s *Store) loadMeetings(ctx context.Context) ([]models.Meeting, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, assigned_to_id, meeting_date, status, client, title
		FROM meetings ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []models.Meeting
	for rows.Next() {
		var m models.Meeting
		if err := rows.Scan(&m.ID, &m.AssignedToID, &m.Date, &m.Status, &m.Client, &m.Title); err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

func (s *Store) loadContracts(ctx context.Context) ([]models.Contract, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, created_by_id, client_name, deal_value, contract_date, status
		FROM contracts ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []models.Contract
	for rows.Next() {
		var c models.Contract
		if err := rows.Scan(&c.ID, &c.CreatedByID, &c.ClientName, &c.DealValue, &c.ContractDate, &c.Status); err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// ImportStats counts imported records.
type ImportStats struct {
	Users     int
	Leads     int
	Calls     int
	Visits    int
	Meetings  int
	Contracts int
}

func (st ImportStats) String() string {
	return fmt.Sprintf("%d users, %d leads (%d calls, %d visits), %d meetings, %d contracts",
		st.Users, st.Leads, st.Calls, st.Visits, st.Meetings, st.Contracts)
}

// ImportDataset upserts ds in one transaction. Records without an ID get a
// fresh UUID; a lead's calls and visits are replaced wholesale.
func (s *Store) ImportDataset(ctx context.Context, ds *models.Dataset) (ImportStats, error) {
	var stats ImportStats

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, u := range ds.Users {
		if u.ID == "" {
			u.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO users (id, name, role, team_id, team_leader_id, sort_order)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name, role = excluded.role, team_id = excluded.team_id,
				team_leader_id = excluded.team_leader_id, sort_order = excluded.sort_order
		`), u.ID, u.Name, u.Role.String(), u.TeamID, u.TeamLeaderID, i)
		if err != nil {
			return stats, fmt.Errorf("failed to import user %s: %w", u.ID, err)
		}
		stats.Users++
	}

	for i, l := range ds.Leads {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO leads (id, owner_id, name, status, source, budget, created_at, last_call_date, last_visit_date, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				owner_id = excluded.owner_id, name = excluded.name, status = excluded.status,
				source = excluded.source, budget = excluded.budget, created_at = excluded.created_at,
				last_call_date = excluded.last_call_date, last_visit_date = excluded.last_visit_date,
				sort_order = excluded.sort_order
		`), l.ID, l.OwnerID, l.Name, string(l.Status), l.Source, l.Budget, l.CreatedAt, l.LastCallDate, l.LastVisitDate, i)
		if err != nil {
			return stats, fmt.Errorf("failed to import lead %s: %w", l.ID, err)
		}
		stats.Leads++

		n, err := s.replaceCalls(ctx, tx, l)
		if err != nil {
			return stats, err
		}
		stats.Calls += n
		if n, err = s.replaceVisits(ctx, tx, l); err != nil {
			return stats, err
		}
		stats.Visits += n
	}

	for i, m := range ds.Meetings {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO meetings (id, assigned_to_id, meeting_date, status, client, title, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				assigned_to_id = excluded.assigned_to_id, meeting_date = excluded.meeting_date,
				status = excluded.status, client = excluded.client, title = excluded.title,
				sort_order = excluded.sort_order
		`), m.ID, m.AssignedToID, m.Date, m.Status, m.Client, m.Title, i)
		if err != nil {
			return stats, fmt.Errorf("failed to import meeting %s: %w", m.ID, err)
		}
		stats.Meetings++
	}

	for i, c := range ds.Contracts {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO contracts (id, created_by_id, client_name, deal_value, contract_date, status, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				created_by_id = excluded.created_by_id, client_name = excluded.client_name,
				deal_value = excluded.deal_value, contract_date = excluded.contract_date,
				status = excluded.status, sort_order = excluded.sort_order
		`), c.ID, c.CreatedByID, c.ClientName, c.DealValue, c.ContractDate, c.Status, i)
		if err != nil {
			return stats, fmt.Errorf("failed to import contract %s: %w", c.ID, err)
		}
		stats.Contracts++
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("failed to commit import: %w", err)
	}
	return stats, nil
}

func (s *Store) replaceCalls(ctx context.Context, tx *sql.Tx, l models.Lead) (int, error) {
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM calls WHERE lead_id = ?`), l.ID); err != nil {
		return 0, fmt.Errorf("failed to clear calls for lead %s: %w", l.ID, err)
	}
	for seq, c := range l.Calls {
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO calls (id, lead_id, seq, call_date, duration, outcome, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`), uuid.New().String(), l.ID, seq, c.Date, c.Duration, c.Outcome, c.Notes)
		if err != nil {
			return 0, fmt.Errorf("failed to import call for lead %s: %w", l.ID, err)
		}
	}
	return len(l.Calls), nil
}

func (s *Store) replaceVisits(ctx context.Context, tx *sql.Tx, l models.Lead) (int, error) {
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM visits WHERE lead_id = ?`), l.ID); err != nil {
		return 0, fmt.Errorf("failed to clear visits for lead %s: %w", l.ID, err)
	}
	for seq, v := range l.Visits {
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO visits (id, lead_id, seq, visit_date, status, notes)
			VALUES (?, ?, ?, ?, ?, ?)
		`), uuid.New().String(), l.ID, seq, v.Date, v.Status, v.Notes)
		if err != nil {
			return 0, fmt.Errorf("failed to import visit for lead %s: %w", l.ID, err)
		}
	}
	return len(l.Visits), nil
}
