// ABOUTME: Data models for the records the CRM hands to the reporting engine
// ABOUTME: Defines User, Lead, Call, Visit, Meeting, Contract and the Role/LeadStatus types
package models

import (
	"encoding/json"
	"fmt"
	"os"
)

// Role is the closed set of organizational roles.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleSalesAdmin
	RoleTeamLeader
	RoleSalesRep
)

var roleNames = map[Role]string{
	RoleAdmin:      "admin",
	RoleSalesAdmin: "sales_admin",
	RoleTeamLeader: "team_leader",
	RoleSalesRep:   "sales_rep",
}

// ParseRole converts a wire role name into a Role.
func ParseRole(s string) (Role, error) {
	for role, name := range roleNames {
		if name == s {
			return role, nil
		}
	}
	return RoleUnknown, fmt.Errorf("unknown role: %q", s)
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// CanViewReports reports whether the role passes the report capability check.
func (r Role) CanViewReports() bool {
	switch r {
	case RoleAdmin, RoleSalesAdmin, RoleTeamLeader:
		return true
	case RoleSalesRep, RoleUnknown:
		return false
	}
	return false
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

type User struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Role         Role    `json:"role"`
	TeamID       *string `json:"teamId,omitempty"`
	TeamLeaderID *string `json:"teamLeaderId,omitempty"`
}

// LeadStatus is the lead lifecycle state.
type LeadStatus string

const (
	StatusFreshLead        LeadStatus = "fresh_lead"
	StatusFollowUp         LeadStatus = "follow_up"
	StatusScheduledVisit   LeadStatus = "scheduled_visit"
	StatusOpenDeal         LeadStatus = "open_deal"
	StatusClosedDeal       LeadStatus = "closed_deal"
	StatusCancellation     LeadStatus = "cancellation"
	StatusNoAnswer         LeadStatus = "no_answer"
	StatusVIP              LeadStatus = "vip"
	StatusNonStop          LeadStatus = "non_stop"
	StatusNotInterestedNow LeadStatus = "not_intersted_now"
	StatusReservation      LeadStatus = "reservation"
)

// LeadStatuses lists every lifecycle state in display order.
var LeadStatuses = []LeadStatus{
	StatusFreshLead,
	StatusFollowUp,
	StatusScheduledVisit,
	StatusOpenDeal,
	StatusClosedDeal,
	StatusCancellation,
	StatusNoAnswer,
	StatusVIP,
	StatusNonStop,
	StatusNotInterestedNow,
	StatusReservation,
}

// Date fields are kept as the collaborator sent them; the analytics
// package decides what parses.
type Lead struct {
	ID            string     `json:"id"`
	OwnerID       *string    `json:"ownerId,omitempty"`
	Name          string     `json:"name"`
	Status        LeadStatus `json:"status"`
	Source        string     `json:"source"`
	Budget        float64    `json:"budget"`
	CreatedAt     string     `json:"createdAt"`
	LastCallDate  string     `json:"lastCallDate,omitempty"`
	LastVisitDate string     `json:"lastVisitDate,omitempty"`
	Calls         []Call     `json:"calls,omitempty"`
	Visits        []Visit    `json:"visits,omitempty"`
}

type Call struct {
	Date     string `json:"date"`
	Duration int    `json:"duration"` // seconds
	Outcome  string `json:"outcome,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

const VisitCompleted = "Completed"

type Visit struct {
	Date   string `json:"date"`
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

const MeetingCompleted = "Completed"

type Meeting struct {
	ID           string `json:"id"`
	AssignedToID string `json:"assignedToId"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	Client       string `json:"client,omitempty"`
	Title        string `json:"title,omitempty"`
}

const (
	ContractSigned  = "Signed"
	ContractPending = "Pending"
)

type Contract struct {
	ID           string  `json:"id"`
	CreatedByID  string  `json:"createdById"`
	ClientName   string  `json:"clientName,omitempty"`
	DealValue    float64 `json:"dealValue"`
	ContractDate string  `json:"contractDate"`
	Status       string  `json:"status"`
}

// Dataset is one snapshot of every record the engine reads.
type Dataset struct {
	Users     []User     `json:"users"`
	Leads     []Lead     `json:"leads"`
	Meetings  []Meeting  `json:"meetings"`
	Contracts []Contract `json:"contracts"`
}

// FindUser returns the user with the given id.
func (d *Dataset) FindUser(id string) (User, bool) {
	for _, u := range d.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// LoadDatasetFile reads a JSON dataset from disk.
func LoadDatasetFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return &ds, nil
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
