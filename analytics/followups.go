// ABOUTME: Follow-up metric sources
// ABOUTME: No real follow-up entity exists, so metrics are either not tracked or explicitly synthetic
package analytics

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"

	"github.com/harperreed/salesreport/models"
)

// FollowUpStats is a follow-up metric that may have no backing data.
// Untracked stats render as "N/A"; synthetic stats must be labelled as such.
type FollowUpStats struct {
	Tracked   bool `json:"tracked"`
	Synthetic bool `json:"synthetic"`
	Total     int  `json:"total"`
	Completed int  `json:"completed"`
}

func (s FollowUpStats) add(o FollowUpStats) FollowUpStats {
	return FollowUpStats{
		Tracked:   s.Tracked || o.Tracked,
		Synthetic: s.Synthetic || o.Synthetic,
		Total:     s.Total + o.Total,
		Completed: s.Completed + o.Completed,
	}
}

// FollowUp is one follow-up attached to a lead.
type FollowUp struct {
	LeadID    string `json:"leadId"`
	LeadName  string `json:"leadName"`
	OwnerID   string `json:"ownerId"`
	Sequence  int    `json:"sequence"`
	Completed bool   `json:"completed"`
	Synthetic bool   `json:"synthetic"`
}

// FollowUpSource supplies follow-ups for a lead.
type FollowUpSource interface {
	Tracked() bool
	Synthetic() bool
	FollowUpsFor(lead models.Lead) []FollowUp
}

// NotTracked reports follow-ups as unsupported.
type NotTracked struct{}

func (NotTracked) Tracked() bool                       { return false }
func (NotTracked) Synthetic() bool                     { return false }
func (NotTracked) FollowUpsFor(models.Lead) []FollowUp { return nil }

// SyntheticFollowUps generates 1-3 demo follow-ups per lead, roughly 70%
// completed. The generator is seeded from the lead ID so a report is
// reproducible.
type SyntheticFollowUps struct{}

func (SyntheticFollowUps) Tracked() bool   { return true }
func (SyntheticFollowUps) Synthetic() bool { return true }

func (SyntheticFollowUps) FollowUpsFor(lead models.Lead) []FollowUp {
	h := fnv.New64a()
	_, _ = h.Write([]byte(lead.ID))
	seed := h.Sum64()
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	owner := ""
	if lead.OwnerID != nil {
		owner = *lead.OwnerID
	}

	n := 1 + r.IntN(3)
	out := make([]FollowUp, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, FollowUp{
			LeadID:    lead.ID,
			LeadName:  lead.Name,
			OwnerID:   owner,
			Sequence:  i + 1,
			Completed: r.Float64() < 0.7,
			Synthetic: true,
		})
	}
	return out
}

// ParseFollowUpSource accepts "not_tracked" or "synthetic".
func ParseFollowUpSource(s string) (FollowUpSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "not_tracked":
		return NotTracked{}, nil
	case "synthetic":
		return SyntheticFollowUps{}, nil
	}
	return nil, fmt.Errorf("unknown follow-up source: %q", s)
}
