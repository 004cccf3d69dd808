package model

import "time"

// DeadlineType classifies the shape of a program's deadline text.
type DeadlineType string

const (
	DeadlineSingle   DeadlineType = "single"
	DeadlineMultiple DeadlineType = "multiple"
	DeadlineRolling  DeadlineType = "rolling"
	DeadlineOngoing  DeadlineType = "ongoing"
)

// Round is one discrete submission deadline within an admissions cycle.
type Round struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Deadline    time.Time `json:"deadline"`
	Description string    `json:"description,omitempty"`
}

// ParsedDeadline is the result of parsing one deadline text. It is derived
// and recomputed on demand, never persisted independently; the owning
// application records the selected round.
type ParsedDeadline struct {
	Type              DeadlineType `json:"type"`
	Rounds            []Round      `json:"rounds"`
	OriginalText      string       `json:"originalText"`
	HasMultipleRounds bool         `json:"hasMultipleRounds"`
}

// EarliestRound returns the first round of the ascending-sorted list, which
// is the default selection when the applicant has not chosen one.
func (p ParsedDeadline) EarliestRound() (Round, bool) {
	if len(p.Rounds) == 0 {
		return Round{}, false
	}
	return p.Rounds[0], true
}

// RoundByID looks up a specific round.
func (p ParsedDeadline) RoundByID(id string) (Round, bool) {
	for _, r := range p.Rounds {
		if r.ID == id {
			return r, true
		}
	}
	return Round{}, false
}

// RoundOption is the user-facing projection of a round for selection UIs.
type RoundOption struct {
	Value    string    `json:"value"`
	Label    string    `json:"label"`
	Deadline time.Time `json:"deadline"`
}
