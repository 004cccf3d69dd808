package appstore

import (
	"encoding/json"
	"time"

	"github.com/wokaidabaoma/econ-site/internal/model"

	"github.com/google/uuid"
)

// flexTime decodes a date-shaped field leniently: several layouts are
// accepted and anything unparsable is flagged so the validator can
// substitute "now" instead of failing the record.
type flexTime struct {
	t  time.Time
	ok bool
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			f.t = t
			f.ok = true
			return nil
		}
	}
	return nil
}

func (f flexTime) or(def time.Time) time.Time {
	if f.ok {
		return f.t
	}
	return def
}

func (f flexTime) ptr() *time.Time {
	if !f.ok {
		return nil
	}
	t := f.t
	return &t
}

// storedApplication mirrors the persisted record with lenient date fields.
// normalize turns it into the typed in-memory record, applying the
// documented default for every missing enum or sub-structure.
type storedApplication struct {
	ID          string `json:"id"`
	ProgramID   string `json:"programId"`
	University  string `json:"university"`
	ProgramName string `json:"programName"`
	ProgramType string `json:"programType"`
	Location    string `json:"location"`

	Dates struct {
		ApplicationDeadline  flexTime               `json:"applicationDeadline"`
		Round                model.ApplicationRound `json:"round"`
		OriginalDeadlineText string                 `json:"originalDeadlineText"`
		SelectedRoundID      string                 `json:"selectedRoundId"`
		AvailableRounds      []storedRound          `json:"availableRounds"`
		EarlyDeadline        flexTime               `json:"earlyDeadline"`
		FinalDeadline        flexTime               `json:"finalDeadline"`
		DecisionDate         flexTime               `json:"decisionDate"`
		DepositDeadline      flexTime               `json:"depositDeadline"`
	} `json:"dates"`

	LanguageTests     []storedLanguageTest     `json:"languageTests"`
	StandardizedTests []storedStandardizedTest `json:"standardizedTests"`

	RecommendationRequirements   []storedRecommendation `json:"recommendationRequirements"`
	TotalRecommendationsRequired int                    `json:"totalRecommendationsRequired"`

	Documents struct {
		Resume model.DocumentStatus `json:"resume"`
		Essays model.DocumentStatus `json:"essays"`
	} `json:"documents"`

	Interview struct {
		Status        model.InterviewStatus `json:"status"`
		Type          string                `json:"type"`
		ScheduledDate flexTime              `json:"scheduledDate"`
		CompletedDate flexTime              `json:"completedDate"`
		Interviewer   string                `json:"interviewer"`
		Notes         string                `json:"notes"`
	} `json:"interview"`

	Status        model.ApplicationStatus `json:"status"`
	StatusHistory []storedStatusChange    `json:"statusHistory"`

	Tier model.ApplicationTier `json:"tier"`

	CreatedAt flexTime `json:"createdAt"`
	UpdatedAt flexTime `json:"updatedAt"`
	Notes     string   `json:"notes"`
}

type storedRound struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Deadline    flexTime `json:"deadline"`
	Description string   `json:"description"`
}

type storedLanguageTest struct {
	Type        string                `json:"type"`
	Requirement model.TestRequirement `json:"requirement"`
	MinScore    string                `json:"minScore"`
	Status      model.TestStatus      `json:"status"`
	ActualScore string                `json:"actualScore"`
	TestDate    flexTime              `json:"testDate"`
	Notes       string                `json:"notes"`
}

type storedStandardizedTest struct {
	Type        string                `json:"type"`
	Requirement model.TestRequirement `json:"requirement"`
	Status      model.TestStatus      `json:"status"`
	ActualScore string                `json:"actualScore"`
	TestDate    flexTime              `json:"testDate"`
	Notes       string                `json:"notes"`
}

type storedRecommendation struct {
	ID              string                     `json:"id"`
	RecommenderID   string                     `json:"recommenderId"`
	RecommenderName string                     `json:"recommenderName"`
	Status          model.RecommendationStatus `json:"status"`
	InvitedDate     flexTime                   `json:"invitedDate"`
	SubmittedDate   flexTime                   `json:"submittedDate"`
	Notes           string                     `json:"notes"`
}

type storedStatusChange struct {
	Status model.ApplicationStatus `json:"status"`
	Date   flexTime                `json:"date"`
	Notes  string                  `json:"notes"`
}

func (s storedApplication) normalize(now time.Time) (model.EnhancedApplication, bool) {
	if s.University == "" || s.ProgramName == "" {
		return model.EnhancedApplication{}, false
	}

	app := model.EnhancedApplication{
		ID:          s.ID,
		ProgramID:   s.ProgramID,
		University:  s.University,
		ProgramName: s.ProgramName,
		ProgramType: defaultString(s.ProgramType, "Unknown"),
		Location:    defaultString(s.Location, "Unknown"),

		TotalRecommendationsRequired: s.TotalRecommendationsRequired,

		Status: s.Status,
		Tier:   s.Tier,

		CreatedAt: s.CreatedAt.or(now),
		UpdatedAt: s.UpdatedAt.or(now),
		Notes:     s.Notes,
	}

	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.Status == "" {
		app.Status = model.StatusNotOpen
	}
	if app.Tier == "" {
		app.Tier = model.TierTarget
	}
	if app.TotalRecommendationsRequired <= 0 {
		app.TotalRecommendationsRequired = 2
	}
	if app.UpdatedAt.Before(app.CreatedAt) {
		app.UpdatedAt = app.CreatedAt
	}

	app.Dates = model.ImportantDates{
		ApplicationDeadline:  s.Dates.ApplicationDeadline.or(now),
		Round:                s.Dates.Round,
		OriginalDeadlineText: s.Dates.OriginalDeadlineText,
		SelectedRoundID:      s.Dates.SelectedRoundID,
		EarlyDeadline:        s.Dates.EarlyDeadline.ptr(),
		FinalDeadline:        s.Dates.FinalDeadline.ptr(),
		DecisionDate:         s.Dates.DecisionDate.ptr(),
		DepositDeadline:      s.Dates.DepositDeadline.ptr(),
	}
	if app.Dates.Round == "" {
		app.Dates.Round = model.RoundRolling
	}
	for _, r := range s.Dates.AvailableRounds {
		app.Dates.AvailableRounds = append(app.Dates.AvailableRounds, model.Round{
			ID:          r.ID,
			Name:        r.Name,
			Deadline:    r.Deadline.or(now),
			Description: r.Description,
		})
	}

	app.LanguageTests = make([]model.LanguageTest, 0, len(s.LanguageTests))
	for _, t := range s.LanguageTests {
		app.LanguageTests = append(app.LanguageTests, model.LanguageTest{
			Type:        defaultString(t.Type, "TOEFL"),
			Requirement: defaultRequirement(t.Requirement, model.RequirementRequired),
			MinScore:    defaultString(t.MinScore, "N/A"),
			Status:      defaultTestStatus(t.Status),
			ActualScore: t.ActualScore,
			TestDate:    t.TestDate.ptr(),
			Notes:       t.Notes,
		})
	}

	app.StandardizedTests = make([]model.StandardizedTest, 0, len(s.StandardizedTests))
	for _, t := range s.StandardizedTests {
		app.StandardizedTests = append(app.StandardizedTests, model.StandardizedTest{
			Type:        defaultString(t.Type, "GRE"),
			Requirement: defaultRequirement(t.Requirement, model.RequirementRecommended),
			Status:      defaultTestStatus(t.Status),
			ActualScore: t.ActualScore,
			TestDate:    t.TestDate.ptr(),
			Notes:       t.Notes,
		})
	}

	app.RecommendationRequirements = make([]model.RecommendationRequirement, 0, len(s.RecommendationRequirements))
	for _, r := range s.RecommendationRequirements {
		req := model.RecommendationRequirement{
			ID:              r.ID,
			RecommenderID:   r.RecommenderID,
			RecommenderName: r.RecommenderName,
			Status:          r.Status,
			InvitedDate:     r.InvitedDate.ptr(),
			SubmittedDate:   r.SubmittedDate.ptr(),
			Notes:           r.Notes,
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		if req.Status == "" {
			req.Status = model.RecommendationNotInvited
		}
		app.RecommendationRequirements = append(app.RecommendationRequirements, req)
	}

	app.Documents = model.DocumentProgress{
		Resume: defaultDocumentStatus(s.Documents.Resume),
		Essays: defaultDocumentStatus(s.Documents.Essays),
	}

	app.Interview = model.InterviewInfo{
		Status:        s.Interview.Status,
		Type:          s.Interview.Type,
		ScheduledDate: s.Interview.ScheduledDate.ptr(),
		CompletedDate: s.Interview.CompletedDate.ptr(),
		Interviewer:   s.Interview.Interviewer,
		Notes:         s.Interview.Notes,
	}
	if app.Interview.Status == "" {
		app.Interview.Status = model.InterviewNone
	}

	app.StatusHistory = make([]model.StatusChange, 0, len(s.StatusHistory))
	for _, h := range s.StatusHistory {
		change := model.StatusChange{
			Status: h.Status,
			Date:   h.Date.or(now),
			Notes:  h.Notes,
		}
		if change.Status == "" {
			change.Status = model.StatusNotOpen
		}
		app.StatusHistory = append(app.StatusHistory, change)
	}

	return app, true
}

func defaultString(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func defaultRequirement(value, def model.TestRequirement) model.TestRequirement {
	if value == "" {
		return def
	}
	return value
}

func defaultTestStatus(value model.TestStatus) model.TestStatus {
	if value == "" {
		return model.TestNotTaken
	}
	return value
}

func defaultDocumentStatus(value model.DocumentStatus) model.DocumentStatus {
	if value == "" {
		return model.DocumentInProgress
	}
	return value
}
