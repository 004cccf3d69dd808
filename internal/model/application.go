package model

import "time"

// ApplicationRound is the applicant's chosen admission round bucket.
type ApplicationRound string

const (
	RoundOne           ApplicationRound = "round_1"
	RoundTwo           ApplicationRound = "round_2"
	RoundThree         ApplicationRound = "round_3"
	RoundRolling       ApplicationRound = "rolling"
	RoundEarlyDecision ApplicationRound = "early_decision"
)

type TestStatus string

const (
	TestNotTaken       TestStatus = "not_taken"
	TestAwaitingScores TestStatus = "awaiting_scores"
	TestSending        TestStatus = "sending"
	TestCompleted      TestStatus = "completed"
	TestNotSubmitting  TestStatus = "not_submitting"
)

type TestRequirement string

const (
	RequirementRequired    TestRequirement = "required"
	RequirementRecommended TestRequirement = "recommended"
	RequirementOptional    TestRequirement = "optional"
	RequirementNotRequired TestRequirement = "not_required"
)

type RecommendationStatus string

const (
	RecommendationNotInvited RecommendationStatus = "not_invited"
	RecommendationPending    RecommendationStatus = "pending"
	RecommendationCompleted  RecommendationStatus = "completed"
)

type DocumentStatus string

const (
	DocumentInProgress DocumentStatus = "in_progress"
	DocumentCompleted  DocumentStatus = "completed"
)

// ApplicationStatus is the overall application stage. Transitions are not
// enforced; the status history is an observational log, not a guard.
type ApplicationStatus string

const (
	StatusNotOpen            ApplicationStatus = "not_open"
	StatusFilling            ApplicationStatus = "filling"
	StatusSubmitted          ApplicationStatus = "submitted"
	StatusAwaitingInterview  ApplicationStatus = "awaiting_interview"
	StatusInterviewCompleted ApplicationStatus = "interview_completed"
	StatusWaitlist           ApplicationStatus = "waitlist"
	StatusRejected           ApplicationStatus = "rejected"
	StatusAccepted           ApplicationStatus = "accepted"
)

// AllStatuses lists every stage in pipeline order, used for aggregation.
var AllStatuses = []ApplicationStatus{
	StatusNotOpen, StatusFilling, StatusSubmitted, StatusAwaitingInterview,
	StatusInterviewCompleted, StatusWaitlist, StatusRejected, StatusAccepted,
}

type InterviewStatus string

const (
	InterviewNone               InterviewStatus = "no_interview"
	InterviewAwaitingInvitation InterviewStatus = "awaiting_invitation"
	InterviewScheduled          InterviewStatus = "scheduled"
	InterviewCompleted          InterviewStatus = "completed"
)

// ApplicationTier is the applicant's subjective reach/target/safety bucket.
type ApplicationTier string

const (
	TierLottery ApplicationTier = "lottery"
	TierReach   ApplicationTier = "reach"
	TierTarget  ApplicationTier = "target"
	TierSafety  ApplicationTier = "safety"
)

var AllTiers = []ApplicationTier{TierLottery, TierReach, TierTarget, TierSafety}

type LanguageTest struct {
	Type        string          `json:"type"` // TOEFL or IELTS
	Requirement TestRequirement `json:"requirement"`
	MinScore    string          `json:"minScore"`
	Status      TestStatus      `json:"status"`
	ActualScore string          `json:"actualScore,omitempty"`
	TestDate    *time.Time      `json:"testDate,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

type StandardizedTest struct {
	Type        string          `json:"type"` // GRE or GMAT
	Requirement TestRequirement `json:"requirement"`
	Status      TestStatus      `json:"status"`
	ActualScore string          `json:"actualScore,omitempty"`
	TestDate    *time.Time      `json:"testDate,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// RecommendationRequirement is one recommendation slot. The recommender's
// name is copied by value at assignment time; renaming a stored recommender
// does not retroactively relabel requirements.
type RecommendationRequirement struct {
	ID              string               `json:"id"`
	RecommenderID   string               `json:"recommenderId"`
	RecommenderName string               `json:"recommenderName"`
	Status          RecommendationStatus `json:"status"`
	InvitedDate     *time.Time           `json:"invitedDate,omitempty"`
	SubmittedDate   *time.Time           `json:"submittedDate,omitempty"`
	Notes           string               `json:"notes,omitempty"`
}

type DocumentProgress struct {
	Resume DocumentStatus `json:"resume"`
	Essays DocumentStatus `json:"essays"`
}

type InterviewInfo struct {
	Status        InterviewStatus `json:"status"`
	Type          string          `json:"type,omitempty"`
	ScheduledDate *time.Time      `json:"scheduledDate,omitempty"`
	CompletedDate *time.Time      `json:"completedDate,omitempty"`
	Interviewer   string          `json:"interviewer,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

type ImportantDates struct {
	ApplicationDeadline  time.Time        `json:"applicationDeadline"`
	Round                ApplicationRound `json:"round"`
	OriginalDeadlineText string           `json:"originalDeadlineText,omitempty"`
	SelectedRoundID      string           `json:"selectedRoundId,omitempty"`
	AvailableRounds      []Round          `json:"availableRounds,omitempty"`
	EarlyDeadline        *time.Time       `json:"earlyDeadline,omitempty"`
	FinalDeadline        *time.Time       `json:"finalDeadline,omitempty"`
	DecisionDate         *time.Time       `json:"decisionDate,omitempty"`
	DepositDeadline      *time.Time       `json:"depositDeadline,omitempty"`
}

type StatusChange struct {
	Status ApplicationStatus `json:"status"`
	Date   time.Time         `json:"date"`
	Notes  string            `json:"notes,omitempty"`
}

// EnhancedApplication is the primary tracked entity for one program the
// applicant has decided to pursue.
type EnhancedApplication struct {
	ID        string `json:"id"`
	ProgramID string `json:"programId,omitempty"`

	University  string `json:"university"`
	ProgramName string `json:"programName"`
	ProgramType string `json:"programType"`
	Location    string `json:"location"`

	Dates ImportantDates `json:"dates"`

	LanguageTests     []LanguageTest     `json:"languageTests"`
	StandardizedTests []StandardizedTest `json:"standardizedTests"`

	RecommendationRequirements   []RecommendationRequirement `json:"recommendationRequirements"`
	TotalRecommendationsRequired int                         `json:"totalRecommendationsRequired"`

	Documents DocumentProgress `json:"documents"`
	Interview InterviewInfo    `json:"interview"`

	Status        ApplicationStatus `json:"status"`
	StatusHistory []StatusChange    `json:"statusHistory"`

	Tier ApplicationTier `json:"tier"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Notes     string    `json:"notes"`
}

type Recommender struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Title        string `json:"title,omitempty"`
	Institution  string `json:"institution,omitempty"`
	Email        string `json:"email"`
	Relationship string `json:"relationship,omitempty"`
	IsBackup     bool   `json:"isBackup,omitempty"`
}
