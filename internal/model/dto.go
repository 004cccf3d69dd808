package model

import "time"

// FavoriteRequest is the payload for saving a catalog row as a favorite.
type FavoriteRequest struct {
	Row             CatalogRow `json:"row"`
	SelectedColumns []string   `json:"selectedColumns"`
}

// StatusChangeRequest moves an application to a new stage, appending to its
// status history.
type StatusChangeRequest struct {
	Status ApplicationStatus `json:"status"`
	Notes  string            `json:"notes"`
}

// ApplicationPatch carries the fields a caller may change on an existing
// application. Nil fields are left untouched.
type ApplicationPatch struct {
	University                   *string                      `json:"university,omitempty"`
	ProgramName                  *string                      `json:"programName,omitempty"`
	ProgramType                  *string                      `json:"programType,omitempty"`
	Location                     *string                      `json:"location,omitempty"`
	Dates                        *ImportantDates              `json:"dates,omitempty"`
	LanguageTests                *[]LanguageTest              `json:"languageTests,omitempty"`
	StandardizedTests            *[]StandardizedTest          `json:"standardizedTests,omitempty"`
	RecommendationRequirements   *[]RecommendationRequirement `json:"recommendationRequirements,omitempty"`
	TotalRecommendationsRequired *int                         `json:"totalRecommendationsRequired,omitempty"`
	Documents                    *DocumentProgress            `json:"documents,omitempty"`
	Interview                    *InterviewInfo               `json:"interview,omitempty"`
	Status                       *ApplicationStatus           `json:"status,omitempty"`
	StatusNotes                  string                       `json:"statusNotes,omitempty"`
	Tier                         *ApplicationTier             `json:"tier,omitempty"`
	Notes                        *string                      `json:"notes,omitempty"`
}

type TestProgress struct {
	LanguageTestsCompleted     int `json:"languageTestsCompleted"`
	StandardizedTestsCompleted int `json:"standardizedTestsCompleted"`
	TotalTests                 int `json:"totalTests"`
}

type RecommendationProgress struct {
	Completed  int `json:"completed"`
	Pending    int `json:"pending"`
	NotInvited int `json:"notInvited"`
}

// Statistics is a read-only projection over the current applications,
// recomputed on every call.
type Statistics struct {
	Total                  int                       `json:"total"`
	ByStatus               map[ApplicationStatus]int `json:"byStatus"`
	ByTier                 map[ApplicationTier]int   `json:"byTier"`
	UpcomingDeadlines      []EnhancedApplication     `json:"upcomingDeadlines"`
	TestProgress           TestProgress              `json:"testProgress"`
	RecommendationProgress RecommendationProgress    `json:"recommendationProgress"`
	GeneratedAt            time.Time                 `json:"generatedAt"`
}
