package importer

import (
	"strings"

	"github.com/wokaidabaoma/econ-site/internal/model"
)

// requirementRule maps a substring family to a requirement level. Rules are
// evaluated in order and the first hit wins; "not required" must precede
// "required" because the former lexically contains the latter.
type requirementRule struct {
	keywords []string
	level    model.TestRequirement
}

var requirementRules = []requirementRule{
	{[]string{"not required", "不需要", "不要求"}, model.RequirementNotRequired},
	{[]string{"required", "必需", "必须"}, model.RequirementRequired},
	{[]string{"recommended", "建议", "推荐"}, model.RequirementRecommended},
	{[]string{"optional", "可选"}, model.RequirementOptional},
}

// ClassifyRequirement scans free-text for a requirement-level keyword family.
// Unmatched text defaults to RECOMMENDED.
func ClassifyRequirement(text string) model.TestRequirement {
	lowered := strings.ToLower(text)
	for _, rule := range requirementRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule.level
			}
		}
	}
	return model.RequirementRecommended
}

var (
	interviewWaived   = []string{"not required", "不需要", "不要求", "optional", "可选"}
	interviewRequired = []string{"required", "必需", "必须"}
	placeholders      = map[string]bool{"": true, "-": true, "n/a": true}
)

// ClassifyInterview derives the interview posture from the row's free-text
// requirement. Placeholder text means no interview; waived language wins
// over required-like language for the same "not required" reason as above.
func ClassifyInterview(text string) model.InterviewInfo {
	trimmed := strings.TrimSpace(text)
	lowered := strings.ToLower(trimmed)

	if placeholders[lowered] {
		return model.InterviewInfo{Status: model.InterviewNone}
	}

	for _, kw := range interviewWaived {
		if strings.Contains(lowered, kw) {
			return model.InterviewInfo{
				Status: model.InterviewNone,
				Type:   "Optional",
				Notes:  "Interview requirement: " + trimmed,
			}
		}
	}

	for _, kw := range interviewRequired {
		if strings.Contains(lowered, kw) {
			return model.InterviewInfo{
				Status: model.InterviewAwaitingInvitation,
				Type:   "Video Interview",
				Notes:  "Interview requirement: " + trimmed,
			}
		}
	}

	// Anything else non-empty describes some interview process we cannot
	// classify further.
	return model.InterviewInfo{
		Status: model.InterviewAwaitingInvitation,
		Type:   "Interview",
		Notes:  "Interview requirement: " + trimmed,
	}
}
