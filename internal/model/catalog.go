package model

import (
	"regexp"
	"strings"
	"time"
)

// Column names are the contract with the published spreadsheet feed.
const (
	ColUniversity        = "University"
	ColLocation          = "Location"
	ColProgramName       = "ProgramName"
	ColProgramType       = "ProgramType"
	ColDuration          = "Duration"
	ColDeadlineRounds    = "DeadlineRounds"
	ColTestRequiredGRE   = "TestRequiredGRE"
	ColTestRequiredGMAT  = "TestRequiredGMAT"
	ColLanguageTestTOEFL = "LanguageTestTOEFL"
	ColLanguageTestIELTS = "LanguageTestIELTS"
	ColRecommendations   = "Recommendations"
	ColVideoInterview    = "VideoInterview"
	ColTuitionFeeLocal   = "TuitionFeeLocal"
	ColTuitionFeeCNY     = "TuitionFeeCNY"
	ColQSRank            = "QSRank"
	ColNotes             = "Notes"

	// Free-text columns published under their Chinese headers.
	ColLanguageSpecialReq  = "语言特殊要求"
	ColApplicantBackground = "申请者背景要求"
	ColDegreeBackground    = "学位背景要求"
	ColProgramFeatures     = "项目特色"
	ColCurriculum          = "课程设置"
	ColOtherInfo           = "其他信息"
)

// CatalogRow is one program's published attributes keyed by column header.
// Rows are loosely typed at the ingestion boundary; the importer is the only
// component allowed to interpret them.
type CatalogRow map[string]string

// Get returns the trimmed value of a column, or "" when absent.
func (r CatalogRow) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// Has reports whether a column carries a non-empty value.
func (r CatalogRow) Has(column string) bool {
	return r.Get(column) != ""
}

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	nonKeyCharacter = regexp.MustCompile(`[^a-zA-Z0-9-]`)
)

// ProgramKey derives the stable identifier for a catalog row from its
// university and program name: whitespace runs become hyphens, every other
// non-alphanumeric character is stripped. The exact same transformation is
// used for favorites and application de-duplication; changing it silently
// breaks cross-matching against stored data.
func ProgramKey(university, programName string) string {
	key := university + "-" + programName
	key = whitespaceRun.ReplaceAllString(key, "-")
	return nonKeyCharacter.ReplaceAllString(key, "")
}

// Key derives the row's program key.
func (r CatalogRow) Key() string {
	return ProgramKey(r.Get(ColUniversity), r.Get(ColProgramName))
}

// FavoriteRecord wraps a catalog row snapshot with the column selection the
// user had visible when saving it. Records are replaced wholesale, never
// partially mutated.
type FavoriteRecord struct {
	Row             CatalogRow `json:"row"`
	SelectedColumns []string   `json:"selectedColumns"`
	SavedAt         time.Time  `json:"savedAt"`
}
