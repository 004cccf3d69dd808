// Package importer converts favorited catalog rows into fully-populated
// application records. Loosely-typed row data does not leak past this
// boundary.
package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wokaidabaoma/econ-site/internal/deadline"
	"github.com/wokaidabaoma/econ-site/internal/logger"
	"github.com/wokaidabaoma/econ-site/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Importer struct {
	parser *deadline.Parser
	log    zerolog.Logger
	now    func() time.Time
}

func New(parser *deadline.Parser) *Importer {
	return NewWithClock(parser, time.Now)
}

// NewWithClock fixes the importer's clock, keeping conversion deterministic
// in tests.
func NewWithClock(parser *deadline.Parser, now func() time.Time) *Importer {
	return &Importer{
		parser: parser,
		log:    logger.For("importer"),
		now:    now,
	}
}

// Import converts every favorite into an application record. Missing row
// fields get literal fallbacks; conversion never fails on a single bad row.
// De-duplication against existing applications is the caller's concern.
func (i *Importer) Import(favorites []model.FavoriteRecord) []model.EnhancedApplication {
	apps := make([]model.EnhancedApplication, 0, len(favorites))
	for _, fav := range favorites {
		app := i.convert(fav)
		i.log.Debug().
			Str("university", app.University).
			Str("program", app.ProgramName).
			Msg("Converted favorite to application")
		apps = append(apps, app)
	}
	return apps
}

func (i *Importer) convert(fav model.FavoriteRecord) model.EnhancedApplication {
	now := i.now()
	row := fav.Row

	university := fallback(row.Get(model.ColUniversity), "Unknown University")
	programName := fallback(row.Get(model.ColProgramName), "Unknown Program")
	programType := fallback(row.Get(model.ColProgramType), "Unknown Type")
	location := fallback(row.Get(model.ColLocation), "Unknown Location")

	createdAt := now
	if !fav.SavedAt.IsZero() {
		createdAt = fav.SavedAt
	}

	return model.EnhancedApplication{
		ID:        uuid.NewString(),
		ProgramID: model.ProgramKey(university, programName),

		University:  university,
		ProgramName: programName,
		ProgramType: programType,
		Location:    location,

		Dates: i.extractDates(row),

		LanguageTests:     extractLanguageTests(row),
		StandardizedTests: extractStandardizedTests(row),

		RecommendationRequirements:   []model.RecommendationRequirement{},
		TotalRecommendationsRequired: extractRecommendationCount(row),

		Documents: model.DocumentProgress{
			Resume: model.DocumentInProgress,
			Essays: model.DocumentInProgress,
		},
		Interview: ClassifyInterview(row.Get(model.ColVideoInterview)),

		Status: model.StatusNotOpen,
		StatusHistory: []model.StatusChange{{
			Status: model.StatusNotOpen,
			Date:   now,
			Notes:  "imported from favorites",
		}},

		Tier: model.TierTarget,

		CreatedAt: createdAt,
		UpdatedAt: now,
		Notes:     "Imported from favorites - " + university + " " + programName,
	}
}

func (i *Importer) extractDates(row model.CatalogRow) model.ImportantDates {
	text := row.Get(model.ColDeadlineRounds)
	parsed := i.parser.Parse(text)

	dates := model.ImportantDates{
		Round:                defaultRound(parsed),
		OriginalDeadlineText: text,
		AvailableRounds:      parsed.Rounds,
	}

	if earliest, ok := parsed.EarliestRound(); ok {
		dates.ApplicationDeadline = earliest.Deadline
		dates.SelectedRoundID = earliest.ID
	} else {
		// No round could be derived at all; fall back to June 1 next year.
		dates.ApplicationDeadline = time.Date(i.now().Year()+1, time.June, 1, 0, 0, 0, 0, time.UTC)
	}

	return dates
}

// defaultRound mirrors the parser's own classification instead of using a
// blanket rolling default; rolling stays the sentinel for anything without a
// concrete dated round.
func defaultRound(parsed model.ParsedDeadline) model.ApplicationRound {
	if parsed.Type == model.DeadlineRolling || parsed.Type == model.DeadlineOngoing {
		return model.RoundRolling
	}
	if earliest, ok := parsed.EarliestRound(); ok && earliest.ID != "unknown" {
		return model.RoundOne
	}
	return model.RoundRolling
}

// extractLanguageTests emits one entry per language test column carrying a
// value. When neither is present both tests are tracked with a TBD score so
// the applicant is never left without a language requirement.
func extractLanguageTests(row model.CatalogRow) []model.LanguageTest {
	var tests []model.LanguageTest

	if row.Has(model.ColLanguageTestTOEFL) {
		tests = append(tests, model.LanguageTest{
			Type:        "TOEFL",
			Requirement: model.RequirementRequired,
			MinScore:    row.Get(model.ColLanguageTestTOEFL),
			Status:      model.TestNotTaken,
		})
	}
	if row.Has(model.ColLanguageTestIELTS) {
		tests = append(tests, model.LanguageTest{
			Type:        "IELTS",
			Requirement: model.RequirementRequired,
			MinScore:    row.Get(model.ColLanguageTestIELTS),
			Status:      model.TestNotTaken,
		})
	}

	if len(tests) == 0 {
		for _, typ := range []string{"TOEFL", "IELTS"} {
			tests = append(tests, model.LanguageTest{
				Type:        typ,
				Requirement: model.RequirementRequired,
				MinScore:    "TBD",
				Status:      model.TestNotTaken,
			})
		}
	}

	return tests
}

// extractStandardizedTests emits one entry per populated GRE/GMAT column,
// classifying the requirement from the text. With no data, a single default
// test is inferred from the program type.
func extractStandardizedTests(row model.CatalogRow) []model.StandardizedTest {
	var tests []model.StandardizedTest

	if row.Has(model.ColTestRequiredGRE) {
		tests = append(tests, model.StandardizedTest{
			Type:        "GRE",
			Requirement: ClassifyRequirement(row.Get(model.ColTestRequiredGRE)),
			Status:      model.TestNotTaken,
		})
	}
	if row.Has(model.ColTestRequiredGMAT) {
		tests = append(tests, model.StandardizedTest{
			Type:        "GMAT",
			Requirement: ClassifyRequirement(row.Get(model.ColTestRequiredGMAT)),
			Status:      model.TestNotTaken,
		})
	}

	if len(tests) == 0 {
		typ := "GRE"
		programType := strings.ToLower(row.Get(model.ColProgramType))
		if strings.Contains(programType, "mba") || strings.Contains(programType, "business") {
			typ = "GMAT"
		}
		tests = append(tests, model.StandardizedTest{
			Type:        typ,
			Requirement: model.RequirementRecommended,
			Status:      model.TestNotTaken,
		})
	}

	return tests
}

var firstInteger = regexp.MustCompile(`(\d+)`)

// Alternate headers some sheet revisions used for the recommendation count.
var recommendationColumns = []string{
	model.ColRecommendations, "RecommendationLetters", "LOR", "Letters",
}

func extractRecommendationCount(row model.CatalogRow) int {
	for _, col := range recommendationColumns {
		match := firstInteger.FindString(row.Get(col))
		if match == "" {
			continue
		}
		if n, err := strconv.Atoi(match); err == nil {
			return n
		}
	}
	return 2
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
