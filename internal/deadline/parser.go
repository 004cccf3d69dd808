// Package deadline parses free-text application deadline descriptions into
// typed rounds with concrete dates.
package deadline

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wokaidabaoma/econ-site/internal/model"
)

// YearPolicy holds the assumptions applied when a date token omits or
// abbreviates its year. Deadlines are usually quoted relative to an
// application cycle that spans a calendar-year boundary, hence the
// roll-forward heuristic.
type YearPolicy struct {
	// TwoDigitYearBase is added to two-digit years ("25" -> 2025).
	TwoDigitYearBase int
	// RollForwardPastMonths places year-less dates whose month precedes the
	// reference month into the next year.
	RollForwardPastMonths bool
}

func DefaultYearPolicy() YearPolicy {
	return YearPolicy{TwoDigitYearBase: 2000, RollForwardPastMonths: true}
}

// Parser resolves deadline text against a fixed reference date, which makes
// parsing deterministic and testable.
type Parser struct {
	now    time.Time
	policy YearPolicy
}

func NewParser(now time.Time) *Parser {
	return &Parser{now: now, policy: DefaultYearPolicy()}
}

func NewParserWithPolicy(now time.Time, policy YearPolicy) *Parser {
	return &Parser{now: now, policy: policy}
}

// Parse is the package-level convenience using the wall clock as reference.
func Parse(text string) model.ParsedDeadline {
	return NewParser(time.Now()).Parse(text)
}

var (
	rollingKeywords = []string{"rolling"}
	ongoingKeywords = []string{"onwards", "ongoing", "open", "continuous"}

	phaseMarker = regexp.MustCompile(`(?i)(phase|round|tier|batch)\s*\d+`)
	// Marker, ordinal, then the first date token before a separator.
	phaseDate  = regexp.MustCompile(`(?i)(phase|round|tier|batch)\s*(\d+)[^;]*?(\d{1,2}/\d{1,2}/\d{2,4})`)
	bareDate   = regexp.MustCompile(`\d{1,2}/\d{1,2}/?\d{0,4}`)
	simpleDate = regexp.MustCompile(`^\d{1,2}/\d{1,2}$`)
	monthYear  = regexp.MustCompile(`(?i)(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{4})`)
	dateToken  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{2}|\d{4}))?$`)
	nonDateRun = regexp.MustCompile(`[^\d/]`)
)

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// Parse classifies the text and extracts its rounds. The classification
// order matters: the categories overlap lexically, and the first match wins.
// Callers never get an error; unparsable input becomes a placeholder round.
func (p *Parser) Parse(text string) model.ParsedDeadline {
	clean := strings.ToLower(strings.TrimSpace(text))
	if clean == "" {
		return model.ParsedDeadline{Type: model.DeadlineSingle, OriginalText: text}
	}

	switch {
	case containsAny(clean, rollingKeywords):
		return p.parseRolling(text)
	case containsAny(clean, ongoingKeywords):
		return p.parseOngoing(text)
	case len(phaseMarker.FindAllString(clean, -1)) > 1:
		return p.parseMultiplePhases(text)
	case simpleDate.MatchString(clean):
		return p.parseSimpleDate(text)
	case monthYear.MatchString(clean):
		return p.parseMonthYear(text)
	default:
		return p.unparsed(text)
	}
}

// farFuture is the synthetic deadline for rounds with no date in the source:
// year end of the next calendar year.
func (p *Parser) farFuture() time.Time {
	return time.Date(p.now.Year()+1, time.December, 31, 0, 0, 0, 0, time.UTC)
}

func (p *Parser) parseRolling(text string) model.ParsedDeadline {
	return model.ParsedDeadline{
		Type: model.DeadlineRolling,
		Rounds: []model.Round{{
			ID:          "rolling",
			Name:        "Rolling Admission",
			Deadline:    p.farFuture(),
			Description: "Submit once materials are complete; applying early is recommended",
		}},
		OriginalText: text,
	}
}

func (p *Parser) parseOngoing(text string) model.ParsedDeadline {
	return model.ParsedDeadline{
		Type: model.DeadlineOngoing,
		Rounds: []model.Round{{
			ID:          "ongoing",
			Name:        "Ongoing Admission",
			Deadline:    p.farFuture(),
			Description: "Admissions remain open; applying early is recommended",
		}},
		OriginalText: text,
	}
}

func (p *Parser) parseMultiplePhases(text string) model.ParsedDeadline {
	var rounds []model.Round

	for _, m := range phaseDate.FindAllStringSubmatch(text, -1) {
		marker, ordinal, dateStr := strings.ToLower(m[1]), m[2], m[3]
		d, ok := p.flexibleDate(dateStr)
		if !ok {
			continue
		}
		rounds = append(rounds, model.Round{
			ID:          marker + ordinal,
			Name:        capitalize(marker) + " " + ordinal,
			Deadline:    d,
			Description: capitalize(marker) + " " + ordinal + " application deadline",
		})
	}

	// No marker-date pairs matched: fall back to every bare date token in
	// order of appearance, numbered sequentially.
	if len(rounds) == 0 {
		tokens := bareDate.FindAllString(text, -1)
		if len(tokens) > 1 {
			for i, tok := range tokens {
				d, ok := p.flexibleDate(tok)
				if !ok {
					continue
				}
				rounds = append(rounds, model.Round{
					ID:          fmt.Sprintf("round%d", i+1),
					Name:        fmt.Sprintf("Round %d", i+1),
					Deadline:    d,
					Description: fmt.Sprintf("Round %d application deadline", i+1),
				})
			}
		}
	}

	sort.SliceStable(rounds, func(i, j int) bool {
		return rounds[i].Deadline.Before(rounds[j].Deadline)
	})

	return model.ParsedDeadline{
		Type:              model.DeadlineMultiple,
		Rounds:            rounds,
		OriginalText:      text,
		HasMultipleRounds: true,
	}
}

func (p *Parser) parseSimpleDate(text string) model.ParsedDeadline {
	d, ok := p.flexibleDate(text)
	if !ok {
		return p.unparsed(text)
	}
	return model.ParsedDeadline{
		Type: model.DeadlineSingle,
		Rounds: []model.Round{{
			ID:          "main",
			Name:        "Application Deadline",
			Deadline:    d,
			Description: "Main application deadline",
		}},
		OriginalText: text,
	}
}

func (p *Parser) parseMonthYear(text string) model.ParsedDeadline {
	m := monthYear.FindStringSubmatch(text)
	if m == nil {
		return p.unparsed(text)
	}
	month := monthsByName[strings.ToLower(m[1])]
	year, _ := strconv.Atoi(m[2])

	// No day is given; the 28th is a safe end-of-month approximation.
	return model.ParsedDeadline{
		Type: model.DeadlineSingle,
		Rounds: []model.Round{{
			ID:          "main",
			Name:        "Application Deadline",
			Deadline:    time.Date(year, month, 28, 0, 0, 0, 0, time.UTC),
			Description: capitalize(strings.ToLower(m[1])) + " " + m[2] + " application deadline",
		}},
		OriginalText: text,
	}
}

func (p *Parser) unparsed(text string) model.ParsedDeadline {
	return model.ParsedDeadline{
		Type: model.DeadlineSingle,
		Rounds: []model.Round{{
			ID:          "unknown",
			Name:        "Deadline Pending",
			Deadline:    p.farFuture(),
			Description: text,
		}},
		OriginalText: text,
	}
}

// flexibleDate resolves an MM/DD[/YY|YYYY] token. Tokens that do not survive
// calendar reconstruction (e.g. "2/30") are rejected.
func (p *Parser) flexibleDate(token string) (time.Time, bool) {
	cleaned := nonDateRun.ReplaceAllString(strings.TrimSpace(token), "")
	cleaned = strings.TrimSuffix(cleaned, "/")

	m := dateToken.FindStringSubmatch(cleaned)
	if m == nil {
		return time.Time{}, false
	}

	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])

	var year int
	switch {
	case len(m[3]) == 2:
		y, _ := strconv.Atoi(m[3])
		year = p.policy.TwoDigitYearBase + y
	case len(m[3]) == 4:
		year, _ = strconv.Atoi(m[3])
	default:
		year = p.now.Year()
		if p.policy.RollForwardPastMonths && month < int(p.now.Month()) {
			year++
		}
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(d.Month()) != month || d.Year() != year {
		return time.Time{}, false
	}
	return d, true
}

// RoundOptions projects rounds for a selection UI. Multi-round results embed
// the formatted date in the label; single-round labels carry just the name.
func RoundOptions(parsed model.ParsedDeadline) []model.RoundOption {
	options := make([]model.RoundOption, 0, len(parsed.Rounds))
	for _, r := range parsed.Rounds {
		label := r.Name
		if parsed.HasMultipleRounds {
			label = fmt.Sprintf("%s (%s)", r.Name, r.Deadline.Format("01/02/2006"))
		}
		options = append(options, model.RoundOption{
			Value:    r.ID,
			Label:    label,
			Deadline: r.Deadline,
		})
	}
	return options
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
