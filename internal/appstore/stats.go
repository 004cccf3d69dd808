package appstore

import (
	"context"
	"sort"
	"time"

	"github.com/wokaidabaoma/econ-site/internal/model"
)

// upcomingWindow is the look-ahead for deadline warnings.
const upcomingWindow = 7 * 24 * time.Hour

// Statistics aggregates the current collection. It is recomputed from
// storage on every call, never cached.
func (s *Store) Statistics(ctx context.Context) (model.Statistics, error) {
	apps, err := s.List(ctx)
	if err != nil {
		return model.Statistics{}, err
	}

	now := s.now()
	windowEnd := now.Add(upcomingWindow)

	stats := model.Statistics{
		Total:       len(apps),
		ByStatus:    make(map[model.ApplicationStatus]int, len(model.AllStatuses)),
		ByTier:      make(map[model.ApplicationTier]int, len(model.AllTiers)),
		GeneratedAt: now,
	}
	for _, status := range model.AllStatuses {
		stats.ByStatus[status] = 0
	}
	for _, tier := range model.AllTiers {
		stats.ByTier[tier] = 0
	}

	for _, app := range apps {
		stats.ByStatus[app.Status]++
		stats.ByTier[app.Tier]++

		deadline := app.Dates.ApplicationDeadline
		if !deadline.Before(now) && !deadline.After(windowEnd) {
			stats.UpcomingDeadlines = append(stats.UpcomingDeadlines, app)
		}

		for _, test := range app.LanguageTests {
			if test.Status == model.TestNotSubmitting {
				continue
			}
			stats.TestProgress.TotalTests++
			if test.Status == model.TestCompleted {
				stats.TestProgress.LanguageTestsCompleted++
			}
		}
		for _, test := range app.StandardizedTests {
			if test.Status == model.TestNotSubmitting {
				continue
			}
			stats.TestProgress.TotalTests++
			if test.Status == model.TestCompleted {
				stats.TestProgress.StandardizedTestsCompleted++
			}
		}

		for _, req := range app.RecommendationRequirements {
			switch req.Status {
			case model.RecommendationCompleted:
				stats.RecommendationProgress.Completed++
			case model.RecommendationPending:
				stats.RecommendationProgress.Pending++
			case model.RecommendationNotInvited:
				stats.RecommendationProgress.NotInvited++
			}
		}
	}

	sort.SliceStable(stats.UpcomingDeadlines, func(i, j int) bool {
		return stats.UpcomingDeadlines[i].Dates.ApplicationDeadline.
			Before(stats.UpcomingDeadlines[j].Dates.ApplicationDeadline)
	})

	return stats, nil
}
