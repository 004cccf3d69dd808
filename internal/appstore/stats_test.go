package appstore

import (
	"context"
	"testing"
	"time"

	"github.com/wokaidabaoma/econ-site/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appWithDeadline(id string, deadline time.Time) model.EnhancedApplication {
	app := sampleApp(id)
	app.Dates.ApplicationDeadline = deadline
	return app
}

func TestStatisticsUpcomingDeadlineWindow(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	// One deadline already passed, two inside the seven-day window (saved
	// out of order), one just beyond it.
	require.NoError(t, store.Save(ctx, []model.EnhancedApplication{
		appWithDeadline("past", testNow.Add(-24*time.Hour)),
		appWithDeadline("soon", testNow.Add(3*24*time.Hour)),
		appWithDeadline("sooner", testNow.Add(24*time.Hour)),
		appWithDeadline("later", testNow.Add(8*24*time.Hour)),
	}))

	stats, err := store.Statistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, testNow, stats.GeneratedAt)

	require.Len(t, stats.UpcomingDeadlines, 2)
	assert.Equal(t, "sooner", stats.UpcomingDeadlines[0].ID)
	assert.Equal(t, "soon", stats.UpcomingDeadlines[1].ID)
}

func TestStatisticsCountsByStatusAndTier(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	a := sampleApp("a")
	b := sampleApp("b")
	b.Status = model.StatusFilling
	b.Tier = model.TierReach
	require.NoError(t, store.Save(ctx, []model.EnhancedApplication{a, b}))

	stats, err := store.Statistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.ByStatus[model.StatusNotOpen])
	assert.Equal(t, 1, stats.ByStatus[model.StatusFilling])
	assert.Equal(t, 1, stats.ByTier[model.TierTarget])
	assert.Equal(t, 1, stats.ByTier[model.TierReach])

	// Every known status and tier appears in the maps, zero or not.
	for _, status := range model.AllStatuses {
		_, ok := stats.ByStatus[status]
		assert.True(t, ok, "missing status bucket %s", status)
	}
	for _, tier := range model.AllTiers {
		_, ok := stats.ByTier[tier]
		assert.True(t, ok, "missing tier bucket %s", tier)
	}
}

func TestStatisticsTestProgressSkipsNotSubmitting(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	app := sampleApp("a")
	app.LanguageTests = []model.LanguageTest{
		{Type: "TOEFL", Status: model.TestCompleted},
		{Type: "IELTS", Status: model.TestNotSubmitting},
	}
	app.StandardizedTests = []model.StandardizedTest{
		{Type: "GRE", Status: model.TestCompleted},
		{Type: "GMAT", Status: model.TestNotTaken},
	}
	require.NoError(t, store.Save(ctx, []model.EnhancedApplication{app}))

	stats, err := store.Statistics(ctx)
	require.NoError(t, err)

	// The NOT_SUBMITTING language test is out of the denominator entirely.
	assert.Equal(t, 3, stats.TestProgress.TotalTests)
	assert.Equal(t, 1, stats.TestProgress.LanguageTestsCompleted)
	assert.Equal(t, 1, stats.TestProgress.StandardizedTestsCompleted)
}

func TestStatisticsRecommendationProgress(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	app := sampleApp("a")
	app.RecommendationRequirements = []model.RecommendationRequirement{
		{Status: model.RecommendationCompleted},
		{Status: model.RecommendationPending},
		{Status: model.RecommendationNotInvited},
		{Status: model.RecommendationNotInvited},
	}
	require.NoError(t, store.Save(ctx, []model.EnhancedApplication{app}))

	stats, err := store.Statistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.RecommendationProgress.Completed)
	assert.Equal(t, 1, stats.RecommendationProgress.Pending)
	assert.Equal(t, 2, stats.RecommendationProgress.NotInvited)
}
