// Package appstore persists the tracked application collection and the
// recommender list as wholesale JSON documents, validating and migrating
// every record on read.
package appstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wokaidabaoma/econ-site/internal/logger"
	"github.com/wokaidabaoma/econ-site/internal/model"
	"github.com/wokaidabaoma/econ-site/internal/storage"
	pkgerrors "github.com/wokaidabaoma/econ-site/pkg/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Storage keys and schema version are part of the persisted wire format.
const (
	applicationsKey = "enhanced_application_tracker_data"
	recommendersKey = "application_recommenders"
	schemaVersion   = "2.0"
)

type applicationsBlob struct {
	Version      string            `json:"version"`
	Applications []json.RawMessage `json:"applications"`
	LastUpdated  string            `json:"lastUpdated"`
}

type Store struct {
	kv  storage.Store
	log zerolog.Logger
	now func() time.Time
}

func NewStore(kv storage.Store) *Store {
	return NewStoreWithClock(kv, time.Now)
}

func NewStoreWithClock(kv storage.Store, now func() time.Time) *Store {
	return &Store{
		kv:  kv,
		log: logger.For("appstore"),
		now: now,
	}
}

// List reads the persisted collection. Records that cannot be decoded or
// that lack a university/program name are logged and dropped; every other
// shape defect is repaired with documented defaults. One corrupt entry never
// fails the whole read.
func (s *Store) List(ctx context.Context) ([]model.EnhancedApplication, error) {
	raw, err := s.kv.Get(ctx, applicationsKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []model.EnhancedApplication{}, nil
	}
	if err != nil {
		return nil, err
	}

	var blob applicationsBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		s.log.Error().Err(err).Msg("Corrupt applications blob, treating as empty")
		return []model.EnhancedApplication{}, nil
	}

	apps := make([]model.EnhancedApplication, 0, len(blob.Applications))
	for i, entry := range blob.Applications {
		app, ok := s.decodeApplication(entry, i)
		if !ok {
			continue
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func (s *Store) decodeApplication(entry json.RawMessage, index int) (model.EnhancedApplication, bool) {
	var stored storedApplication
	if err := json.Unmarshal(entry, &stored); err != nil {
		s.log.Warn().Err(err).Int("index", index).Msg("Undecodable application record, dropping")
		return model.EnhancedApplication{}, false
	}

	app, ok := stored.normalize(s.now())
	if !ok {
		s.log.Warn().Int("index", index).Msg("Application record missing university/program name, dropping")
		return model.EnhancedApplication{}, false
	}
	return app, true
}

// Save overwrites the persisted collection wholesale and refreshes the
// top-level timestamp. There are no partial writes.
func (s *Store) Save(ctx context.Context, apps []model.EnhancedApplication) error {
	entries := make([]json.RawMessage, 0, len(apps))
	for _, app := range apps {
		data, err := json.Marshal(app)
		if err != nil {
			return fmt.Errorf("failed to marshal application %s: %w", app.ID, err)
		}
		entries = append(entries, data)
	}

	blob := applicationsBlob{
		Version:      schemaVersion,
		Applications: entries,
		LastUpdated:  s.now().Format(time.RFC3339),
	}
	data, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("failed to marshal applications blob: %w", err)
	}

	if err := s.kv.Set(ctx, applicationsKey, string(data)); err != nil {
		return err
	}
	s.log.Debug().Int("count", len(apps)).Msg("Applications saved")
	return nil
}

// Add appends a new application, assigning identity and bookkeeping fields.
// The first status history entry is written at creation time.
func (s *Store) Add(ctx context.Context, app model.EnhancedApplication) (model.EnhancedApplication, error) {
	now := s.now()
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = model.StatusNotOpen
	}
	if len(app.StatusHistory) == 0 {
		app.StatusHistory = []model.StatusChange{{
			Status: app.Status,
			Date:   now,
			Notes:  "created",
		}}
	}
	if app.Tier == "" {
		app.Tier = model.TierTarget
	}

	apps, err := s.List(ctx)
	if err != nil {
		return model.EnhancedApplication{}, err
	}
	apps = append(apps, app)
	if err := s.Save(ctx, apps); err != nil {
		return model.EnhancedApplication{}, err
	}
	return app, nil
}

// Update merges a partial patch into the identified application, always
// refreshing updatedAt. A status field in the patch appends to the history
// log; prior entries are never touched.
func (s *Store) Update(ctx context.Context, id string, patch model.ApplicationPatch) (model.EnhancedApplication, error) {
	apps, err := s.List(ctx)
	if err != nil {
		return model.EnhancedApplication{}, err
	}

	index := -1
	for i := range apps {
		if apps[i].ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return model.EnhancedApplication{}, fmt.Errorf("%w: %s", pkgerrors.ErrApplicationNotFound, id)
	}

	now := s.now()
	app := &apps[index]
	applyPatch(app, patch)
	if patch.Status != nil {
		app.Status = *patch.Status
		app.StatusHistory = append(app.StatusHistory, model.StatusChange{
			Status: *patch.Status,
			Date:   now,
			Notes:  patch.StatusNotes,
		})
	}
	app.UpdatedAt = now

	if err := s.Save(ctx, apps); err != nil {
		return model.EnhancedApplication{}, err
	}
	return *app, nil
}

func applyPatch(app *model.EnhancedApplication, patch model.ApplicationPatch) {
	if patch.University != nil {
		app.University = *patch.University
	}
	if patch.ProgramName != nil {
		app.ProgramName = *patch.ProgramName
	}
	if patch.ProgramType != nil {
		app.ProgramType = *patch.ProgramType
	}
	if patch.Location != nil {
		app.Location = *patch.Location
	}
	if patch.Dates != nil {
		app.Dates = *patch.Dates
	}
	if patch.LanguageTests != nil {
		app.LanguageTests = *patch.LanguageTests
	}
	if patch.StandardizedTests != nil {
		app.StandardizedTests = *patch.StandardizedTests
	}
	if patch.RecommendationRequirements != nil {
		app.RecommendationRequirements = *patch.RecommendationRequirements
	}
	if patch.TotalRecommendationsRequired != nil {
		app.TotalRecommendationsRequired = *patch.TotalRecommendationsRequired
	}
	if patch.Documents != nil {
		app.Documents = *patch.Documents
	}
	if patch.Interview != nil {
		app.Interview = *patch.Interview
	}
	if patch.Tier != nil {
		app.Tier = *patch.Tier
	}
	if patch.Notes != nil {
		app.Notes = *patch.Notes
	}
}

// SetStatus is the dedicated status transition entry point.
func (s *Store) SetStatus(ctx context.Context, id string, status model.ApplicationStatus, notes string) (model.EnhancedApplication, error) {
	return s.Update(ctx, id, model.ApplicationPatch{
		Status:      &status,
		StatusNotes: notes,
	})
}

// Remove filters the id out of the collection. Removing an unknown id is a
// no-op on the stored data.
func (s *Store) Remove(ctx context.Context, id string) error {
	apps, err := s.List(ctx)
	if err != nil {
		return err
	}

	kept := apps[:0]
	for _, app := range apps {
		if app.ID != id {
			kept = append(kept, app)
		}
	}
	return s.Save(ctx, kept)
}

// MergeImported appends imported applications whose program id is not
// already tracked and reports how many were added.
func (s *Store) MergeImported(ctx context.Context, imported []model.EnhancedApplication) (int, error) {
	apps, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	known := make(map[string]bool, len(apps))
	for _, app := range apps {
		if app.ProgramID != "" {
			known[app.ProgramID] = true
		}
	}

	added := 0
	for _, app := range imported {
		if app.ProgramID != "" && known[app.ProgramID] {
			s.log.Debug().Str("program_id", app.ProgramID).Msg("Skipping already-tracked program")
			continue
		}
		known[app.ProgramID] = true
		apps = append(apps, app)
		added++
	}

	if added > 0 {
		if err := s.Save(ctx, apps); err != nil {
			return 0, err
		}
	}
	return added, nil
}

// Recommenders reads the independently keyed recommender list.
func (s *Store) Recommenders(ctx context.Context) ([]model.Recommender, error) {
	raw, err := s.kv.Get(ctx, recommendersKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []model.Recommender{}, nil
	}
	if err != nil {
		return nil, err
	}

	var recommenders []model.Recommender
	if err := json.Unmarshal([]byte(raw), &recommenders); err != nil {
		s.log.Error().Err(err).Msg("Corrupt recommenders blob, treating as empty")
		return []model.Recommender{}, nil
	}
	return recommenders, nil
}

// AddRecommender validates and appends a recommender. Nothing is written
// when validation fails.
func (s *Store) AddRecommender(ctx context.Context, r model.Recommender) (model.Recommender, error) {
	if r.Name == "" {
		return model.Recommender{}, pkgerrors.ValidationError{
			Field: "name", Value: r.Name, Message: "recommender name is required",
		}
	}
	if r.Email == "" {
		return model.Recommender{}, pkgerrors.ValidationError{
			Field: "email", Value: r.Email, Message: "recommender email is required",
		}
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	recommenders, err := s.Recommenders(ctx)
	if err != nil {
		return model.Recommender{}, err
	}
	recommenders = append(recommenders, r)
	if err := s.SaveRecommenders(ctx, recommenders); err != nil {
		return model.Recommender{}, err
	}
	return r, nil
}

func (s *Store) SaveRecommenders(ctx context.Context, recommenders []model.Recommender) error {
	data, err := json.Marshal(recommenders)
	if err != nil {
		return fmt.Errorf("failed to marshal recommenders: %w", err)
	}
	return s.kv.Set(ctx, recommendersKey, string(data))
}
