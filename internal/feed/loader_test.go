package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wokaidabaoma/econ-site/internal/config"
	"github.com/wokaidabaoma/econ-site/internal/model"
	pkgerrors "github.com/wokaidabaoma/econ-site/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "University,ProgramName,DeadlineRounds\n" +
	"MIT,MS in CS,12/15/2025\n" +
	" , , \n" +
	"Cornell,MPS AEM,Rolling basis\n"

func testConfig(baseURL string) config.FeedConfig {
	return config.FeedConfig{
		BaseURL:       baseURL,
		Timeout:       2 * time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}
}

func TestLoadSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	rows, err := NewLoader(testConfig(srv.URL + "/export?format=csv")).Load(context.Background())
	require.NoError(t, err)

	// The all-whitespace row is dropped.
	require.Len(t, rows, 2)
	assert.Equal(t, "MIT", rows[0].Get(model.ColUniversity))
	assert.Equal(t, "Rolling basis", rows[1].Get(model.ColDeadlineRounds))
}

func TestLoadTrimsHeadersAndCells(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(" University , ProgramName \n MIT , MS in CS \n"))
	}))
	defer srv.Close()

	rows, err := NewLoader(testConfig(srv.URL)).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "MIT", rows[0].Get(model.ColUniversity))
	assert.Equal(t, "MS in CS", rows[0].Get(model.ColProgramName))
}

func TestLoadFallsBackToNextCandidate(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Write([]byte("<html><body>Sign in</body></html>"))
			return
		}
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	rows, err := NewLoader(testConfig(srv.URL + "/export?format=csv")).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestLoadRetriesWholeCandidateList(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Four candidates fail on the first pass, the fifth request
		// (first candidate of the second attempt) succeeds.
		if atomic.AddInt32(&calls, 1) <= 4 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	rows, err := NewLoader(testConfig(srv.URL + "/export?format=csv")).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.EqualValues(t, 5, atomic.LoadInt32(&calls))
}

func TestLoadTerminalMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>Sign in</body></html>"))
	}))
	defer srv.Close()

	_, err := NewLoader(testConfig(srv.URL)).Load(context.Background())

	var ferr pkgerrors.FeedError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, pkgerrors.FeedCauseMalformed, ferr.Cause)
	assert.Equal(t, 2, ferr.Attempts)
	assert.NotEmpty(t, ferr.Message())
}

func TestLoadTerminalEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("University,ProgramName\n , \n"))
	}))
	defer srv.Close()

	_, err := NewLoader(testConfig(srv.URL)).Load(context.Background())

	var ferr pkgerrors.FeedError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, pkgerrors.FeedCauseEmpty, ferr.Cause)
	assert.ErrorIs(t, err, pkgerrors.ErrEmptyFeed)
}

func TestLoadTerminalNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewLoader(testConfig(srv.URL)).Load(context.Background())

	var ferr pkgerrors.FeedError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, pkgerrors.FeedCauseNetwork, ferr.Cause)
}

func TestLoadHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.RetryDelay = time.Hour // cancellation must cut the backoff short

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := NewLoader(cfg).Load(ctx)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Load did not return after cancellation")
	}
}
