// Package feed fetches and parses the published program catalog. The
// catalog lives in a spreadsheet whose CSV export endpoint is flaky, so the
// loader fans out over a list of export-parameter variants and retries the
// whole list with growing backoff before giving up.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/wokaidabaoma/econ-site/internal/config"
	"github.com/wokaidabaoma/econ-site/internal/logger"
	"github.com/wokaidabaoma/econ-site/internal/model"
	pkgerrors "github.com/wokaidabaoma/econ-site/pkg/errors"

	"github.com/rs/zerolog"
)

type Loader struct {
	cfg      config.FeedConfig
	client   *http.Client
	strategy ParsingStrategy
	log      zerolog.Logger
}

func NewLoader(cfg config.FeedConfig) *Loader {
	return &Loader{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		strategy: NewCSVStrategy(),
		log:      logger.For("feed"),
	}
}

// candidateURLs lists the export-parameter variants worth trying. The sheet
// endpoint intermittently ignores some parameter combinations, so the plain
// URL goes first and the alternates follow.
func (l *Loader) candidateURLs() []string {
	base := l.cfg.BaseURL
	stripped := base
	if i := strings.Index(base, "?"); i >= 0 {
		stripped = base[:i]
	}
	return []string{
		base,
		stripped + "?format=csv&single=true&output=csv",
		stripped + "?format=csv&gid=0",
		stripped + "?format=csv&exportFormat=csv",
	}
}

// Load fetches the catalog, trying every candidate URL in order and retrying
// the whole list up to the configured attempt count with retry_delay*attempt
// backoff. The first candidate yielding at least one sanitized row wins.
// Terminal failure is a FeedError classified by its dominant cause.
func (l *Loader) Load(ctx context.Context) ([]model.CatalogRow, error) {
	attempts := l.cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := l.cfg.RetryDelay * time.Duration(attempt-1)
			l.log.Info().Dur("delay", delay).Int("attempt", attempt).Msg("Retrying feed load")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		for _, url := range l.candidateURLs() {
			rows, err := l.fetch(ctx, url)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				l.log.Warn().Err(err).Str("url", url).Msg("Feed candidate failed")
				lastErr = err
				continue
			}
			l.log.Info().Int("rows", len(rows)).Str("url", url).Msg("Feed loaded")
			return rows, nil
		}
	}

	ferr := pkgerrors.FeedError{
		Cause:    classifyCause(lastErr),
		Attempts: attempts,
		Err:      lastErr,
	}
	l.log.Error().Err(ferr.Err).Str("cause", string(ferr.Cause)).Msg("Feed load failed")
	return nil, ferr
}

func (l *Loader) fetch(ctx context.Context, url string) ([]model.CatalogRow, error) {
	reqCtx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: feed returned status %d", pkgerrors.ErrFeedUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}

	rows, err := l.strategy.Parse(ctx, data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.ErrEmptyFeed
	}
	return rows, nil
}

func classifyCause(err error) pkgerrors.FeedCause {
	switch {
	case err == nil:
		return pkgerrors.FeedCauseNetwork
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return pkgerrors.FeedCauseTimeout
	case errors.Is(err, pkgerrors.ErrEmptyFeed):
		return pkgerrors.FeedCauseEmpty
	case errors.Is(err, pkgerrors.ErrInvalidFeedFormat):
		return pkgerrors.FeedCauseMalformed
	default:
		return pkgerrors.FeedCauseNetwork
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
