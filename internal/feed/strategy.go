package feed

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/wokaidabaoma/econ-site/internal/model"
	pkgerrors "github.com/wokaidabaoma/econ-site/pkg/errors"
)

// ParsingStrategy turns a raw catalog payload into sanitized rows.
type ParsingStrategy interface {
	Parse(ctx context.Context, data []byte) ([]model.CatalogRow, error)
}

type CSVStrategy struct{}

func NewCSVStrategy() ParsingStrategy {
	return &CSVStrategy{}
}

// Parse reads the payload as headered CSV. Headers and cells are trimmed and
// rows with no non-empty cell are dropped. A payload that looks like an HTML
// page is rejected outright, that is what the sheet endpoint serves when the
// export is not public.
func (s *CSVStrategy) Parse(ctx context.Context, data []byte) ([]model.CatalogRow, error) {
	if looksLikeHTML(data) {
		return nil, fmt.Errorf("%w: received an HTML page instead of CSV", pkgerrors.ErrInvalidFeedFormat)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrInvalidFeedFormat, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: need a header and at least one data row", pkgerrors.ErrInvalidFeedFormat)
	}

	header := make([]string, len(records[0]))
	for i, col := range records[0] {
		header[i] = strings.TrimSpace(col)
	}

	rows := make([]model.CatalogRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row := model.CatalogRow{}
		for i, cell := range record {
			if i >= len(header) || header[i] == "" {
				continue
			}
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			row[header[i]] = value
		}
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func looksLikeHTML(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	lower := strings.ToLower(string(head))
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype html")
}
