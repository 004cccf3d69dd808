package feed

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wokaidabaoma/econ-site/internal/model"
	pkgerrors "github.com/wokaidabaoma/econ-site/pkg/errors"

	"github.com/xuri/excelize/v2"
)

type ExcelStrategy struct{}

func NewExcelStrategy() ParsingStrategy {
	return &ExcelStrategy{}
}

// Parse reads the first worksheet of an xlsx payload through the same
// header-mapping and sanitization rules as the CSV path.
func (s *ExcelStrategy) Parse(ctx context.Context, data []byte) ([]model.CatalogRow, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrInvalidFeedFormat, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", pkgerrors.ErrInvalidFeedFormat)
	}

	records, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
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

// LoadFile ingests a locally downloaded catalog copy, picking the strategy
// from the file extension.
func LoadFile(ctx context.Context, path string) ([]model.CatalogRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var strategy ParsingStrategy
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		strategy = NewExcelStrategy()
	default:
		strategy = NewCSVStrategy()
	}
	return strategy.Parse(ctx, data)
}
