package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/wokaidabaoma/econ-site/internal/model"
	pkgerrors "github.com/wokaidabaoma/econ-site/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		for j, cell := range row {
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", axis, cell))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestExcelStrategyParse(t *testing.T) {
	data := buildWorkbook(t, [][]string{
		{"University", "ProgramName", "DeadlineRounds"},
		{"MIT", "MS in CS", "12/15/2025"},
		{"", "", ""},
		{"Cornell", "MPS AEM", "Rolling basis"},
	})

	rows, err := NewExcelStrategy().Parse(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "MIT", rows[0].Get(model.ColUniversity))
	assert.Equal(t, "Rolling basis", rows[1].Get(model.ColDeadlineRounds))
}

func TestExcelStrategyRejectsGarbage(t *testing.T) {
	_, err := NewExcelStrategy().Parse(context.Background(), []byte("not a workbook"))
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidFeedFormat)
}

func TestExcelStrategyHeaderOnly(t *testing.T) {
	data := buildWorkbook(t, [][]string{
		{"University", "ProgramName"},
	})

	_, err := NewExcelStrategy().Parse(context.Background(), data)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidFeedFormat)
}

func TestLoadFilePicksStrategyByExtension(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "catalog.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("University,ProgramName\nMIT,MS in CS\n"), 0o644))

	rows, err := LoadFile(context.Background(), csvPath)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "MIT", rows[0].Get(model.ColUniversity))

	xlsxPath := filepath.Join(dir, "catalog.xlsx")
	require.NoError(t, os.WriteFile(xlsxPath, buildWorkbook(t, [][]string{
		{"University", "ProgramName"},
		{"Cornell", "MPS AEM"},
	}), 0o644))

	rows, err = LoadFile(context.Background(), xlsxPath)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Cornell", rows[0].Get(model.ColUniversity))
}
