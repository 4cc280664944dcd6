// Package importer loads a spreadsheet log of solved problems.
package importer

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/aliskhannn/revisit/internal/domain/entities"
	"github.com/aliskhannn/revisit/internal/service"
)

// ProblemCreator stores one problem and schedules its reminders.
type ProblemCreator interface {
	Create(ctx context.Context, userID int64, in service.CreateProblemInput) (*entities.Problem, []*entities.Reminder, error)
}

// Config defines where each field lives in the sheet.
type Config struct {
	SheetName        string // empty means the active sheet
	StartRow         int    // 1-based
	NameColumn       string
	DifficultyColumn string
	TagsColumn       string
	DateColumn       string
	URLColumn        string
	NotesColumn      string
}

// DefaultConfig expects a header row followed by
// name | difficulty | tags | date solved | url | notes.
func DefaultConfig() Config {
	return Config{
		StartRow:         2,
		NameColumn:       "A",
		DifficultyColumn: "B",
		TagsColumn:       "C",
		DateColumn:       "D",
		URLColumn:        "E",
		NotesColumn:      "F",
	}
}

// Result holds the outcome of an import.
type Result struct {
	Processed int
	Created   int
	Skipped   int
	Reminders int
	Errors    []string
}

type columns struct {
	name, difficulty, tags, date, url, notes int
}

type Importer struct {
	creator ProblemCreator
	cfg     Config
	logger  *zap.Logger
}

func New(creator ProblemCreator, cfg Config, logger *zap.Logger) *Importer {
	if cfg.StartRow < 1 {
		cfg.StartRow = 1
	}
	return &Importer{creator: creator, cfg: cfg, logger: logger}
}

// ImportFile imports the workbook at path for userID.
func (im *Importer) ImportFile(ctx context.Context, userID int64, path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return im.importWorkbook(ctx, userID, f)
}

// Import reads a workbook from r.
func (im *Importer) Import(ctx context.Context, userID int64, r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return im.importWorkbook(ctx, userID, f)
}

func (im *Importer) importWorkbook(ctx context.Context, userID int64, f *excelize.File) (*Result, error) {
	cols, err := im.resolveColumns()
	if err != nil {
		return nil, err
	}

	sheet := im.cfg.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}

	// Raw values keep date cells as serial numbers instead of locale-formatted text.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	res := &Result{Errors: make([]string, 0)}
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < im.cfg.StartRow {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if blank(row) {
			res.Skipped++
			continue
		}

		res.Processed++
		in, err := parseRow(row, cols)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		_, reminders, err := im.creator.Create(ctx, userID, in)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		res.Created++
		res.Reminders += len(reminders)
	}

	im.logger.Info("spreadsheet imported",
		zap.Int64("user_id", userID),
		zap.String("sheet", sheet),
		zap.Int("processed", res.Processed),
		zap.Int("created", res.Created),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}

func (im *Importer) resolveColumns() (columns, error) {
	var cols columns
	for _, c := range []struct {
		letter string
		dst    *int
	}{
		{im.cfg.NameColumn, &cols.name},
		{im.cfg.DifficultyColumn, &cols.difficulty},
		{im.cfg.TagsColumn, &cols.tags},
		{im.cfg.DateColumn, &cols.date},
		{im.cfg.URLColumn, &cols.url},
		{im.cfg.NotesColumn, &cols.notes},
	} {
		if c.letter == "" {
			*c.dst = -1
			continue
		}
		n, err := excelize.ColumnNameToNumber(c.letter)
		if err != nil {
			return columns{}, fmt.Errorf("column %q: %w", c.letter, err)
		}
		*c.dst = n - 1
	}
	return cols, nil
}

func parseRow(row []string, cols columns) (service.CreateProblemInput, error) {
	solved, err := parseDate(cell(row, cols.date))
	if err != nil {
		return service.CreateProblemInput{}, err
	}

	return service.CreateProblemInput{
		Name:       cell(row, cols.name),
		Difficulty: cell(row, cols.difficulty),
		Tags:       splitTags(cell(row, cols.tags)),
		URL:        cell(row, cols.url),
		DateSolved: solved,
		Notes:      cell(row, cols.notes),
	}, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseDate accepts YYYY-MM-DD text or a spreadsheet date serial.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, entities.NewValidationError("date_solved", "is required")
	}
	if t, err := time.Parse(entities.DateLayout, s); err == nil {
		return t, nil
	}

	serial, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, entities.NewValidationError("date_solved", fmt.Sprintf("cannot parse %q", s))
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, entities.NewValidationError("date_solved", err.Error())
	}
	return t, nil
}

func splitTags(s string) []string {
	tags := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	for i := range tags {
		tags[i] = strings.TrimSpace(tags[i])
	}
	return tags
}
