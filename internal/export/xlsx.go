// Package export writes contents and their review schedule to an Excel
// workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pbaille/studyrev/internal/domain"
)

// Sheet names in the exported workbook
const (
	ContentsSheet = "Contents"
	ReviewsSheet  = "Reviews"
)

var (
	contentsHeader = []interface{}{"ID", "Title", "Label", "Color", "Created", "Completed reviews"}
	reviewsHeader  = []interface{}{"Content ID", "Title", "Label", "Review", "Scheduled", "Completed", "Completed at"}
)

// Workbook builds an in-memory workbook for contents. Callers must Close it.
func Workbook(contents []domain.Content) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", ContentsSheet)
	if _, err := f.NewSheet(ReviewsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	if err := writeRow(f, ContentsSheet, 1, contentsHeader); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRow(f, ReviewsSheet, 1, reviewsHeader); err != nil {
		f.Close()
		return nil, err
	}

	reviewRow := 2
	for i, c := range contents {
		done := 0
		for _, r := range c.Reviews {
			if r.Completed {
				done++
			}

			completedAt := ""
			if r.CompletedAt != nil {
				completedAt = r.CompletedAt.Format(time.RFC3339)
			}
			row := []interface{}{c.ID, c.Title, c.LabelName, string(r.Type), r.ScheduledDate.String(), r.Completed, completedAt}
			if err := writeRow(f, ReviewsSheet, reviewRow, row); err != nil {
				f.Close()
				return nil, err
			}
			reviewRow++
		}

		row := []interface{}{c.ID, c.Title, c.LabelName, c.LabelColor, c.CreatedAt.Format(time.RFC3339), done}
		if err := writeRow(f, ContentsSheet, i+2, row); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetColWidth(ContentsSheet, "B", "B", 40)
	f.SetColWidth(ReviewsSheet, "B", "B", 40)
	return f, nil
}

// Write streams the workbook for contents to w
func Write(w io.Writer, contents []domain.Content) error {
	f, err := Workbook(contents)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveAs writes the workbook for contents to path
func SaveAs(path string, contents []domain.Content) error {
	f, err := Workbook(contents)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
