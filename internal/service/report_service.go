package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"mentormind/internal/repository"
)

// Report sheet names
const (
	SheetGoals   = "Goals"
	SheetReviews = "Reviews"
	SheetXP      = "XP"
)

// ReportService writes progress spreadsheets
type ReportService struct {
	Deps
}

// NewReportService creates a new report service
func NewReportService(deps Deps) *ReportService {
	return &ReportService{Deps: deps}
}

// WriteXLSX writes a workbook covering the last days days with one sheet
// each for daily goals, flashcard reviews and XP events
func (s *ReportService) WriteXLSX(ctx context.Context, userID int64, days int, w io.Writer) error {
	if days <= 0 {
		days = 30
	}
	today := s.today()
	from := today.AddDays(-(days - 1))
	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)

	goals, err := repository.NewGoalRepository(s.DB).ListRange(ctx, userID, from, today)
	if err != nil {
		return err
	}
	reviews, err := repository.NewFlashcardRepository(s.DB).ListReviews(ctx, userID, since)
	if err != nil {
		return err
	}
	events, err := repository.NewUserRepository(s.DB).ListXPEvents(ctx, userID, since)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetGoals); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	rows := [][]any{{"Date", "Focus goal", "Focus minutes", "Flashcards goal", "Flashcards", "Tasks goal", "Tasks", "Met"}}
	for _, g := range goals {
		rows = append(rows, []any{g.Date.String(), g.FocusGoalMinutes, g.FocusAchievedMinutes,
			g.FlashcardsGoal, g.FlashcardsDone, g.TasksGoal, g.TasksDone, g.Met()})
	}
	if err := writeSheet(f, SheetGoals, rows); err != nil {
		return err
	}

	rows = [][]any{{"Reviewed at", "Card", "Quality", "Interval before", "Interval after", "Ease before", "Ease after"}}
	for _, r := range reviews {
		rows = append(rows, []any{r.ReviewedAt.In(s.location()).Format(time.DateTime), r.FlashcardID, r.Quality,
			r.PrevInterval, r.NewInterval, r.PrevEase, r.NewEase})
	}
	if err := writeSheet(f, SheetReviews, rows); err != nil {
		return err
	}

	rows = [][]any{{"Time", "Source", "XP"}}
	for _, e := range events {
		rows = append(rows, []any{e.CreatedAt.In(s.location()).Format(time.DateTime), string(e.Source), e.Amount})
	}
	if err := writeSheet(f, SheetXP, rows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// writeSheet creates sheet if needed and fills it from A1
func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
