// Package export renders extracted schedules as spreadsheets.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jackzampolin/shiftparse/internal/schedule"
)

const (
	// ScheduleSheet holds one row per entry.
	ScheduleSheet = "Schedule"
	// SummarySheet holds entry counts per type.
	SummarySheet = "Summary"

	// ContentType is the media type of the produced workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var scheduleHeaders = []string{"Date", "Weekday", "Start", "End", "Duration", "Type", "Notes"}

// Service produces XLSX workbooks for schedules.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ScheduleXLSX returns the schedule as an XLSX workbook.
func (s *Service) ScheduleXLSX(sched *schedule.ParsedSchedule) ([]byte, error) {
	if sched == nil {
		return nil, fmt.Errorf("no schedule to export")
	}
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ScheduleSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	activeIndex, _ := f.GetSheetIndex(ScheduleSheet)
	f.SetActiveSheet(activeIndex)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	for i, h := range scheduleHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(ScheduleSheet, cell, h)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(scheduleHeaders), 1)
	_ = f.SetCellStyle(ScheduleSheet, "A1", lastHeader, bold)

	for i, e := range sched.Shifts {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(ScheduleSheet, cell, v)
		}
		write(1, e.Date)
		write(2, e.Weekday)
		write(3, e.StartTime)
		write(4, e.EndTime)
		write(5, e.Duration)
		write(6, string(e.Kind()))
		write(7, e.Notes)
	}

	_ = f.SetColWidth(ScheduleSheet, "A", "A", 12) // date
	_ = f.SetColWidth(ScheduleSheet, "B", "B", 12) // weekday
	_ = f.SetColWidth(ScheduleSheet, "C", "D", 8)  // times
	_ = f.SetColWidth(ScheduleSheet, "E", "F", 12)
	_ = f.SetColWidth(ScheduleSheet, "G", "G", 48) // notes
	_ = f.SetPanes(ScheduleSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	if err := writeSummary(f, sched, bold); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"employee", sched.EmployeeName,
		"rows", len(sched.Shifts),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, sched *schedule.ParsedSchedule, bold int) error {
	rows := [][]any{{"Employee", sched.EmployeeName}, {"Entries", len(sched.Shifts)}}
	counts := sched.Count()
	for _, t := range schedule.EntryTypes {
		rows = append(rows, []any{string(t), counts[t]})
	}
	if len(sched.Shifts) > 0 {
		rows = append(rows,
			[]any{"First date", sched.Shifts[0].Date},
			[]any{"Last date", sched.Shifts[len(sched.Shifts)-1].Date})
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &r); err != nil {
			return fmt.Errorf("xlsx summary: %w", err)
		}
	}
	_ = f.SetCellStyle(SummarySheet, "A1", fmt.Sprintf("A%d", len(rows)), bold)
	_ = f.SetColWidth(SummarySheet, "A", "A", 14)
	_ = f.SetColWidth(SummarySheet, "B", "B", 28)
	return nil
}

// WriteFile writes the workbook for sched to path.
func (s *Service) WriteFile(sched *schedule.ParsedSchedule, path string) error {
	data, err := s.ScheduleXLSX(sched)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
