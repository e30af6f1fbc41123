// Package export writes performance reports to an Excel workbook for
// teachers: one row per report plus a per-topic summary sheet.
package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/mateai/mate/internal/gateway"
)

const (
	ReportsSheet = "Reportes"
	SummarySheet = "Resumen"
)

var reportHeader = []any{
	"Fecha", "Estudiante", "Tema", "Grado", "Tipo", "Preguntas", "Correctas",
	"Incorrectas", "Puntuación (%)", "Tiempo en ejercicios (s)", "Duración (s)", "Consejos",
}

var summaryHeader = []any{"Tema", "Sesiones", "Preguntas", "Correctas", "Puntuación media (%)"}

// WriteReports writes reports as an .xlsx workbook to w.
func WriteReports(w io.Writer, reports []gateway.PerformanceReport) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ReportsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRow(f, ReportsSheet, 1, reportHeader); err != nil {
		return err
	}
	for i, r := range reports {
		row := []any{
			r.Date.Format("2006-01-02 15:04"), r.StudentID, r.Topic, r.Grade, r.PracticeType,
			r.TotalQuestions, r.CorrectAnswers, r.WrongAnswers, r.Score,
			r.TotalTime, r.SessionDuration, r.Advice,
		}
		if err := writeRow(f, ReportsSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeRow(f, SummarySheet, 1, summaryHeader); err != nil {
		return err
	}
	for i, t := range summarize(reports) {
		row := []any{t.topic, t.sessions, t.questions, t.correct, t.avgScore()}
		if err := writeRow(f, SummarySheet, i+2, row); err != nil {
			return err
		}
	}

	if err := styleHeaders(f); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func styleHeaders(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	for sheet, cols := range map[string]int{ReportsSheet: len(reportHeader), SummarySheet: len(summaryHeader)} {
		last, err := excelize.CoordinatesToCellName(cols, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return fmt.Errorf("style %s header: %w", sheet, err)
		}
	}
	return nil
}

type topicSummary struct {
	topic     string
	sessions  int
	questions int
	correct   int
	scoreSum  int
}

func (t topicSummary) avgScore() int {
	if t.sessions == 0 {
		return 0
	}
	return (t.scoreSum + t.sessions/2) / t.sessions
}

// summarize groups reports by topic, sorted by topic name.
func summarize(reports []gateway.PerformanceReport) []topicSummary {
	byTopic := map[string]*topicSummary{}
	for _, r := range reports {
		t, ok := byTopic[r.Topic]
		if !ok {
			t = &topicSummary{topic: r.Topic}
			byTopic[r.Topic] = t
		}
		t.sessions++
		t.questions += r.TotalQuestions
		t.correct += r.CorrectAnswers
		t.scoreSum += r.Score
	}
	out := make([]topicSummary, 0, len(byTopic))
	for _, t := range byTopic {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].topic < out[j].topic })
	return out
}
