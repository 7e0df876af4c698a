// Package export writes a spreadsheet question bank next to the rendered document.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"paper-docx/api/internal/paper"
)

const (
	SheetQuestions = "Questions"
	SheetPaper     = "Paper"
	maxOptions     = 4
)

var headers = []string{"Section", "No", "Type", "Question", "A", "B", "C", "D", "Heading", "Content"}

// QuestionBank returns an XLSX workbook with one row per question or item.
// Header fields, when present, go to a second sheet.
func QuestionBank(p paper.Paper) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetQuestions); err != nil {
		return nil, err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetQuestions, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(SheetQuestions, "A1", "J1", style)
	}

	row := 2
	write := func(col int, v string) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(SheetQuestions, cell, v)
	}
	writeQuestion := func(section string, q paper.Question) {
		write(1, section)
		write(2, q.Number().String())
		write(3, q.Type.String())
		write(4, q.Text.String())
		for i := 0; i < maxOptions && i < len(q.Options); i++ {
			write(5+i, q.Options[i].String())
		}
	}

	for _, s := range p.Sections {
		label := s.Roman.String()
		if s.Title != "" {
			label = fmt.Sprintf("%s. %s", s.Roman, s.Title)
		}
		for _, q := range s.Questions {
			writeQuestion(label, q)
			row++
		}
	}
	for _, it := range p.Items {
		writeQuestion("", it.Question)
		write(9, it.Heading.String())
		write(10, it.Content.String())
		row++
	}

	_ = f.SetColWidth(SheetQuestions, "A", "A", 24)
	_ = f.SetColWidth(SheetQuestions, "B", "C", 8)
	_ = f.SetColWidth(SheetQuestions, "D", "D", 60)
	_ = f.SetColWidth(SheetQuestions, "E", "H", 20)
	_ = f.SetColWidth(SheetQuestions, "I", "J", 40)

	if !p.Header.Empty() {
		if _, err := f.NewSheet(SheetPaper); err != nil {
			return nil, err
		}
		for i, kv := range [][2]string{
			{"Class", p.Header.Class.String()},
			{"Marks", p.Header.Marks.String()},
			{"Date", p.Header.Date.String()},
			{"Time", p.Header.Time.String()},
		} {
			_ = f.SetCellValue(SheetPaper, fmt.Sprintf("A%d", i+1), kv[0])
			_ = f.SetCellValue(SheetPaper, fmt.Sprintf("B%d", i+1), kv[1])
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
