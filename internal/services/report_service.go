package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alimgiray/devmatch/internal/models"
	"github.com/xuri/excelize/v2"
)

// ReportFormat is an output encoding for match reports
type ReportFormat string

const (
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatXLSX ReportFormat = "xlsx"
	ReportFormatJSON ReportFormat = "json"
)

const matchesSheet = "matches"

// developerColumns is the header of a developer list file
var developerColumns = []string{"name", "email"}

// ReportService reads developer lists and writes match reports as tables
type ReportService struct{}

func NewReportService() *ReportService {
	return &ReportService{}
}

// ParseReportFormat validates a format name, defaulting to CSV
func ParseReportFormat(format string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(format)) {
	case "", ReportFormatCSV:
		return ReportFormatCSV, nil
	case ReportFormatXLSX:
		return ReportFormatXLSX, nil
	case ReportFormatJSON:
		return ReportFormatJSON, nil
	}
	return "", fmt.Errorf("unsupported report format %q", format)
}

// ReportFileName returns the conventional file name of a report for threshold
func (s *ReportService) ReportFileName(threshold float64, format ReportFormat) string {
	return fmt.Sprintf("devs_similarity_t=%s.%s", strconv.FormatFloat(threshold, 'f', -1, 64), format)
}

// ReadDevelopersCSV reads a name,email CSV whose first row is a header.
// Missing trailing fields read as empty strings.
func (s *ReportService) ReadDevelopersCSV(r io.Reader) ([]models.Developer, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var devs []models.Developer
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read developers CSV: %w", err)
		}
		if header {
			header = false
			continue
		}

		dev := models.Developer{}
		if len(record) > 0 {
			dev.Name = record[0]
		}
		if len(record) > 1 {
			dev.Email = record[1]
		}
		devs = append(devs, dev)
	}

	return devs, nil
}

// WriteDevelopersCSV writes devs as a name,email CSV with header
func (s *ReportService) WriteDevelopersCSV(w io.Writer, devs []models.Developer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(developerColumns); err != nil {
		return err
	}
	for _, dev := range devs {
		if err := writer.Write([]string{dev.Name, dev.Email}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSV writes the report header and one row per match
func (s *ReportService) WriteCSV(w io.Writer, report *models.MatchReport) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(models.ReportColumns); err != nil {
		return err
	}
	for _, match := range report.Matches {
		if err := writer.Write(evidenceRow(match)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes the report as a workbook with a single "matches" sheet
func (s *ReportService) WriteXLSX(w io.Writer, report *models.MatchReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), matchesSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(models.ReportColumns))
	for i, column := range models.ReportColumns {
		header[i] = column
	}
	if err := f.SetSheetRow(matchesSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, match := range report.Matches {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			match.Name1, match.Email1, match.Name2, match.Email2,
			match.C1, match.C2, match.C31, match.C32,
			match.C4, match.C5, match.C6, match.C7,
		}
		if err := f.SetSheetRow(matchesSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// evidenceRow renders one match in ReportColumns order
func evidenceRow(match models.MatchEvidence) []string {
	return []string{
		match.Name1, match.Email1, match.Name2, match.Email2,
		formatScore(match.C1), formatScore(match.C2), formatScore(match.C31), formatScore(match.C32),
		formatFlag(match.C4), formatFlag(match.C5), formatFlag(match.C6), formatFlag(match.C7),
	}
}

// formatScore prints the shortest exact decimal, always with a fraction part
func formatScore(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatFlag(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
