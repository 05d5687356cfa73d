// Package excel imports the question catalog from spreadsheet files.
package excel

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx/types"
	"github.com/xuri/excelize/v2"

	"github.com/example/examtrainer/internal/database"
	"github.com/example/examtrainer/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath       string // Path to the Excel or CSV file
	TopicColumn    int    // Zero-based column with the topic
	CountryColumn  int    // Zero-based column with the country code
	LanguageColumn int    // Zero-based column with the language code
	ContentColumn  int    // Zero-based column with the content payload
	SheetName      string // Name of the sheet to import
	StartRow       int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		TopicColumn:    0,
		CountryColumn:  1,
		LanguageColumn: 2,
		ContentColumn:  3,
		SheetName:      "Sheet1",
		StartRow:       2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// ImportQuestions imports catalog questions from an Excel or CSV file.
func ImportQuestions(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return importFromCSV(ctx, config)
	}
	return importFromExcel(ctx, config)
}

// importFromExcel imports questions from an Excel file
func importFromExcel(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	repo := database.NewQuestionRepository()
	result := &ImportResult{Errors: make([]string, 0)}

	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		if err := processRow(ctx, row, config, repo, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	return result, nil
}

// importFromCSV imports questions from a CSV file
func importFromCSV(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	repo := database.NewQuestionRepository()
	result := &ImportResult{Errors: make([]string, 0)}

	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %v", err)
		}

		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		result.TotalProcessed++

		if err := processRow(ctx, row, config, repo, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}

	return result, nil
}

// processRow validates one spreadsheet row and inserts it into the catalog
func processRow(ctx context.Context, row []string, config ImportConfig, repo *database.QuestionRepository, result *ImportResult) error {
	topic := cell(row, config.TopicColumn)
	country := strings.ToLower(cell(row, config.CountryColumn))
	language := strings.ToLower(cell(row, config.LanguageColumn))
	content := cell(row, config.ContentColumn)

	if topic == "" || country == "" || language == "" || content == "" {
		result.Skipped++
		return nil
	}

	// Non-JSON content is wrapped so the stored payload stays valid JSON
	if !json.Valid([]byte(content)) {
		wrapped, err := json.Marshal(map[string]string{"text": content})
		if err != nil {
			return fmt.Errorf("failed to wrap content: %v", err)
		}
		content = string(wrapped)
	}

	question := &models.Question{
		Topic:    topic,
		Country:  country,
		Language: language,
		Content:  types.JSONText(content),
	}
	if err := repo.Create(ctx, question); err != nil {
		return err
	}

	result.Created++
	return nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
