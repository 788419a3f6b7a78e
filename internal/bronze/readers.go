package bronze

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cinelake/internal/batch"
)

// readCSV parses a headered CSV file. Rows with the wrong field count are
// skipped and counted; an unreadable header fails the whole file.
func (i *Ingestor) readCSV(b batch.Batch, path string, rowIndex *int) ([]RawRecord, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}

	var (
		records []RawRecord
		skipped int
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if len(row) != len(header) {
			skipped++
			continue
		}
		fields := make(map[string]any, len(header))
		for idx, name := range header {
			fields[strings.TrimSpace(name)] = row[idx]
		}
		records = append(records, i.record(b, path, rowIndex, fields))
	}
	return records, skipped, nil
}

// readJSON accepts either a top-level array of objects or line-delimited
// objects, matching how providers actually deliver JSON. In line mode,
// undecodable lines are skipped and counted; a file where nothing decodes
// fails wholesale.
func (i *Ingestor) readJSON(b batch.Batch, path string, rowIndex *int) ([]RawRecord, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, 0, nil
	}

	var array []map[string]any
	if err := json.Unmarshal(data, &array); err == nil {
		records := make([]RawRecord, 0, len(array))
		for _, fields := range array {
			records = append(records, i.record(b, path, rowIndex, fields))
		}
		return records, 0, nil
	}

	var (
		records []RawRecord
		skipped int
	)
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal([]byte(line), &fields); err != nil {
			skipped++
			continue
		}
		records = append(records, i.record(b, path, rowIndex, fields))
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan json lines: %w", err)
	}
	if len(records) == 0 && skipped > 0 {
		return nil, 0, fmt.Errorf("no decodable json records among %d lines", skipped)
	}
	return records, skipped, nil
}

func (i *Ingestor) record(b batch.Batch, path string, rowIndex *int, fields map[string]any) RawRecord {
	record := RawRecord{
		Provider:   b.Provider,
		BatchID:    b.BatchID,
		SourceFile: filepath.Base(path),
		RowIndex:   *rowIndex,
		Fields:     fields,
	}
	*rowIndex++
	return record
}
