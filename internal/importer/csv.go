package importer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"lessons/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// CSV import — one block per row
// ─────────────────────────────────────────────────────────────

// ParseCSV reads an ordered block sequence from a CSV file. The header
// must contain a "type" column; every other column becomes a data field.
// Two columns get special treatment: "data" holds a JSON object merged
// into the payload, and "steps" is split on "|" into a list.
func ParseCSV(path string) ([]domain.BlockInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv %s: empty file", path)
	}

	header := rows[0]
	typeCol := -1
	for i, h := range header {
		if strings.TrimSpace(strings.ToLower(h)) == "type" {
			typeCol = i
			break
		}
	}
	if typeCol == -1 {
		return nil, fmt.Errorf("csv %s: no \"type\" column", path)
	}

	var inputs []domain.BlockInput
	for rowNum, row := range rows[1:] {
		if len(row) == 0 || typeCol >= len(row) || strings.TrimSpace(row[typeCol]) == "" {
			continue
		}
		data := domain.BlockData{}
		for i, h := range header {
			if i == typeCol || i >= len(row) {
				continue
			}
			key := strings.TrimSpace(h)
			val := row[i]
			switch key {
			case "data":
				if strings.TrimSpace(val) == "" {
					continue
				}
				var obj map[string]any
				if err := json.Unmarshal([]byte(val), &obj); err != nil {
					return nil, fmt.Errorf("csv %s row %d: data column: %w", path, rowNum+2, err)
				}
				for k, v := range obj {
					data[k] = v
				}
			case "steps":
				if strings.TrimSpace(val) == "" {
					continue
				}
				parts := strings.Split(val, "|")
				steps := make([]any, 0, len(parts))
				for _, p := range parts {
					steps = append(steps, strings.TrimSpace(p))
				}
				data[key] = steps
			default:
				if val != "" {
					data[key] = val
				}
			}
		}
		inputs = append(inputs, domain.BlockInput{
			Type: strings.TrimSpace(row[typeCol]),
			Data: data,
		})
	}
	return inputs, nil
}
