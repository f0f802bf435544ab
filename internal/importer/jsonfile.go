package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lessons/internal/domain"
)

// ParseJSON reads an ordered block sequence from a JSON file holding
// either a bare array of {type, data} objects or a full serialized
// document {blocks: [{type, order, data}]}.
func ParseJSON(path string) ([]domain.BlockInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}

	var inputs []domain.BlockInput
	if err := json.Unmarshal(raw, &inputs); err == nil {
		return validated(path, inputs)
	}

	var doc domain.SerializedDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("json %s: neither a block array nor a document: %w", path, err)
	}
	return validated(path, doc.Inputs())
}

// ParseFile dispatches on the file extension.
func ParseFile(path string) ([]domain.BlockInput, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ParseCSV(path)
	case ".json":
		return ParseJSON(path)
	default:
		return nil, fmt.Errorf("unsupported import file %s", path)
	}
}

func validated(path string, inputs []domain.BlockInput) ([]domain.BlockInput, error) {
	for i, in := range inputs {
		if in.Type == "" {
			return nil, fmt.Errorf("json %s: block %d has no type", path, i)
		}
	}
	return inputs, nil
}
