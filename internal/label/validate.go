package label

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed labels.schema.json
var labelsSchemaSrc string

var labelsSchema = jsonschema.MustCompileString("labels.schema.json", labelsSchemaSrc)

// ParseMap validates and decodes a raw label map (import files,
// backups). Nothing is applied to any store here; a bad file fails
// before the caller mutates anything.
func ParseMap(raw []byte) (map[string]Label, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parse labels: %w", err)
	}
	if err := labelsSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("validate labels: %w", err)
	}
	m := make(map[string]Label)
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse labels: %w", err)
	}
	return m, nil
}
