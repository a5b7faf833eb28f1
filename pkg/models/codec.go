package models

import (
	"fmt"

	"github.com/goccy/go-json"
)

// toMap converts a record into its plain structured form by way of JSON, so
// the map has exactly the keys and shapes that are persisted and exchanged.
func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %T into map: %w", v, err)
	}
	return out, nil
}

// fromMap fills v from a structured map. Unknown keys are an error.
func fromMap(m map[string]any, v any) error {
	if m == nil {
		return fmt.Errorf("%w: nil map", ErrMalformedInput)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return decodeStrict(data, v)
}
