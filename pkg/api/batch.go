package api

import (
	"encoding/json"
	"fmt"
)

// NewBatchResponse creates a successful response with no items.
func NewBatchResponse() *BatchResponse {
	return &BatchResponse{Status: true, Results: map[string]Result{}}
}

// Set records the result of an item. A failed item fails the batch.
func (b *BatchResponse) Set(item string, r Result) {
	b.Results[item] = r
	if !r.Status {
		b.Status = false
	}
}

// MarshalJSON encodes the response as one flat object.
func (b BatchResponse) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Results)+1)
	for item, r := range b.Results {
		out[item] = r
	}
	out["status"] = b.Status
	return json.Marshal(out)
}

// UnmarshalJSON decodes the flat object written by MarshalJSON.
func (b *BatchResponse) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	b.Results = make(map[string]Result, len(raw))
	for key, value := range raw {
		if key == "status" {
			if err := json.Unmarshal(value, &b.Status); err != nil {
				return fmt.Errorf("invalid status: %w", err)
			}
			continue
		}
		var r Result
		if err := json.Unmarshal(value, &r); err != nil {
			return fmt.Errorf("invalid result for %q: %w", key, err)
		}
		b.Results[key] = r
	}
	return nil
}
