package api

import (
	"context"
	"encoding/json"
	"fmt"
)

// Operation kinds understood by the execute endpoint.
const (
	OpInsert = "Insert"
	OpUpdate = "Update"
	OpSelect = "Select"
	OpDelete = "Delete"
)

// Operation is one entry of an execute batch.
type Operation struct {
	Operation   string      `json:"operation"`
	Instruction Instruction `json:"instruction"`
}

// Instruction describes the query an operation runs. Name keys the result.
type Instruction struct {
	Name      string         `json:"name"`
	Table     string         `json:"table"`
	Data      map[string]any `json:"data,omitempty"`
	Set       map[string]any `json:"set,omitempty"`
	Condition *Condition     `json:"condition,omitempty"`
	Limit     int            `json:"limit,omitempty"`
}

// Condition is a conjunction of equality filters.
type Condition struct {
	And []map[string]any `json:"$and"`
}

// WhereID matches the row with the given id.
func WhereID(id RowID) *Condition {
	return &Condition{And: []map[string]any{{"id": id}}}
}

type executeRequest struct {
	Operations []Operation `json:"operations"`
}

type executeResponse struct {
	Results Results `json:"results"`
}

// Results maps instruction names to their raw result payloads.
type Results map[string]json.RawMessage

// Execute runs a batch of operations and returns the per-instruction results.
func (c *Client) Execute(ctx context.Context, ops ...Operation) (Results, error) {
	data, err := c.post(ctx, apiPrefix+"/execute", executeRequest{Operations: ops})
	if err != nil {
		return nil, err
	}
	resp, err := decodeOne[executeResponse](data)
	if err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return Results{}, nil
	}
	return resp.Results, nil
}

// decodeRows decodes the named result as a list of rows. A single object is
// treated as a one-row list.
func decodeRows[T any](results Results, name string) ([]T, error) {
	raw, ok := results[name]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var rows []T
	if err := json.Unmarshal(raw, &rows); err == nil {
		return rows, nil
	}
	var one T
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("decode result %q: %w", name, err)
	}
	return []T{one}, nil
}
