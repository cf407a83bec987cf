package api

import (
	"context"
	"fmt"

	"github.com/gravitrone/datafiles/internal/errs"
)

// Instruction names used for record queries.
const (
	instructionList   = "getData"
	instructionInsert = "insertData"
	instructionRecord = "data"
	instructionRemove = "remove"
)

// ListRecords selects up to limit rows in API order.
func (c *Client) ListRecords(ctx context.Context, table string, limit int) ([]Record, error) {
	results, err := c.Execute(ctx, Operation{
		Operation: OpSelect,
		Instruction: Instruction{
			Name:  instructionList,
			Table: table,
			Limit: limit,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrRemoteRead, err)
	}
	rows, err := decodeRows[Record](results, instructionList)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrRemoteRead, err)
	}
	return rows, nil
}

// GetRecord selects a single row by id.
func (c *Client) GetRecord(ctx context.Context, table string, id RowID) (*Record, error) {
	results, err := c.Execute(ctx, Operation{
		Operation: OpSelect,
		Instruction: Instruction{
			Name:      instructionRecord,
			Table:     table,
			Condition: WhereID(id),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrRemoteRead, err)
	}
	rows, err := decodeRows[Record](results, instructionRecord)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrRemoteRead, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: record %s: %w", errs.ErrRemoteRead, id, errs.ErrNotFound)
	}
	return &rows[0], nil
}

// InsertRecord inserts a row and returns it with its assigned id.
func (c *Client) InsertRecord(ctx context.Context, table string, input RecordInput) (*Record, error) {
	results, err := c.Execute(ctx, Operation{
		Operation: OpInsert,
		Instruction: Instruction{
			Name:  instructionInsert,
			Table: table,
			Data:  input.fields(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrRemoteWrite, err)
	}
	rows, err := decodeRows[Record](results, instructionInsert)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrRemoteWrite, err)
	}
	if len(rows) == 0 || rows[0].ID == "" {
		return nil, fmt.Errorf("%w: insert returned no row", errs.ErrRemoteWrite)
	}
	return &rows[0], nil
}

// UpdateRecord sets title and description on the row with the given id.
func (c *Client) UpdateRecord(ctx context.Context, table string, id RowID, input RecordInput) (*Record, error) {
	results, err := c.Execute(ctx, Operation{
		Operation: OpUpdate,
		Instruction: Instruction{
			Name:      instructionRecord,
			Table:     table,
			Condition: WhereID(id),
			Set:       input.fields(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrRemoteWrite, err)
	}
	rows, err := decodeRows[Record](results, instructionRecord)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrRemoteWrite, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: record %s: %w", errs.ErrRemoteWrite, id, errs.ErrNotFound)
	}
	return &rows[0], nil
}

// DeleteRecord removes the row with the given id.
func (c *Client) DeleteRecord(ctx context.Context, table string, id RowID) error {
	_, err := c.Execute(ctx, Operation{
		Operation: OpDelete,
		Instruction: Instruction{
			Name:      instructionRemove,
			Table:     table,
			Condition: WhereID(id),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrRemoteWrite, err)
	}
	return nil
}
