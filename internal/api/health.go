package api

import (
	"context"
	"fmt"
)

const instructionPing = "ping"

// Ping checks that the engine accepts the admin secret and that table exists
// by selecting at most one row from it.
func (c *Client) Ping(ctx context.Context, table string) error {
	_, err := c.Execute(ctx, Operation{
		Operation: OpSelect,
		Instruction: Instruction{
			Name:  instructionPing,
			Table: table,
			Limit: 1,
		},
	})
	if err != nil {
		return fmt.Errorf("ping %s: %w", table, err)
	}
	return nil
}
