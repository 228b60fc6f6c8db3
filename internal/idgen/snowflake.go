package idgen

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
)

// SnowflakeAllocator issues time-ordered ids without a coordination service.
// Only for single-node deployments: node ids are not coordinated.
type SnowflakeAllocator struct {
	node *snowflake.Node
}

// NewSnowflakeAllocator creates an allocator for the given node id (0-1023).
func NewSnowflakeAllocator(nodeID int64) (*SnowflakeAllocator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, errors.Wrap(err, "create snowflake node")
	}

	return &SnowflakeAllocator{node: node}, nil
}

func (a *SnowflakeAllocator) NextID(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	return uint64(a.node.Generate().Int64()), nil
}
