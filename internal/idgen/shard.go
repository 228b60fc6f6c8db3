package idgen

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ShardInfo describes the contiguous id range [Start, End] owned by one allocator.
// Ranges of different shards must not overlap; that is a deployment concern.
type ShardInfo struct {
	BasePath string
	ID       uint64
	Start    uint64
	End      uint64
}

// Validate rejects shards that cannot allocate anything.
func (s ShardInfo) Validate() error {
	if strings.Trim(s.BasePath, "/") == "" {
		return errors.New("shard base path is empty")
	}

	if s.Start > s.End {
		return errors.Errorf("shard start %d is after end %d", s.Start, s.End)
	}

	return nil
}

// Path is the parent node under which sequential id nodes are created.
func (s ShardInfo) Path() string {
	return fmt.Sprintf("/%s/shard-%d-%d-%d/", strings.Trim(s.BasePath, "/"), s.ID, s.Start, s.End)
}

// Hierarchy lists every node from the root down to the shard node, e.g.
// ["/wee", "/wee/shard-0-0-1000"].
func (s ShardInfo) Hierarchy() []string {
	segments := strings.Split(strings.Trim(s.Path(), "/"), "/")
	nodes := make([]string, 0, len(segments))
	path := ""

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		path += "/" + segment
		nodes = append(nodes, path)
	}

	return nodes
}

// Size is the number of ids in the shard.
func (s ShardInfo) Size() uint64 {
	return s.End - s.Start + 1
}
