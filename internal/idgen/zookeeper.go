package idgen

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-zookeeper/zk"
	"github.com/pkg/errors"
	"github.com/therealhieu/wee/internal/shortener"
	"go.uber.org/zap"
)

// Coordinator is the subset of *zk.Conn the allocator needs.
type Coordinator interface {
	Create(path string, data []byte, flags int32, acl []zk.ACL) (string, error)
	Exists(path string) (bool, *zk.Stat, error)
}

// ExhaustedFunc is called once when the shard runs out of ids.
type ExhaustedFunc func(shard ShardInfo, attempted uint64)

// ShardedAllocator turns ZooKeeper sequential nodes into shard-scoped global ids.
//
// ZooKeeper orders the sequence suffixes issued under a parent node across every client,
// so concurrent processes sharing a shard path never receive the same id.
type ShardedAllocator struct {
	coord       Coordinator
	shard       ShardInfo
	logger      *zap.Logger
	onExhausted ExhaustedFunc
	exhausted   atomic.Bool
	once        sync.Once
}

// AllocatorOption configures a ShardedAllocator.
type AllocatorOption func(*ShardedAllocator)

// OnExhausted registers the hook run when the shard range is used up.
func OnExhausted(fn ExhaustedFunc) AllocatorOption {
	return func(a *ShardedAllocator) {
		a.onExhausted = fn
	}
}

// NewShardedAllocator validates shard and makes sure its node hierarchy exists.
func NewShardedAllocator(
	coord Coordinator,
	shard ShardInfo,
	logger *zap.Logger,
	opts ...AllocatorOption,
) (*ShardedAllocator, error) {
	if err := shard.Validate(); err != nil {
		return nil, err
	}

	a := &ShardedAllocator{
		coord:  coord,
		shard:  shard,
		logger: logger,
	}

	for _, opt := range opts {
		opt(a)
	}

	if err := a.ensureShardPath(); err != nil {
		return nil, err
	}

	return a, nil
}

// ensureShardPath creates the shard hierarchy node by node. Other instances may be
// creating the same nodes, so ErrNodeExists counts as success.
func (a *ShardedAllocator) ensureShardPath() error {
	for _, node := range a.shard.Hierarchy() {
		exists, _, err := a.coord.Exists(node)
		if err != nil {
			return shortener.Transient("check shard node "+node, err)
		}

		if exists {
			continue
		}

		created, err := a.coord.Create(node, nil, 0, zk.WorldACL(zk.PermAll))

		switch {
		case err == nil:
			a.logger.Info("created shard node", zap.String("path", created))
		case errors.Is(err, zk.ErrNodeExists):
			a.logger.Info("shard node already exists", zap.String("path", node))
		default:
			return shortener.Transient("create shard node "+node, err)
		}
	}

	return nil
}

// NextID allocates the next id of the shard.
func (a *ShardedAllocator) NextID(ctx context.Context) (uint64, error) {
	if a.exhausted.Load() {
		return 0, a.exhaustedErr()
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	path, err := a.coord.Create(a.shard.Path(), nil, zk.FlagSequence, zk.WorldACL(zk.PermAll))
	if err != nil {
		return 0, shortener.Transient("create sequential node", err)
	}

	seq, err := parseSequence(path)
	if err != nil {
		return 0, shortener.Internal("parse sequential node", err)
	}

	id := a.shard.Start + seq
	if id > a.shard.End || id < a.shard.Start {
		a.exhaust(id)

		return 0, a.exhaustedErr()
	}

	a.logger.Debug("allocated id", zap.String("node", path), zap.Uint64("id", id))

	return id, nil
}

// Exhausted reports whether the allocator reached its terminal state.
func (a *ShardedAllocator) Exhausted() bool {
	return a.exhausted.Load()
}

// Shard returns the shard this allocator serves.
func (a *ShardedAllocator) Shard() ShardInfo {
	return a.shard
}

func (a *ShardedAllocator) exhaust(attempted uint64) {
	a.exhausted.Store(true)

	a.once.Do(func() {
		a.logger.Error("shard id range exhausted",
			zap.String("path", a.shard.Path()),
			zap.Uint64("end", a.shard.End),
			zap.Uint64("attempted", attempted),
		)

		if a.onExhausted != nil {
			a.onExhausted(a.shard, attempted)
		}
	})
}

func (a *ShardedAllocator) exhaustedErr() error {
	return errors.Wrapf(shortener.ErrRangeExhausted, "shard %s", a.shard.Path())
}

// parseSequence extracts the numeric suffix ZooKeeper appended to a sequential node.
func parseSequence(path string) (uint64, error) {
	idx := strings.LastIndex(path, "/")
	if idx == -1 || idx == len(path)-1 {
		return 0, errors.Errorf("no sequence suffix in %q", path)
	}

	seq, err := strconv.ParseUint(path[idx+1:], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "sequence suffix of %q", path)
	}

	return seq, nil
}

// Connect dials the ZooKeeper ensemble and routes its logs to logger.
func Connect(servers []string, sessionTimeout time.Duration, logger *zap.Logger) (*zk.Conn, error) {
	conn, _, err := zk.Connect(servers, sessionTimeout, zk.WithLogger(zapPrintf{logger.Sugar()}))
	if err != nil {
		return nil, shortener.Transient("connect zookeeper", err)
	}

	return conn, nil
}

type zapPrintf struct {
	sugar *zap.SugaredLogger
}

func (z zapPrintf) Printf(format string, args ...interface{}) {
	z.sugar.Debugf(format, args...)
}
