package keylock

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is the default number of shards.
const DefaultShardCount = 16

// Table hands out one mutex per distinct key.
type Table struct {
	shards    []*shard
	shardMask uint32
}

type shard struct {
	mu    sync.Mutex
	items map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int // guarded by shard.mu
}

// New creates a lock table with the default shard count.
func New() *Table {
	return NewWithShards(DefaultShardCount)
}

// NewWithShards creates a lock table with the specified shard count.
// shardCount must be a power of 2; other values fall back to the default.
func NewWithShards(shardCount int) *Table {
	if shardCount <= 0 || shardCount&(shardCount-1) != 0 {
		shardCount = DefaultShardCount
	}

	t := &Table{
		shards:    make([]*shard, shardCount),
		shardMask: uint32(shardCount - 1),
	}
	for i := range t.shards {
		t.shards[i] = &shard{items: make(map[string]*entry)}
	}
	return t
}

func (t *Table) getShard(key []byte) *shard {
	return t.shards[murmur3.Sum32(key)&t.shardMask]
}

// Lock blocks until the caller holds the lock for key, and returns the
// function that releases it. The returned func must be called exactly once.
func (t *Table) Lock(key []byte) (unlock func()) {
	s := t.getShard(key)
	k := string(key)

	s.mu.Lock()
	e, ok := s.items[k]
	if !ok {
		e = &entry{}
		s.items[k] = e
	}
	e.refs++
	s.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		s.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(s.items, k)
		}
		s.mu.Unlock()
	}
}

// Len returns the number of keys currently locked or waited on.
func (t *Table) Len() int {
	n := 0
	for _, s := range t.shards {
		s.mu.Lock()
		n += len(s.items)
		s.mu.Unlock()
	}
	return n
}
