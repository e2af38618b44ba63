// Package cache keeps parsed template trees keyed by a hash of their source.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"golang.org/x/sync/singleflight"

	"DR-CONTRACTS/internal/engine"
)

// ParseFunc turns template source into a tree.
type ParseFunc func(src string) (*engine.Tree, error)

const DefaultCapacity = 256

// TreeCache is a bounded LRU of parsed trees. Concurrent lookups for the same
// source share one parse; failed parses are never cached.
type TreeCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
	parse    ParseFunc
	group    singleflight.Group
}

type entry struct {
	key  string
	tree *engine.Tree
}

// New builds a cache holding at most capacity trees. A nil parse uses
// engine.Parse with the default limits.
func New(capacity int, parse ParseFunc) *TreeCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if parse == nil {
		parse = engine.Parse
	}
	return &TreeCache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
		parse:    parse,
	}
}

// Key is the content hash a source is cached under.
func Key(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

// Get returns the parsed tree for src, parsing it at most once while cached.
func (c *TreeCache) Get(src string) (*engine.Tree, error) {
	key := Key(src)
	if tree, ok := c.lookup(key); ok {
		return tree, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if tree, ok := c.lookup(key); ok {
			return tree, nil
		}
		tree, err := c.parse(src)
		if err != nil {
			return nil, err
		}
		c.add(key, tree)
		return tree, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*engine.Tree), nil
}

func (c *TreeCache) lookup(key string) (*engine.Tree, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*entry).tree, true
}

func (c *TreeCache) add(key string, tree *engine.Tree) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		el.Value.(*entry).tree = tree
		return
	}
	c.items[key] = c.ll.PushFront(&entry{key: key, tree: tree})
	for c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
	}
}

func (c *TreeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Purge drops every cached tree.
func (c *TreeCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element)
}
