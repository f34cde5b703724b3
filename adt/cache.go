package adt

import (
	"hash/fnv"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/immutable"
)

// cache is the process-wide parametrization cache.
// Entries are never invalidated.
var cache = newParametrizationCache()

type cacheKey struct {
	def   *Definition
	types []Type
}

type cacheKeyHasher struct{}

var _ immutable.Hasher[cacheKey] = cacheKeyHasher{}

func (cacheKeyHasher) Hash(key cacheKey) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key.def.name))
	for _, t := range key.types {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(t.String()))
	}
	return h.Sum32()
}

func (cacheKeyHasher) Equal(a, b cacheKey) bool {
	return a.def == b.def && slices.Equal(a.types, b.types)
}

// parametrizationCache publishes immutable snapshots, so lookups do not lock.
// Population is serialized by mu: a new snapshot, including every
// instantiation reached through recursive references, is only published once
// all of them are fully resolved.
type parametrizationCache struct {
	mu        sync.Mutex
	instances atomic.Pointer[immutable.Map[cacheKey, *Instantiation]]
}

func newParametrizationCache() *parametrizationCache {
	c := &parametrizationCache{}
	c.instances.Store(immutable.NewMap[cacheKey, *Instantiation](cacheKeyHasher{}))
	return c
}

func (c *parametrizationCache) lookup(def *Definition, types []Type) (*Instantiation, bool) {
	return c.instances.Load().Get(cacheKey{def: def, types: types})
}

func (c *parametrizationCache) instantiate(def *Definition, types []Type) *Instantiation {
	if inst, ok := c.lookup(def, types); ok {
		return inst
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := &population{instances: c.instances.Load()}
	inst := p.instantiate(def, types)
	c.instances.Store(p.instances)
	return inst
}

// size is the number of instantiations built so far
func (c *parametrizationCache) size() int {
	return c.instances.Load().Len()
}

// population is a single cache-filling pass. Instantiations in flight are
// visible to the pass itself, which lets recursive references between
// different type tuples terminate.
type population struct {
	instances *immutable.Map[cacheKey, *Instantiation]
}

func (p *population) instantiate(def *Definition, types []Type) *Instantiation {
	key := cacheKey{def: def, types: slices.Clone(types)}
	if inst, ok := p.instances.Get(key); ok {
		return inst
	}
	inst := newInstantiation(def, key.types)
	p.instances = p.instances.Set(key, inst)
	inst.resolveConstructors(p)
	logger.Debug("instantiated ADT", "adt", inst.String())
	return inst
}
