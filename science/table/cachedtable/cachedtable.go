/*
Copyright © 2019 the flamelet authors.
This file is part of flamelet.

flamelet is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

flamelet is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with flamelet.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package cachedtable memoizes the results of a flamelet table.
package cachedtable

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/spatialmodel/flamelet"
	"github.com/spatialmodel/flamelet/internal/hash"
)

// stripes is the number of misses that can be passed to the
// underlying table at the same time.
const stripes = 32

// Table wraps a flamelet table, holding the most recently used results in
// memory. Queries for the same point are passed through the cache one at
// a time, so each distinct point misses at most once while it stays cached.
// Misses for different points may run in parallel.
type Table struct {
	flamelet.Table

	stripes [stripes]sync.Mutex
	cache   *requestcache.Cache
}

// result holds the outcome of a query. Faults are cached
// along with properties.
type result struct {
	p   *flamelet.Properties
	err error
}

// New returns a table that caches up to cacheSize results of t.
// t must be safe for concurrent use.
func New(t flamelet.Table, cacheSize int) *Table {
	c := &Table{Table: t}
	c.cache = requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
		p, err := t.Lookup(request.(flamelet.Point))
		return result{p: p, err: err}, nil
	}, stripes, requestcache.Memory(cacheSize))
	return c
}

func key(p flamelet.Point) string {
	return hash.Floats(p.Z, p.Zvar, p.ChiSt, p.Defect)
}

// stripe returns the lock that guards queries with the given key.
func (c *Table) stripe(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &c.stripes[h.Sum32()%stripes]
}

// Lookup fulfils the flamelet.Table interface. Points that are not
// physically valid are rejected without consulting the cache.
func (c *Table) Lookup(p flamelet.Point) (*flamelet.Properties, error) {
	if err := flamelet.CheckPoint(p); err != nil {
		return nil, err
	}
	k := key(p)
	req := c.cache.NewRequest(context.TODO(), p, k)
	mu := c.stripe(k)
	mu.Lock()
	r, err := req.Result()
	mu.Unlock()
	if err != nil {
		return nil, err
	}
	res := r.(result)
	return res.p, res.err
}

// Misses returns the number of queries that were passed
// to the underlying table.
func (c *Table) Misses() int {
	r := c.cache.Requests()
	return r[len(r)-1]
}

// Requests returns the total number of queries of c that
// passed the physical validity check.
func (c *Table) Requests() int {
	return c.cache.Requests()[0]
}

// String returns a description of the underlying table, if it has one.
func (c *Table) String() string {
	if s, ok := c.Table.(interface{ String() string }); ok {
		return "cached " + s.String()
	}
	return "cached flamelet table"
}
