// Licensed to Elasticsearch B.V. under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. Elasticsearch B.V. licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Package registry provides a table of shared objects indexed by key.
package registry

import (
	"sync"

	"github.com/elastic/go-ownership"
)

// Registry hands out shared ownership of objects by key. The registry only
// observes its objects through weak references, it never keeps them alive. An
// object is removed from the table once its last owner is closed. The next
// Acquire for the key creates a new object.
//
// Objects must be released by closing their handles. The table and the
// object's deleter keep its control block reachable, so an object whose
// handles are dropped without Close stays registered and is never reclaimed
// by the garbage collector.
//
// A Registry must be created using New.
type Registry[K comparable, T any] struct {
	// Deleter is run on an object after it has been removed from the table.
	// If nil, ownership.DefaultDeleter is used.
	Deleter ownership.Deleter[T]

	mu    sync.Mutex
	table map[K]*entry[T]
}

type entry[T any] struct {
	ref ownership.Weak[T]
}

// New creates an empty registry.
func New[K comparable, T any]() *Registry[K, T] {
	return &Registry[K, T]{table: map[K]*entry[T]{}}
}

// Acquire returns a new owner of the object registered for key. If no live
// object exists, create is called to construct one. The returned handle is
// empty if create returns nil.
//
// create is run while the registry is locked and must not use the registry.
func (r *Registry[K, T]) Acquire(key K, create func() *T) (s ownership.Shared[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ok bool
	if s, ok = r.find(key); ok {
		return
	}

	p := create()
	if p == nil {
		return
	}

	e := &entry[T]{}
	s = ownership.MakeSharedFunc(p, func(p *T) {
		r.unlink(key, e)
		r.deleter()(p)
	})
	e.ref = s.Downgrade()
	r.table[key] = e
	return
}

// Lookup returns a new owner of the object registered for key, if the object
// is still alive.
func (r *Registry[K, T]) Lookup(key K) (ownership.Shared[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(key)
}

// Len reports the number of live objects in the registry.
func (r *Registry[K, T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.table {
		if !e.ref.Expired() {
			n++
		}
	}
	return n
}

// Purge removes entries of objects that have been released, but not yet
// unlinked from the table.
func (r *Registry[K, T]) Purge() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, e := range r.table {
		if e.ref.Expired() {
			r.drop(key, e)
		}
	}
}

// find must be called with r.mu held.
func (r *Registry[K, T]) find(key K) (s ownership.Shared[T], ok bool) {
	e := r.table[key]
	if e == nil {
		return
	}
	if s, ok = e.ref.Lock(); !ok {
		// The object is being deleted, but the deleter did not unlink the
		// entry yet.
		r.drop(key, e)
	}
	return
}

// unlink removes e from the table, unless it has already been replaced.
func (r *Registry[K, T]) unlink(key K, e *entry[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.table[key] == e {
		r.drop(key, e)
	}
}

// drop must be called with r.mu held. Whoever removes an entry from the table
// closes its weak reference.
func (r *Registry[K, T]) drop(key K, e *entry[T]) {
	delete(r.table, key)
	e.ref.Close()
}

func (r *Registry[K, T]) deleter() ownership.Deleter[T] {
	if r.Deleter == nil {
		return ownership.DefaultDeleter[T]()
	}
	return r.Deleter
}
