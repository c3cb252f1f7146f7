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

package ownership

// Shared is one of possibly many owners of a resource. All Shared handles of a
// resource reference the same control block. The resource is deleted when the
// last Shared handle is closed.
//
// The zero value is an empty handle.
type Shared[T any] struct {
	ptr    *T
	cb     *controlBlock[T]
	noCopy noCopy
}

// MakeShared wraps p into the first owning handle. The resource is deleted
// using the DefaultDeleter. If p is nil, the handle is empty.
//
// A pointer must be wrapped only once. Wrapping the same pointer twice creates
// two unrelated control blocks and the resource would be deleted twice. Use
// Clone to create additional owners.
func MakeShared[T any](p *T) Shared[T] {
	return MakeSharedFunc(p, nil)
}

// MakeSharedFunc wraps p into the first owning handle. The resource is deleted
// using del.
func MakeSharedFunc[T any](p *T, del Deleter[T]) Shared[T] {
	if p == nil {
		return Shared[T]{}
	}
	return Shared[T]{ptr: p, cb: newControlBlock(p, del)}
}

// Valid reports whether the handle owns a resource.
func (s *Shared[T]) Valid() bool {
	return s.cb != nil
}

// Get returns the managed resource. Get panics if the handle is empty.
func (s *Shared[T]) Get() *T {
	invariant(s.cb != nil, ErrEmptyHandle)
	return s.ptr
}

// UseCount returns the number of Shared handles owning the resource. The
// value is informational only, as other go-routines might change the count
// concurrently. UseCount of an empty handle is 0.
func (s *Shared[T]) UseCount() int {
	if s.cb == nil {
		return 0
	}
	return s.cb.useCount()
}

// Owns reports whether s and other share ownership of the same resource.
// Owns reports false if other is nil.
func (s *Shared[T]) Owns(other *Shared[T]) bool {
	return other != nil && s.cb != nil && s.cb == other.cb
}

// Clone creates a new owner of the resource.
func (s *Shared[T]) Clone() Shared[T] {
	if s.cb == nil {
		return Shared[T]{}
	}
	s.cb.retain()
	return Shared[T]{ptr: s.ptr, cb: s.cb}
}

// Move transfers ownership into a new handle without changing the use count.
// s is empty afterwards.
func (s *Shared[T]) Move() Shared[T] {
	p, cb := s.ptr, s.cb
	s.ptr, s.cb = nil, nil
	return Shared[T]{ptr: p, cb: cb}
}

// Assign drops the current reference and shares ownership with src.
// Assigning a handle that already shares the resource is a no-op.
//
// src may be owned by the resource s releases, e.g. a field of the payload.
func (s *Shared[T]) Assign(src *Shared[T]) {
	if s == src || s.cb == src.cb {
		return
	}

	// Closing s can run a deleter that clears src.
	p, cb := src.ptr, src.cb
	if cb != nil {
		cb.retain()
	}
	s.Close()
	s.ptr, s.cb = p, cb
}

// AssignMove drops the current reference and takes over src's reference.
// src is empty afterwards. Assigning a handle to itself is a no-op.
func (s *Shared[T]) AssignMove(src *Shared[T]) {
	if s == src {
		return
	}
	p, cb := src.ptr, src.cb
	src.ptr, src.cb = nil, nil
	s.Close()
	s.ptr, s.cb = p, cb
}

// Downgrade creates a Weak handle observing the resource. The use count is
// not changed.
func (s *Shared[T]) Downgrade() Weak[T] {
	return MakeWeak(s)
}

// Close drops the reference. If s was the last owner, the resource is deleted
// on the calling go-routine. Closing an empty handle is a no-op.
func (s *Shared[T]) Close() {
	cb := s.cb
	s.ptr, s.cb = nil, nil
	if cb != nil {
		cb.release()
	}
}

// State reports the lifecycle state of the resource. Empty handles report
// Freed.
func (s *Shared[T]) State() State {
	if s.cb == nil {
		return Freed
	}
	return s.cb.state()
}
