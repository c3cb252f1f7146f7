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

// Unique is the exclusive owner of a resource. At most one Unique references a
// resource at any time. Ownership can be transferred using Move or Assign, but
// never duplicated.
//
// The zero value is an empty handle.
type Unique[T any] struct {
	ptr     *T
	deleter Deleter[T]
	noCopy  noCopy
}

// MakeUnique takes ownership of p. The resource is deleted using the
// DefaultDeleter. If p is nil, the handle is empty.
func MakeUnique[T any](p *T) Unique[T] {
	return MakeUniqueFunc(p, nil)
}

// MakeUniqueFunc takes ownership of p. The resource is deleted using del.
// Passing a pointer that is already owned by another handle is a usage error.
func MakeUniqueFunc[T any](p *T, del Deleter[T]) Unique[T] {
	return Unique[T]{ptr: p, deleter: orDefault(del)}
}

// Valid reports whether the handle manages a resource.
func (u *Unique[T]) Valid() bool {
	return u.ptr != nil
}

// Get returns the managed resource. Get panics if the handle is empty.
func (u *Unique[T]) Get() *T {
	invariant(u.ptr != nil, ErrEmptyHandle)
	return u.ptr
}

// Move transfers ownership into a new handle. u is empty afterwards.
func (u *Unique[T]) Move() Unique[T] {
	p, del := u.take()
	return Unique[T]{ptr: p, deleter: del}
}

// Assign deletes the current resource, if any, and takes ownership of src's
// resource. src is empty afterwards. Assigning a handle to itself is a no-op.
func (u *Unique[T]) Assign(src *Unique[T]) {
	if u == src {
		return
	}
	p, del := src.take()
	u.Close()
	u.ptr, u.deleter = p, del
}

// Reset deletes the current resource, if any, and takes ownership of p.
// Resetting to the currently owned pointer is a no-op.
func (u *Unique[T]) Reset(p *T) {
	if p != nil && p == u.ptr {
		return
	}
	u.Close()
	u.ptr, u.deleter = p, orDefault(u.deleter)
}

// Release gives up ownership without deleting the resource. The handle is
// empty afterwards and the caller becomes responsible for the returned
// pointer.
func (u *Unique[T]) Release() *T {
	p, _ := u.take()
	return p
}

// Share converts exclusive into shared ownership. The returned handle is the
// first owner and uses the same deleter. u is empty afterwards.
func (u *Unique[T]) Share() Shared[T] {
	p, del := u.take()
	return MakeSharedFunc(p, del)
}

// Close deletes the managed resource. Closing an empty handle is a no-op.
func (u *Unique[T]) Close() {
	p, del := u.ptr, u.deleter
	u.ptr = nil
	if p != nil {
		orDefault(del)(p)
	}
}

// take empties the handle, keeping the deleter configured for later Reset
// calls.
func (u *Unique[T]) take() (*T, Deleter[T]) {
	p := u.ptr
	u.ptr = nil
	return p, orDefault(u.deleter)
}
