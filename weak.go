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

// Weak observes a shared resource without owning it. A Weak handle never
// keeps the resource alive. Use Lock to temporarily gain ownership.
//
// The zero value is an empty, expired handle.
type Weak[T any] struct {
	cb     *controlBlock[T]
	noCopy noCopy
}

// MakeWeak creates a Weak handle observing the resource owned by s. If s is
// nil or empty, the Weak handle is empty as well.
func MakeWeak[T any](s *Shared[T]) Weak[T] {
	if s == nil || s.cb == nil {
		return Weak[T]{}
	}
	s.cb.retainWeak()
	return Weak[T]{cb: s.cb}
}

// Clone creates another Weak handle observing the same resource.
func (w *Weak[T]) Clone() Weak[T] {
	if w.cb == nil {
		return Weak[T]{}
	}
	w.cb.retainWeak()
	return Weak[T]{cb: w.cb}
}

// Move transfers the reference into a new handle. w is empty afterwards.
func (w *Weak[T]) Move() Weak[T] {
	cb := w.cb
	w.cb = nil
	return Weak[T]{cb: cb}
}

// Assign drops the current reference and observes src's resource.
func (w *Weak[T]) Assign(src *Weak[T]) {
	if w == src || w.cb == src.cb {
		return
	}
	cb := src.cb
	if cb != nil {
		cb.retainWeak()
	}
	w.Close()
	w.cb = cb
}

// Observe drops the current reference and observes the resource owned by s.
// If s is nil or empty, w becomes empty.
func (w *Weak[T]) Observe(s *Shared[T]) {
	var cb *controlBlock[T]
	if s != nil {
		cb = s.cb
	}
	if w.cb == cb {
		return
	}
	if cb != nil {
		cb.retainWeak()
	}
	w.Close()
	w.cb = cb
}

// Lock tries to gain shared ownership of the observed resource. If the
// resource has already been deleted, Lock returns an empty handle and false.
func (w *Weak[T]) Lock() (Shared[T], bool) {
	if w.cb == nil || !w.cb.tryRetain() {
		return Shared[T]{}, false
	}
	return Shared[T]{ptr: w.cb.value, cb: w.cb}, true
}

// Upgrade is like Lock, but returns ErrExpired if the resource has already
// been deleted.
func (w *Weak[T]) Upgrade() (s Shared[T], err error) {
	var ok bool
	if s, ok = w.Lock(); !ok {
		err = ErrExpired
	}
	return
}

// Expired reports whether the observed resource has been deleted.
func (w *Weak[T]) Expired() bool {
	return w.cb == nil || w.cb.useCount() == 0
}

// UseCount returns the number of Shared handles owning the observed
// resource.
func (w *Weak[T]) UseCount() int {
	if w.cb == nil {
		return 0
	}
	return w.cb.useCount()
}

// Close drops the reference. Closing an empty handle is a no-op.
func (w *Weak[T]) Close() {
	cb := w.cb
	w.cb = nil
	if cb != nil {
		cb.releaseWeak()
	}
}
