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

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// chainLink owns the next element of a list.
type chainLink struct {
	name string
	next Shared[chainLink]
}

func TestShared(t *testing.T) {
	t.Run("zero value is empty", func(t *testing.T) {
		var s Shared[resource]
		assert.False(t, s.Valid())
		assert.Equal(t, 0, s.UseCount())
		assert.Equal(t, Freed, s.State())
		s.Close()
	})

	t.Run("make with nil does not allocate a control block", func(t *testing.T) {
		s := MakeShared[resource](nil)
		assert.False(t, s.Valid())
		assert.Nil(t, s.cb)
	})

	t.Run("get on empty handle panics", func(t *testing.T) {
		var s Shared[resource]
		assert.PanicsWithValue(t, ErrEmptyHandle, func() { s.Get() })
	})

	t.Run("first owner has use count 1", func(t *testing.T) {
		var c deleteCounter
		s := MakeSharedFunc(&resource{id: 1}, c.fn())
		assert.Equal(t, 1, s.UseCount())
		assert.Equal(t, 0, int(s.cb.weak))
		assert.Equal(t, Alive, s.State())
		s.Close()
		assert.Equal(t, 1, c.count())
	})

	t.Run("clone shares ownership", func(t *testing.T) {
		var c deleteCounter
		r := &resource{id: 1}
		s1 := MakeSharedFunc(r, c.fn())
		s2 := s1.Clone()

		assert.Equal(t, 2, s1.UseCount())
		assert.Equal(t, 2, s2.UseCount())
		assert.True(t, s1.Owns(&s2))
		assert.True(t, s2.Get() == r)

		s1.Close()
		assert.Equal(t, 1, s2.UseCount())
		assert.Equal(t, 0, c.count())
		assert.True(t, s2.Get() == r)

		s2.Close()
		assert.Equal(t, 1, c.count())
	})

	t.Run("clone of empty handle is empty", func(t *testing.T) {
		var s Shared[resource]
		c := s.Clone()
		assert.False(t, c.Valid())
	})

	t.Run("move does not change use count", func(t *testing.T) {
		var c deleteCounter
		s1 := MakeSharedFunc(&resource{}, c.fn())
		s2 := s1.Move()

		assert.False(t, s1.Valid())
		assert.Equal(t, 1, s2.UseCount())

		s1.Close()
		assert.Equal(t, 0, c.count())
		s2.Close()
		assert.Equal(t, 1, c.count())
	})

	t.Run("assign releases current reference", func(t *testing.T) {
		var c deleteCounter
		old, next := &resource{id: 1}, &resource{id: 2}
		a := MakeSharedFunc(old, c.fn())
		b := MakeSharedFunc(next, c.fn())

		a.Assign(&b)
		require.Equal(t, 1, c.count())
		assert.True(t, c.deleted[0] == old)
		assert.Equal(t, 2, b.UseCount())
		assert.True(t, a.Get() == next)

		a.Close()
		b.Close()
		assert.Equal(t, 2, c.count())
	})

	t.Run("assign shared resource does not change count", func(t *testing.T) {
		var c deleteCounter
		a := MakeSharedFunc(&resource{}, c.fn())
		b := a.Clone()

		a.Assign(&b)
		a.Assign(&a)
		assert.Equal(t, 2, a.UseCount())

		a.Close()
		b.Close()
		assert.Equal(t, 1, c.count())
	})

	t.Run("assign from a field of the released resource", func(t *testing.T) {
		var deleted []string
		del := func(l *chainLink) {
			deleted = append(deleted, l.name)
			l.next.Close()
		}

		a := MakeSharedFunc(&chainLink{name: "a"}, del)
		b := MakeSharedFunc(&chainLink{name: "b"}, del)
		a.Get().next.AssignMove(&b)

		// advance to the next list element, releasing the current one
		a.Assign(&a.Get().next)
		require.True(t, a.Valid())
		assert.Equal(t, "b", a.Get().name)
		assert.Equal(t, 1, a.UseCount())
		assert.Equal(t, []string{"a"}, deleted)

		a.Close()
		assert.Equal(t, []string{"a", "b"}, deleted)
	})

	t.Run("owns is false for nil and empty handles", func(t *testing.T) {
		s := MakeShared(&resource{})
		defer s.Close()
		var empty Shared[resource]

		assert.False(t, s.Owns(nil))
		assert.False(t, s.Owns(&empty))
		assert.False(t, empty.Owns(&empty))
		assert.True(t, s.Owns(&s))
	})

	t.Run("assign move transfers reference", func(t *testing.T) {
		var c deleteCounter
		a := MakeSharedFunc(&resource{id: 1}, c.fn())
		b := MakeSharedFunc(&resource{id: 2}, c.fn())

		a.AssignMove(&b)
		assert.False(t, b.Valid())
		assert.Equal(t, 1, a.UseCount())
		assert.Equal(t, 2, a.Get().id)
		assert.Equal(t, 1, c.count())

		a.AssignMove(&a)
		assert.Equal(t, 1, a.UseCount())

		a.Close()
		assert.Equal(t, 2, c.count())
	})

	t.Run("closing too often panics", func(t *testing.T) {
		s := MakeShared(&resource{})
		cb := s.cb
		s.Close()
		assert.PanicsWithValue(t, ErrReleasedTooOften, func() { cb.release() })
	})

	t.Run("resource is deleted on the go-routine dropping the last owner", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		const owners = 64
		var c deleteCounter
		s := MakeSharedFunc(&resource{}, c.fn())

		clones := make([]Shared[resource], owners)
		for i := range clones {
			clones[i] = s.Clone()
		}
		require.Equal(t, owners+1, s.UseCount())

		var wg sync.WaitGroup
		wg.Add(owners)
		for i := range clones {
			go func(h *Shared[resource]) {
				defer wg.Done()
				h.Close()
			}(&clones[i])
		}
		wg.Wait()

		assert.Equal(t, 1, s.UseCount())
		assert.Equal(t, 0, c.count())
		s.Close()
		assert.Equal(t, 1, c.count())
	})
}
