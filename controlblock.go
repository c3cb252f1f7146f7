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
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"
)

// State reports the lifecycle state of a shared resource. Transitions are
// monotonic: Alive -> Released -> Freed.
type State uint8

const (
	// Alive: at least one Shared handle owns the resource.
	Alive State = iota

	// Released: the resource has been deleted, but Weak handles still
	// reference the control block.
	Released

	// Freed: no handle references the control block anymore.
	Freed
)

func (s State) String() string {
	switch s {
	case Alive:
		return "alive"
	case Released:
		return "released"
	case Freed:
		return "freed"
	default:
		return "unknown"
	}
}

// controlBlock is the bookkeeping record shared by all Shared and Weak handles
// of a resource.
//
// strong counts the live Shared handles. The resource is deleted once, when
// strong drops to 0. weak counts the live Weak handles. The block is freed
// once both counters are 0.
type controlBlock[T any] struct {
	strong int32
	weak   int32
	freed  uint32

	// value is only written by the go-routine that drops strong to 0. Readers
	// must hold a strong reference.
	value   *T
	deleter Deleter[T]

	noCopy noCopy
}

// leakFinalizer runs if a control block is garbage collected while it still
// owns its resource. This happens if all Shared handles have been dropped
// without calling Close.
//
// A block that is reachable from its own resource or deleter is never
// collected, so leakFinalizer does not run for it. This includes reference
// cycles through the payload and objects handed out by registry.Registry,
// whose table references the block.
var leakFinalizer = finalizeLeaked

func newControlBlock[T any](p *T, del Deleter[T]) *controlBlock[T] {
	cb := &controlBlock[T]{
		strong:  1,
		value:   p,
		deleter: orDefault(del),
	}

	// In case a Close is missed (programmer error or panic that has been
	// caught) we set a finalizer to eventually free the resource. Dropping the
	// last strong reference unsets the finalizer.
	runtime.SetFinalizer(cb, func(cb *controlBlock[T]) { leakFinalizer(cb) })
	return cb
}

// leaked is the non-generic view of a control block used by leakFinalizer.
type leaked interface {
	counts() (strong, weak int32)
	resourceType() string
	reclaim()
}

func finalizeLeaked(cb leaked) {
	strong, weak := cb.counts()
	if strong <= 0 {
		return
	}

	Logger().Warn("shared resource garbage collected without being closed",
		zap.String("type", cb.resourceType()),
		zap.Int32("strong", strong),
		zap.Int32("weak", weak))
	cb.reclaim()
}

func (cb *controlBlock[T]) counts() (strong, weak int32) {
	return atomic.LoadInt32(&cb.strong), atomic.LoadInt32(&cb.weak)
}

func (cb *controlBlock[T]) resourceType() string {
	return typeName[T]()
}

// reclaim deletes the resource of an unreachable control block. No handle can
// observe the block anymore, so the counters are reset without CAS.
func (cb *controlBlock[T]) reclaim() {
	atomic.StoreInt32(&cb.strong, 0)
	cb.destroy()
	atomic.StoreUint32(&cb.freed, 1)
}

// retain increases the strong count. The caller must already hold a strong
// reference.
func (cb *controlBlock[T]) retain() {
	x := atomic.AddInt32(&cb.strong, 1)
	invariant(x > 1, ErrResurrect)
}

// tryRetain increases the strong count, iff the resource has not been deleted
// yet. Check and increment are one atomic step, so a released resource is
// never resurrected.
func (cb *controlBlock[T]) tryRetain() bool {
	for {
		x := atomic.LoadInt32(&cb.strong)
		if x <= 0 {
			return false
		}
		if atomic.CompareAndSwapInt32(&cb.strong, x, x+1) {
			return true
		}
	}
}

// release decreases the strong count. The resource is deleted if the count
// reaches 0. It returns true if the resource has been deleted.
func (cb *controlBlock[T]) release() bool {
	x := atomic.AddInt32(&cb.strong, -1)
	switch {
	case x == 0:
		runtime.SetFinalizer(cb, nil)
		cb.destroy()
		if atomic.LoadInt32(&cb.weak) == 0 {
			cb.free()
		}
		return true
	case x < 0:
		panic(ErrReleasedTooOften)
	default:
		return false
	}
}

func (cb *controlBlock[T]) destroy() {
	p, del := cb.value, cb.deleter
	cb.value, cb.deleter = nil, nil
	if p != nil && del != nil {
		del(p)
	}
}

// retainWeak increases the weak count. The caller must hold a strong or weak
// reference.
func (cb *controlBlock[T]) retainWeak() {
	atomic.AddInt32(&cb.weak, 1)
}

// releaseWeak decreases the weak count and frees the block if no other
// reference exists.
func (cb *controlBlock[T]) releaseWeak() {
	x := atomic.AddInt32(&cb.weak, -1)
	switch {
	case x == 0:
		if atomic.LoadInt32(&cb.strong) == 0 {
			cb.free()
		}
	case x < 0:
		panic(ErrReleasedTooOften)
	}
}

// free marks the block as freed. The last strong and the last weak reference
// can be dropped concurrently, both observing the counters at 0. Only one of
// them wins the transition.
func (cb *controlBlock[T]) free() bool {
	return atomic.CompareAndSwapUint32(&cb.freed, 0, 1)
}

func (cb *controlBlock[T]) useCount() int {
	return int(atomic.LoadInt32(&cb.strong))
}

func (cb *controlBlock[T]) state() State {
	switch {
	case atomic.LoadUint32(&cb.freed) == 1:
		return Freed
	case atomic.LoadInt32(&cb.strong) > 0:
		return Alive
	default:
		return Released
	}
}
