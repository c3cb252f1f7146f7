package ownership

import (
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type resource struct {
	id int
}

// deleteCounter counts deleter invocations.
type deleteCounter struct {
	n       int32
	deleted []*resource
}

func (c *deleteCounter) fn() Deleter[resource] {
	return func(r *resource) {
		atomic.AddInt32(&c.n, 1)
		c.deleted = append(c.deleted, r)
	}
}

func (c *deleteCounter) count() int {
	return int(atomic.LoadInt32(&c.n))
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.WarnLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })
	return logs
}
