package thumbnail

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"photocat/internal/catalog"
)

func TestPool_RunsEveryTask(t *testing.T) {
	p := NewPool(3, 2, catalog.NewNopLogger())

	var done atomic.Int32
	for i := 0; i < 20; i++ {
		p.Submit(Task{Name: "t", Run: func() error {
			done.Add(1)
			return nil
		}})
	}
	p.Close()

	assert.Equal(t, int32(20), done.Load())
}

func TestPool_IsolatesFailures(t *testing.T) {
	p := NewPool(1, 4, catalog.NewNopLogger())

	var done atomic.Int32
	p.Submit(Task{Name: "panics", Run: func() error { panic("boom") }})
	p.Submit(Task{Name: "fails", Run: func() error { return errors.New("bad file") }})
	p.Submit(Task{Name: "works", Run: func() error {
		done.Add(1)
		return nil
	}})
	p.Close()

	assert.Equal(t, int32(1), done.Load())
}

func TestPool_DropsAfterClose(t *testing.T) {
	p := NewPool(1, 1, catalog.NewNopLogger())
	p.Close()
	p.Close()

	ran := false
	p.Submit(Task{Name: "late", Run: func() error {
		ran = true
		return nil
	}})
	assert.False(t, ran)
}
