package goroutine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shoppingos/sospay/internal/shared/logger"
)

func TestGroup_RecoversPanic(t *testing.T) {
	g := NewGroup(logger.NewNop())

	var ran atomic.Bool
	g.Go("panicking", func() { panic("smtp exploded") })
	g.Go("normal", func() { ran.Store(true) })

	done := make(chan struct{})
	go func() {
		g.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutines did not finish")
	}
	assert.True(t, ran.Load())
}

func TestGroup_WaitWithoutWork(t *testing.T) {
	g := NewGroup(logger.NewNop())
	g.Wait()
}
