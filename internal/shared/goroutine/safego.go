// Package goroutine launches background work that must never take the process down.
package goroutine

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/shoppingos/sospay/internal/shared/logger"
)

// Group tracks panic-safe goroutines so shutdown can wait for them.
type Group struct {
	log logger.Interface
	wg  sync.WaitGroup
}

func NewGroup(log logger.Interface) *Group {
	return &Group{log: log}
}

// Go runs fn on its own goroutine. A panic is logged with its stack and
// does not propagate.
func (g *Group) Go(name string, fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				g.log.Errorw("goroutine panicked",
					"goroutine", name,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)
			}
		}()
		fn()
	}()
}

// Wait blocks until every goroutine started through Go has returned.
func (g *Group) Wait() {
	g.wg.Wait()
}
