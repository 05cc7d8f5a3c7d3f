// Package notice queues one-shot messages in the visitor's session until the
// next page render drains them.
package notice

import (
	"context"
	"fmt"

	"github.com/shoppingos/sospay/internal/domain/session"
)

type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
)

func (l Level) IsValid() bool {
	switch l {
	case LevelError, LevelWarning, LevelSuccess, LevelInfo:
		return true
	}
	return false
}

type Notice struct {
	Message string `json:"message"`
	Level   Level  `json:"level"`
}

const (
	shopperKey = "wc_notices"
	adminKey   = "sos_admin_notices"
)

type Queue struct {
	sess session.Session
	key  string
}

// Shopper is the storefront queue rendered on checkout and order-received pages.
func Shopper(sess session.Session) *Queue {
	return &Queue{sess: sess, key: shopperKey}
}

// Admin is the queue rendered at the top of the next merchant admin page.
func Admin(sess session.Session) *Queue {
	return &Queue{sess: sess, key: adminKey}
}

// Add appends a notice. Unknown levels are stored as warnings.
func (q *Queue) Add(ctx context.Context, message string, level Level) error {
	if !level.IsValid() {
		level = LevelWarning
	}

	var pending []Notice
	if _, err := q.sess.Get(ctx, q.key, &pending); err != nil {
		return fmt.Errorf("failed to read notices: %w", err)
	}

	pending = append(pending, Notice{Message: message, Level: level})
	if err := q.sess.Set(ctx, q.key, pending); err != nil {
		return fmt.Errorf("failed to store notice: %w", err)
	}
	return nil
}

// Drain returns queued notices in insertion order and empties the queue.
func (q *Queue) Drain(ctx context.Context) ([]Notice, error) {
	var pending []Notice
	found, err := q.sess.Get(ctx, q.key, &pending)
	if err != nil {
		return nil, fmt.Errorf("failed to read notices: %w", err)
	}
	if !found {
		return []Notice{}, nil
	}
	if err := q.sess.Delete(ctx, q.key); err != nil {
		return nil, fmt.Errorf("failed to clear notices: %w", err)
	}
	return pending, nil
}
