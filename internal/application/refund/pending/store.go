// Package pending tracks the refund a merchant is currently pushing through
// the bank. A single record per session moves through
//
//	idle -> awaiting_bank_redirect -> awaiting_webhook -> completed | failed
//
// so the "about to redirect" and "waiting for the webhook" phases can never
// both be live.
package pending

import (
	"context"
	"fmt"
	"time"

	"github.com/shoppingos/sospay/internal/domain/session"
	"github.com/shoppingos/sospay/internal/shared/biztime"
)

const sessionKey = "sos_refund_attempt"

type State string

const (
	StateIdle                 State = "idle"
	StateAwaitingBankRedirect State = "awaiting_bank_redirect"
	StateAwaitingWebhook      State = "awaiting_webhook"
	StateCompleted            State = "completed"
	StateFailed               State = "failed"
)

// IsLive reports whether the attempt still expects a transition.
func (s State) IsLive() bool {
	return s == StateAwaitingBankRedirect || s == StateAwaitingWebhook
}

// Record correlates a refund draft with its order.
type Record struct {
	RefundID uint `json:"refund_id"`
	OrderID  uint `json:"order_id"`
}

// Attempt is the stored form of the record together with its phase.
type Attempt struct {
	Record
	State     State     `json:"state"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Store struct {
	sess session.Session
}

func New(sess session.Session) *Store {
	return &Store{sess: sess}
}

// Current returns the stored attempt, or an idle one when nothing was stored.
func (s *Store) Current(ctx context.Context) (Attempt, error) {
	var a Attempt
	found, err := s.sess.Get(ctx, sessionKey, &a)
	if err != nil {
		return Attempt{}, fmt.Errorf("failed to read refund attempt: %w", err)
	}
	if !found || a.State == "" {
		return Attempt{State: StateIdle}, nil
	}
	return a, nil
}

// SetRedirectingToBank starts a new attempt, replacing whatever was stored.
func (s *Store) SetRedirectingToBank(ctx context.Context, refundID, orderID uint) error {
	return s.write(ctx, Record{RefundID: refundID, OrderID: orderID}, StateAwaitingBankRedirect)
}

// RedirectingToBank returns the record while the merchant has not yet been sent to the bank.
func (s *Store) RedirectingToBank(ctx context.Context) (Record, bool, error) {
	return s.recordIn(ctx, StateAwaitingBankRedirect)
}

// ClearRedirectingToBank abandons an attempt that never reached the bank.
// It leaves an attempt in any other phase untouched.
func (s *Store) ClearRedirectingToBank(ctx context.Context) error {
	return s.finish(ctx, StateAwaitingBankRedirect, StateFailed)
}

// SetReturningToWc marks the attempt as waiting for the bank's refund webhook.
// It replaces the redirect phase in a single write.
func (s *Store) SetReturningToWc(ctx context.Context, refundID, orderID uint) error {
	return s.write(ctx, Record{RefundID: refundID, OrderID: orderID}, StateAwaitingWebhook)
}

// ReturningToWc returns the record while the refund webhook is outstanding.
func (s *Store) ReturningToWc(ctx context.Context) (Record, bool, error) {
	return s.recordIn(ctx, StateAwaitingWebhook)
}

// ClearReturningToWc resolves an outstanding webhook phase with outcome,
// which must be StateCompleted or StateFailed. Other phases are untouched.
func (s *Store) ClearReturningToWc(ctx context.Context, outcome State) error {
	if outcome != StateCompleted {
		outcome = StateFailed
	}
	return s.finish(ctx, StateAwaitingWebhook, outcome)
}

func (s *Store) recordIn(ctx context.Context, want State) (Record, bool, error) {
	a, err := s.Current(ctx)
	if err != nil {
		return Record{}, false, err
	}
	if a.State != want {
		return Record{}, false, nil
	}
	return a.Record, true, nil
}

func (s *Store) finish(ctx context.Context, from, to State) error {
	a, err := s.Current(ctx)
	if err != nil {
		return err
	}
	if a.State != from {
		return nil
	}
	return s.write(ctx, a.Record, to)
}

func (s *Store) write(ctx context.Context, rec Record, state State) error {
	a := Attempt{Record: rec, State: state, UpdatedAt: biztime.NowUTC()}
	if err := s.sess.Set(ctx, sessionKey, a); err != nil {
		return fmt.Errorf("failed to store refund attempt: %w", err)
	}
	return nil
}
