// Package testutil provides in-memory collaborators for testing the payment and refund use cases.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/shoppingos/sospay/internal/application/payment/paymentgateway"
	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/domain/shared"
	"github.com/shoppingos/sospay/internal/domain/shared/events"
	"github.com/shoppingos/sospay/internal/shared/biztime"
)

// MockOrderRepository is an in-memory order.Repository.
type MockOrderRepository struct {
	mu     sync.RWMutex
	orders map[uint]*order.Order
	nextID uint

	// Error injection for testing
	GetErr    error
	UpdateErr error
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{orders: make(map[uint]*order.Order)}
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o.ID() == 0 {
		m.nextID++
		o.SetID(m.nextID)
	} else if o.ID() > m.nextID {
		m.nextID = o.ID()
	}
	m.orders[o.ID()] = o
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uint) (*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if _, ok := m.orders[o.ID()]; !ok {
		return order.ErrOrderNotFound
	}
	m.orders[o.ID()] = o
	return nil
}

func (m *MockOrderRepository) List(ctx context.Context, filter order.ListFilter) ([]*order.Order, int64, error) {
	all := m.sorted(func(o *order.Order) bool {
		if filter.PaymentMethod != "" && o.PaymentMethod() != filter.PaymentMethod {
			return false
		}
		return filter.Status == "" || o.Status() == filter.Status
	})

	total := int64(len(all))
	if filter.Offset >= len(all) {
		return []*order.Order{}, total, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(all) {
		all = all[:filter.Limit]
	}
	return all, total, nil
}

func (m *MockOrderRepository) ListByPaymentMethod(ctx context.Context, method string) ([]*order.Order, error) {
	return m.sorted(func(o *order.Order) bool {
		return o.PaymentMethod() == method
	}), nil
}

// sorted returns matching orders newest first.
func (m *MockOrderRepository) sorted(keep func(*order.Order) bool) []*order.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*order.Order, 0, len(m.orders))
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() > out[j].ID() })
	return out
}

// MockRefundRepository is an in-memory order.RefundRepository.
type MockRefundRepository struct {
	mu      sync.RWMutex
	refunds map[uint]*order.Refund
	nextID  uint
	deleted []uint

	// FailUpdate, when set, is returned by Update.
	FailUpdate error
}

func NewMockRefundRepository() *MockRefundRepository {
	return &MockRefundRepository{refunds: make(map[uint]*order.Refund)}
}

func (m *MockRefundRepository) Create(ctx context.Context, r *order.Refund) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.ID() == 0 {
		m.nextID++
		r.SetID(m.nextID)
	} else if r.ID() > m.nextID {
		m.nextID = r.ID()
	}
	m.refunds[r.ID()] = r
	return nil
}

func (m *MockRefundRepository) GetByID(ctx context.Context, id uint) (*order.Refund, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.refunds[id]
	if !ok {
		return nil, order.ErrRefundNotFound
	}
	return r, nil
}

func (m *MockRefundRepository) Update(ctx context.Context, r *order.Refund) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUpdate != nil {
		return m.FailUpdate
	}
	if _, ok := m.refunds[r.ID()]; !ok {
		return order.ErrRefundNotFound
	}
	m.refunds[r.ID()] = r
	return nil
}

func (m *MockRefundRepository) Delete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.refunds[id]; ok {
		delete(m.refunds, id)
		m.deleted = append(m.deleted, id)
	}
	return nil
}

func (m *MockRefundRepository) ListByOrderID(ctx context.Context, orderID uint) ([]*order.Refund, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*order.Refund
	for _, r := range m.refunds {
		if r.OrderID() == orderID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// Exists reports whether the refund is still stored.
func (m *MockRefundRepository) Exists(id uint) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.refunds[id]
	return ok
}

// Deleted lists the ids removed through Delete, in order.
func (m *MockRefundRepository) Deleted() []uint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]uint(nil), m.deleted...)
}

// MockNoteRepository is an in-memory order.NoteRepository.
type MockNoteRepository struct {
	mu     sync.RWMutex
	notes  []*order.Note
	nextID uint
}

func NewMockNoteRepository() *MockNoteRepository {
	return &MockNoteRepository{}
}

func (m *MockNoteRepository) Add(ctx context.Context, orderID uint, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	m.notes = append(m.notes, &order.Note{ID: m.nextID, OrderID: orderID, Content: content})
	return nil
}

func (m *MockNoteRepository) ListByOrderID(ctx context.Context, orderID uint) ([]*order.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*order.Note
	for _, n := range m.notes {
		if n.OrderID == orderID {
			out = append(out, n)
		}
	}
	return out, nil
}

// Contents returns the note bodies of an order in insertion order.
func (m *MockNoteRepository) Contents(orderID uint) []string {
	notes, _ := m.ListByOrderID(context.Background(), orderID)
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Content)
	}
	return out
}

type metaKey struct {
	orderID uint
	key     string
}

// MockMetadataStore is an in-memory order.MetadataStore that counts Add
// calls which found the key already present.
type MockMetadataStore struct {
	mu          sync.RWMutex
	values      map[metaKey]string
	updated     map[metaKey]time.Time
	rejectedAdd int
}

func NewMockMetadataStore() *MockMetadataStore {
	return &MockMetadataStore{
		values:  make(map[metaKey]string),
		updated: make(map[metaKey]time.Time),
	}
}

func (m *MockMetadataStore) Get(ctx context.Context, orderID uint, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[metaKey{orderID, key}]
	return v, ok, nil
}

func (m *MockMetadataStore) Add(ctx context.Context, orderID uint, key, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := metaKey{orderID, key}
	if _, ok := m.values[k]; ok {
		m.rejectedAdd++
		return false, nil
	}
	m.values[k] = value
	m.updated[k] = biztime.NowUTC()
	return true, nil
}

func (m *MockMetadataStore) Update(ctx context.Context, orderID uint, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[metaKey{orderID, key}] = value
	m.updated[metaKey{orderID, key}] = biztime.NowUTC()
	return nil
}

func (m *MockMetadataStore) Delete(ctx context.Context, orderID uint, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, metaKey{orderID, key})
	delete(m.updated, metaKey{orderID, key})
	return nil
}

func (m *MockMetadataStore) ListByKey(ctx context.Context, key string, updatedBefore time.Time) ([]order.MetaEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var entries []order.MetaEntry
	for k, v := range m.values {
		if k.key != key || !m.updated[k].Before(updatedBefore) {
			continue
		}
		entries = append(entries, order.MetaEntry{OrderID: k.orderID, Key: k.key, Value: v, UpdatedAt: m.updated[k]})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].OrderID < entries[j].OrderID })
	return entries, nil
}

// Value returns the stored value or "" when absent.
func (m *MockMetadataStore) Value(orderID uint, key string) string {
	v, _, _ := m.Get(context.Background(), orderID, key)
	return v
}

func (m *MockMetadataStore) Has(orderID uint, key string) bool {
	_, ok, _ := m.Get(context.Background(), orderID, key)
	return ok
}

func (m *MockMetadataStore) RejectedAdds() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rejectedAdd
}

// MockCallbackEventRepository keeps recorded webhook deliveries.
type MockCallbackEventRepository struct {
	mu     sync.Mutex
	Events []*order.CallbackEvent
}

func (m *MockCallbackEventRepository) Record(ctx context.Context, event *order.CallbackEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Events = append(m.Events, event)
	return nil
}

func (m *MockCallbackEventRepository) DeleteReceivedBefore(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.Events[:0]
	var removed int64
	for _, ev := range m.Events {
		if ev.ReceivedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, ev)
	}
	m.Events = kept
	return removed, nil
}

// Last returns the most recent event or nil.
func (m *MockCallbackEventRepository) Last() *order.CallbackEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Events) == 0 {
		return nil
	}
	return m.Events[len(m.Events)-1]
}

// MockLocker grants every lock unless Busy is set.
type MockLocker struct {
	mu       sync.Mutex
	Busy     bool
	Acquired []string
	Released int
}

func (m *MockLocker) Acquire(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Busy {
		return nil, shared.ErrLockNotAcquired
	}
	m.Acquired = append(m.Acquired, key)
	return func() {
		m.mu.Lock()
		m.Released++
		m.mu.Unlock()
	}, nil
}

// MockTransactor runs the unit of work directly; the in-memory stores have
// nothing to roll back.
type MockTransactor struct {
	mu    sync.Mutex
	Calls int
}

func (m *MockTransactor) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	return fn(ctx)
}

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	Events []events.DomainEvent
}

func (m *MockPublisher) Publish(event events.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Events = append(m.Events, event)
	return nil
}

// MockGateway is a testify mock of paymentgateway.Gateway.
type MockGateway struct {
	mock.Mock
}

var _ paymentgateway.Gateway = (*MockGateway)(nil)

func (m *MockGateway) InitiatePayment(ctx context.Context, req paymentgateway.PaymentRequest) (*paymentgateway.Response, error) {
	args := m.Called(ctx, req)
	return response(args)
}

func (m *MockGateway) InitiateRefund(ctx context.Context, req paymentgateway.RefundRequest) (*paymentgateway.Response, error) {
	args := m.Called(ctx, req)
	return response(args)
}

func (m *MockGateway) ReportSuccess(ctx context.Context, req paymentgateway.SuccessReport) (*paymentgateway.Response, error) {
	args := m.Called(ctx, req)
	return response(args)
}

func (m *MockGateway) ReportFail(ctx context.Context, req paymentgateway.FailReport) (*paymentgateway.Response, error) {
	args := m.Called(ctx, req)
	return response(args)
}

func response(args mock.Arguments) (*paymentgateway.Response, error) {
	var resp *paymentgateway.Response
	if r := args.Get(0); r != nil {
		resp = r.(*paymentgateway.Response)
	}
	return resp, args.Error(1)
}
