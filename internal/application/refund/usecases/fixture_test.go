package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shoppingos/sospay/internal/application/common/callbacklog"
	"github.com/shoppingos/sospay/internal/application/common/links"
	"github.com/shoppingos/sospay/internal/application/payment/paymentgateway"
	"github.com/shoppingos/sospay/internal/application/refund/pending"
	"github.com/shoppingos/sospay/internal/application/testutil"
	"github.com/shoppingos/sospay/internal/domain/session"
	"github.com/shoppingos/sospay/internal/infrastructure/cache"
	"github.com/shoppingos/sospay/internal/shared/logger"
)

const shopURL = "https://shop.example"

var testSettings = paymentgateway.Settings{
	TestMode:            false,
	Currency:            "GBP",
	Version:             "1.0.0",
	PaymentFailEndpoint: paymentgateway.EndpointFail,
	RefundFailEndpoint:  paymentgateway.EndpointToken,
}

type refundFixture struct {
	orders    *testutil.MockOrderRepository
	refunds   *testutil.MockRefundRepository
	notes     *testutil.MockNoteRepository
	meta      *testutil.MockMetadataStore
	gateway   *testutil.MockGateway
	locker    *testutil.MockLocker
	events    *testutil.MockCallbackEventRepository
	publisher *testutil.MockPublisher
	tx        *testutil.MockTransactor
	sess      session.Session
	links     *links.Builder

	process  *ProcessRefundUseCase
	proceed  *MaybeProceedToBankRefundUseCase
	callback *HandleRefundCallbackUseCase
	notices  *ConsumeRefundNoticesUseCase
}

func newRefundFixture(t *testing.T) *refundFixture {
	t.Helper()

	f := &refundFixture{
		orders:    testutil.NewMockOrderRepository(),
		refunds:   testutil.NewMockRefundRepository(),
		notes:     testutil.NewMockNoteRepository(),
		meta:      testutil.NewMockMetadataStore(),
		gateway:   &testutil.MockGateway{},
		locker:    &testutil.MockLocker{},
		events:    &testutil.MockCallbackEventRepository{},
		publisher: &testutil.MockPublisher{},
		tx:        &testutil.MockTransactor{},
		sess:      cache.NewMemorySessionStore().Load("merchant"),
		links:     links.NewBuilder(shopURL),
	}
	log := logger.NewNop()

	f.process = NewProcessRefundUseCase(f.orders, f.refunds, f.notes, f.meta, f.tx, f.links, log)
	f.proceed = NewMaybeProceedToBankRefundUseCase(f.refunds, f.meta, f.tx, f.gateway, f.links, testSettings, log)
	f.callback = NewHandleRefundCallbackUseCase(
		f.orders, f.refunds, f.notes, f.meta, f.tx, f.gateway, f.locker,
		callbacklog.NewRecorder(f.events, log), f.publisher, f.links, testSettings, log,
	)
	f.notices = NewConsumeRefundNoticesUseCase(f.meta, log)
	return f
}

func (f *refundFixture) attempt(t *testing.T) pending.Attempt {
	t.Helper()
	a, err := pending.New(f.sess).Current(context.Background())
	require.NoError(t, err)
	return a
}

// awaitWebhook puts the session in the state left by a redirect to the bank.
func (f *refundFixture) awaitWebhook(t *testing.T, refundID, orderID uint) {
	t.Helper()
	require.NoError(t, pending.New(f.sess).SetReturningToWc(context.Background(), refundID, orderID))
}
