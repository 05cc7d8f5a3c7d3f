package constants

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderAppID         = "App-Id"
	HeaderAppSecret     = "App-Secret"

	ContentTypeForm = "application/x-www-form-urlencoded"

	// Gin context keys
	ContextKeySession   = "session"
	ContextKeyUserEmail = "user_email"
	ContextKeyUserRole  = "user_role"

	// Webhook discriminator values of the wc-api query parameter
	WebhookPayment = "shoppingos-payment"
	WebhookRefund  = "shoppingos-refund"

	AccessTokenCookie = "sos_admin_token"
)

// Table names
const (
	TableOrders         = "orders"
	TableOrderRefunds   = "order_refunds"
	TableOrderNotes     = "order_notes"
	TableOrderMeta      = "order_meta"
	TableCallbackEvents = "callback_events"
)
