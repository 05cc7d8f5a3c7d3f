package order

import "time"

// Order metadata keys. Values are strings; absence and empty string are distinct.
const (
	MetaSelectedBank  = "sos_selected_bank"
	MetaTokenID       = "sos_token_id"
	MetaRefundCurrent = "sos_refund_current"
	MetaRefundNotice  = "sos_refund_notice"
	MetaRefundRespMsg = "sos_refund_response_notice"
	MetaRefundAmount  = "sos_refund_amount"
	MetaRefundDate    = "sos_refund_date"
	MetaRefundStatus  = "sos_refund_status"
	MetaRefundEmail   = "sos_refund_psu_email"
)

// MetaEntry is one stored metadata value together with its owner.
type MetaEntry struct {
	OrderID   uint
	Key       string
	Value     string
	UpdatedAt time.Time
}
