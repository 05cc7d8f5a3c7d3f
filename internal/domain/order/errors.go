package order

import "errors"

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrRefundNotFound = errors.New("refund not found")

	ErrRefundAlreadyConfirmed = errors.New("refund already confirmed")
)
