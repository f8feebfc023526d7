package models

import "errors"

var (
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponInvalid       = errors.New("invalid coupon")
	ErrCouponExists        = errors.New("coupon code already exists")
	ErrPackageNotFound     = errors.New("package not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)
