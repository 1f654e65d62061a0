package order

import "errors"

var (
	ErrInvalidID        = errors.New("order: invalid id")
	ErrInvalidTitle     = errors.New("order: invalid title")
	ErrInvalidCustomer  = errors.New("order: invalid customer reference")
	ErrInvalidUser      = errors.New("order: invalid user reference")
	ErrInvalidProject   = errors.New("order: invalid project reference")
	ErrInvalidAmount    = errors.New("order: invalid amount")
	ErrInvalidStatus    = errors.New("order: invalid status")
	ErrInvalidPageSize  = errors.New("order: invalid page size")
	ErrInvalidPageToken = errors.New("order: invalid page token")
	ErrOrderNotFound    = errors.New("order: not found")
	// ErrOrderNumberTaken は並行採番で同一番号が衝突した場合に返却されます。
	// 呼び出し側でリトライ可能です。
	ErrOrderNumberTaken = errors.New("order: order number already taken")
)
