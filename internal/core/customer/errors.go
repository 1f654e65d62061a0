package customer

import "errors"

var (
	// ErrCustomerNotFound は顧客が存在しない場合に返却されます。
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrEmailAlreadyExists はメールアドレス重複時に返却されます。
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrInvalidEmail はメールアドレスが不正な場合に返却されます。
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidName は名前が不正な場合に返却されます。
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidID はIDが不正な場合に返却されます。
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidPageSize はページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("invalid page size")
	// ErrInvalidPageToken はページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("invalid page token")
)
