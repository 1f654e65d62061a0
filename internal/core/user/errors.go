package user

import "errors"

var (
	// ErrUserNotFound は従業員が存在しない場合に返却されます。
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailAlreadyExists はメールアドレス重複時に返却されます。
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrEmployeeCodeTaken は採番した社員コードが既に使われていた場合に返却され
	// ます。一意制約が最後の砦となるため、呼び出し側は再試行できます。
	ErrEmployeeCodeTaken = errors.New("employee code already taken")
	// ErrInvalidEmail はメールアドレスが不正な場合に返却されます。
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidName は名前が不正な場合に返却されます。
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidRole は役割が不正な場合に返却されます。
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidStatus はステータスが不正な場合に返却されます。
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidID はIDが不正な場合に返却されます。
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidPageSize はページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("invalid page size")
	// ErrInvalidPageToken はページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("invalid page token")
)
