package project

import "errors"

var (
	// ErrProjectNotFound はプロジェクトが存在しない場合に返却されます。
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidTitle はタイトルが不正な場合に返却されます。
	ErrInvalidTitle = errors.New("invalid title")
	// ErrInvalidCustomer は顧客参照が不正な場合に返却されます。
	ErrInvalidCustomer = errors.New("invalid customer reference")
	// ErrInvalidEmployee は担当従業員参照が不正な場合に返却されます。
	ErrInvalidEmployee = errors.New("invalid employee reference")
	// ErrInvalidStatus はステータスが不正な場合に返却されます。
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidDateRange は終了日が開始日より前の場合に返却されます。
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrInvalidID はIDが不正な場合に返却されます。
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidPageSize はページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("invalid page size")
	// ErrInvalidPageToken はページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("invalid page token")
)
