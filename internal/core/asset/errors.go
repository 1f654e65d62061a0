package asset

import "errors"

var (
	// ErrAssetNotFound は資産が存在しない場合に返却されます。
	ErrAssetNotFound = errors.New("asset not found")
	// ErrSerialNumberTaken はシリアル番号重複時に返却されます。
	ErrSerialNumberTaken = errors.New("serial number already taken")
	// ErrBarcodeTaken はバーコード重複時に返却されます。
	ErrBarcodeTaken = errors.New("barcode already taken")
	// ErrInvalidTitle はタイトルが不正な場合に返却されます。
	ErrInvalidTitle = errors.New("invalid title")
	// ErrInvalidOrder は注文参照が不正な場合に返却されます。
	ErrInvalidOrder = errors.New("invalid order reference")
	// ErrInvalidProject はプロジェクト参照が不正な場合に返却されます。
	ErrInvalidProject = errors.New("invalid project reference")
	// ErrInvalidCustomer は顧客参照が不正な場合に返却されます。
	ErrInvalidCustomer = errors.New("invalid customer reference")
	// ErrInvalidStatus はステータスが不正な場合に返却されます。
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidID はIDが不正な場合に返却されます。
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidPageSize はページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("invalid page size")
	// ErrInvalidPageToken はページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("invalid page token")
)
