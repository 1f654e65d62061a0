package timeline

import "errors"

var (
	// ErrTimelineNotFound はタイムラインが存在しない場合に返却されます。
	ErrTimelineNotFound = errors.New("timeline not found")
	// ErrEntryNotFound は指定タイトルの作業記録が存在しない場合に返却されます。
	ErrEntryNotFound = errors.New("timeline entry not found")
	// ErrInvalidEmployee は従業員の指定が不正な場合に返却されます。
	ErrInvalidEmployee = errors.New("invalid employee")
	// ErrInvalidDate は日付が不正な場合に返却されます。
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidEntry は作業記録が不正な場合に返却されます。
	ErrInvalidEntry = errors.New("invalid entry")
)
