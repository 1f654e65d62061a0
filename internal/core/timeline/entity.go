package timeline

import "time"

// DefaultOffice は出発地点として記録される本社の位置です。
var DefaultOffice = Office{
	Lat:   25.21558,
	Lng:   51.45524,
	Title: "Head Office",
}

// Office はタイムラインの起点となる拠点です。
type Office struct {
	Lat   float64
	Lng   float64
	Title string
}

// Entry はタイムライン上の 1 件の作業記録です。EndTime は作業完了時に後から
// 設定されます。
type Entry struct {
	Lat       float64
	Lng       float64
	Title     string
	StartTime *time.Time
	EndTime   *time.Time
}

// Timeline は従業員 1 人の 1 日分の行動記録です。日付は yyyy-mm-dd 形式の文字列
// で、従業員と日付の組は一意です。
type Timeline struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	Date         string
	Office       Office
	Entries      []Entry
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
