package order

import (
	"fmt"
	"strconv"
	"strings"
)

// NextOrderNumber は直近に採番された注文番号から次の番号を生成します。last が
// 空、または `<PREFIX>-<数値>` として解釈できない場合は系列の先頭 (ORD-001) に
// フォールバックします。番号は 3 桁までゼロ埋めされ、999 を超えると桁が伸びます。
func NextOrderNumber(last string) string {
	next := 1
	if idx := strings.LastIndex(last, "-"); idx >= 0 {
		if n, err := strconv.Atoi(last[idx+1:]); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("ORD-%03d", next)
}
