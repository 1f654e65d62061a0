package user

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	employeeCodePrefix = "T"
	firstEmployeeCode  = 101
)

// NextEmployeeCode は直近に採番された社員コードから次のコードを生成します。
// last が空、またはプレフィックスの後ろを数値として解釈できない場合は系列の
// 先頭 (T101) にフォールバックします。
func NextEmployeeCode(last string) string {
	if last == "" {
		return fmt.Sprintf("%s%d", employeeCodePrefix, firstEmployeeCode)
	}

	n, err := strconv.Atoi(strings.TrimPrefix(last, employeeCodePrefix))
	if err != nil {
		return fmt.Sprintf("%s%d", employeeCodePrefix, firstEmployeeCode)
	}

	return fmt.Sprintf("%s%d", employeeCodePrefix, n+1)
}
