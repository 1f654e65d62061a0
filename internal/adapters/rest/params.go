package rest

import (
	"strconv"

	"github.com/emicklei/go-restful/v3"
)

// intQueryParameter はクエリパラメータを整数として読み取ります。欠落または
// 解釈不能な値は 0 を返し、各サービスの既定値にフォールバックさせます。
func intQueryParameter(req *restful.Request, name string) int {
	raw := req.QueryParameter(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}

// boolQueryParameter はクエリパラメータを真偽値として読み取ります。欠落または
// 解釈不能な値は nil を返します。
func boolQueryParameter(req *restful.Request, name string) *bool {
	raw := req.QueryParameter(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}
