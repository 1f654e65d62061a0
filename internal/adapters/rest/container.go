package rest

import (
	"github.com/emicklei/go-restful/v3"
	"github.com/ogurasousui/fieldservice/internal/core/asset"
	"github.com/ogurasousui/fieldservice/internal/core/customer"
	"github.com/ogurasousui/fieldservice/internal/core/dashboard"
	"github.com/ogurasousui/fieldservice/internal/core/order"
	"github.com/ogurasousui/fieldservice/internal/core/project"
	"github.com/ogurasousui/fieldservice/internal/core/task"
	"github.com/ogurasousui/fieldservice/internal/core/timeline"
	"github.com/ogurasousui/fieldservice/internal/core/user"
)

// Services は REST コンテナが公開するユースケースの束です。
type Services struct {
	Task      task.UseCase
	Order     order.UseCase
	User      user.UseCase
	Customer  customer.UseCase
	Project   project.UseCase
	Asset     asset.UseCase
	Timeline  timeline.UseCase
	Dashboard dashboard.UseCase
	Health    Pinger
}

// NewContainer は全エンドポイントを登録した restful.Container を生成します。
func NewContainer(svcs Services) *restful.Container {
	container := restful.NewContainer()

	container.Add(NewTaskResource(svcs.Task).WebService())
	container.Add(NewOrderResource(svcs.Order).WebService())
	container.Add(NewUserResource(svcs.User).WebService())
	container.Add(NewCustomerResource(svcs.Customer).WebService())
	container.Add(NewProjectResource(svcs.Project).WebService())
	container.Add(NewAssetResource(svcs.Asset).WebService())
	container.Add(NewTimelineResource(svcs.Timeline).WebService())
	container.Add(NewDashboardResource(svcs.Dashboard).WebService())
	container.Add(NewHealthResource(svcs.Health).WebService())

	return container
}
