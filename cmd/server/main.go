package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	kafkaevents "github.com/ogurasousui/fieldservice/internal/adapters/events/kafka"
	"github.com/ogurasousui/fieldservice/internal/adapters/repository/postgres"
	"github.com/ogurasousui/fieldservice/internal/adapters/rest"
	"github.com/ogurasousui/fieldservice/internal/core/asset"
	"github.com/ogurasousui/fieldservice/internal/core/customer"
	"github.com/ogurasousui/fieldservice/internal/core/dashboard"
	"github.com/ogurasousui/fieldservice/internal/core/event"
	"github.com/ogurasousui/fieldservice/internal/core/order"
	"github.com/ogurasousui/fieldservice/internal/core/project"
	"github.com/ogurasousui/fieldservice/internal/core/task"
	"github.com/ogurasousui/fieldservice/internal/core/timeline"
	"github.com/ogurasousui/fieldservice/internal/core/user"
	"github.com/ogurasousui/fieldservice/internal/platform/config"
	pg "github.com/ogurasousui/fieldservice/internal/platform/db/postgres"
	"github.com/ogurasousui/fieldservice/internal/platform/server"
	"github.com/twmb/franz-go/pkg/kgo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database pool: %v", err)
	}
	defer dbPool.Close()

	var events event.Publisher = event.NopPublisher{}
	if cfg.Kafka.EventsEnabled() {
		kafkaClient, err := kgo.NewClient(
			kgo.SeedBrokers(cfg.Kafka.Brokers...),
			kgo.DefaultProduceTopic(cfg.Kafka.EventsTopic),
		)
		if err != nil {
			log.Fatalf("failed to initialize kafka client: %v", err)
		}
		defer kafkaClient.Close()
		events = kafkaevents.NewPublisher(kafkaClient, cfg.Kafka.EventsTopic)
		log.Printf("event publishing enabled on topic %s", cfg.Kafka.EventsTopic)
	}

	txManager := pg.NewTransactionManager(dbPool)

	taskRepo := postgres.NewTaskRepository(dbPool)
	orderRepo := postgres.NewOrderRepository(dbPool)
	userRepo := postgres.NewUserRepository(dbPool)
	customerRepo := postgres.NewCustomerRepository(dbPool)
	projectRepo := postgres.NewProjectRepository(dbPool)
	assetRepo := postgres.NewAssetRepository(dbPool)
	timelineRepo := postgres.NewTimelineRepository(dbPool)
	dashboardRepo := postgres.NewDashboardRepository(dbPool)

	svcs := rest.Services{
		Task:      task.NewService(taskRepo, nil, txManager, events),
		Order:     order.NewService(orderRepo, nil, txManager, events),
		User:      user.NewService(userRepo, nil, txManager),
		Customer:  customer.NewService(customerRepo, nil),
		Project:   project.NewService(projectRepo, nil),
		Asset:     asset.NewService(assetRepo, nil),
		Timeline:  timeline.NewService(timelineRepo, nil, txManager),
		Dashboard: dashboard.NewService(dashboardRepo, txManager),
		Health:    dbPool,
	}

	httpServer := server.New(cfg.Server.ListenAddr, svcs)

	log.Printf("HTTP server listening on %s", cfg.Server.ListenAddr)

	if err := httpServer.Run(ctx); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}
