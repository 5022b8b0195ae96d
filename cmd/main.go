package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/RoyceAzure/lab/pos/config"
	"github.com/RoyceAzure/lab/pos/internal/domain/model"
	"github.com/RoyceAzure/lab/pos/internal/infra/gateway"
	"github.com/RoyceAzure/lab/pos/internal/infra/producer"
	"github.com/RoyceAzure/lab/pos/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/pos/internal/service"
)

// 桌況監看daemon：定時輪詢桌子狀態並輸出異動摘要
// 購物車、搬桌、結帳等操作面由嵌入本模組的前端程式呼叫
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("module", "pos").
		Logger()

	app, err := newAppContext(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer app.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 先載一次目錄與桌況，之後交給定時輪詢
	hydrateCtx, hydrateCancel := context.WithTimeout(ctx, 30*time.Second)
	defer hydrateCancel()
	if _, _, err := app.catalog.Hydrate(hydrateCtx); err != nil {
		logger.Warn().Err(err).Msg("initial catalog hydration failed")
	}
	if err := app.tableView.Refresh(hydrateCtx); err != nil {
		logger.Warn().Err(err).Msg("initial table refresh failed")
	}

	app.tableView.StartPolling(ctx, cfg.PollInterval())
	logger.Info().Dur("interval", cfg.PollInterval()).Msg("table state polling started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info().Msg("shutting down")
}

// appContext 集中建構本模組的全部服務
type appContext struct {
	tableView  *service.TableViewService
	catalog    *service.CatalogService
	carts      *service.CartSessionService
	transfers  *service.TransferService
	settlement *service.SettlementEngine

	kafkaProducer *producer.SettlementEventProducer
}

func newAppContext(cfg *config.Config, logger zerolog.Logger) (*appContext, error) {
	gw := gateway.NewHTTPGateway(cfg.APIBaseURL, logger, gateway.WithToken(cfg.APIToken))

	var catalogCache redis_repo.ICatalogRepository
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		catalogCache = redis_repo.NewCatalogRepo(redisClient, cfg.CatalogTTL())
	}

	app := &appContext{}

	var publisher producer.ISettlementEventPublisher
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		app.kafkaProducer = producer.NewSettlementEventProducer(brokers, cfg.KafkaTopic)
		publisher = app.kafkaProducer
	}

	app.tableView = service.NewTableViewService(gw, logger)
	app.tableView.SetOnChange(func(tables []model.Table) {
		occupied := 0
		for _, table := range tables {
			if table.Occupied {
				occupied++
			}
		}
		logger.Info().Int("tables", len(tables)).Int("occupied", occupied).Msg("table snapshot replaced")
	})

	app.catalog = service.NewCatalogService(gw, catalogCache, logger)
	app.carts = service.NewCartSessionService(gw, app.tableView, logger)
	app.transfers = service.NewTransferService(gw, app.tableView, logger)
	app.settlement = service.NewSettlementEngine(gw, app.tableView, publisher, logger)
	return app, nil
}

func (a *appContext) close() {
	if a.kafkaProducer != nil {
		a.kafkaProducer.Close()
	}
}
