package application

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"auto_crm/internal/config"
	service "auto_crm/internal/domain/service/deal"
	"auto_crm/internal/infrastructure/notifier"
	"auto_crm/internal/infrastructure/persistence"
	"auto_crm/internal/server"
	"auto_crm/internal/worker"
	"auto_crm/pkg/application/connectors"
	"auto_crm/pkg/application/modules"
	"auto_crm/pkg/logx"
	"auto_crm/pkg/middlewarex"
)

const (
	appName    = "auto-crm"
	appVersion = "v1.0.0"

	alertsBufferSize = 100
)

func Run(ctx context.Context) error {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}

	// 2. Database
	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	db := pg.Client(ctx)
	defer pg.Close(ctx)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}

	// 3. Redis (общий клиент для asynq-сервера и планировщика)
	rd := &connectors.Redis{
		Address:            cfg.Redis.Address,
		Username:           cfg.Redis.Username,
		Password:           cfg.Redis.Password,
		DatabaseNumber:     cfg.Redis.DatabaseNumber,
		PoolSize:           cfg.Redis.PoolSize,
		MinIdleConnections: cfg.Redis.MinIdleConnections,
		MaxIdleConnections: cfg.Redis.MaxIdleConnections,
	}
	redisClient := rd.Client(ctx)
	defer rd.Close(ctx)

	// 4. Domain
	dealRepo := persistence.NewDealRepository(db)

	dealService := service.NewDealService(dealRepo).
		WithStaleThreshold(cfg.Sweeper.StaleAfter)

	// 5. Alerts pipeline: sweeper -> channel -> notifier bot
	alerts := make(chan service.DealAlert, alertsBufferSize)

	sweeper := worker.NewPipelineSweeper(dealService, alerts)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Bot.Token != "" {
		alertBot, err := notifier.NewTelegramBot(cfg.Bot.Token, cfg.Bot.ChatID)
		if err != nil {
			return fmt.Errorf("notifier bot: %w", err)
		}

		g.Go(func() error {
			logger(ctx).Info("notifier bot started listening")

			if err := alertBot.Run(ctx, alerts); err != nil && ctx.Err() == nil {
				return fmt.Errorf("alertBot.Run: %w", err)
			}

			return nil
		})
	} else {
		// Без бота алерты всё равно надо вычитывать, иначе sweeper встанет
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case alert := <-alerts:
					logger(ctx).Warn("deal needs attention",
						"deal_id", alert.DealID,
						"kind", string(alert.Kind),
						"days", alert.Days,
					)
				}
			}
		})
	}

	// 6. HTTP API
	router := chi.NewRouter()

	var masker logx.SensitiveDataMaskerInterface = logx.NewSensitiveDataMasker()
	if !cfg.HTTP.MaskSensitiveData {
		masker = logx.NewNopSensitiveDataMasker()
	}

	router.Use(
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.Recovery,
		middlewarex.RequestLogging(masker, cfg.HTTP.LogFieldMaxLen),
		middlewarex.ResponseLogging(masker, cfg.HTTP.LogFieldMaxLen),
	)

	apiServer := server.NewServer(
		server.NewDealServer(dealService),
	)
	apiServer.RegisterRoutes(router)

	modules.HTTPServer{
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}.Run(ctx, g, &http.Server{ //nolint:exhaustruct
		Addr:    cfg.HTTP.ListenAddress,
		Handler: router,
	})

	// 7. Operations: probes + prometheus
	modules.ProbeServer{
		Name:          appName,
		Version:       appVersion,
		ListenAddress: cfg.HTTP.ProbeListenAddress,
	}.Run(ctx, g)

	modules.MetricServer{
		ListenAddress: cfg.HTTP.MetricsListenAddress,
	}.Run(ctx, g)

	// 8. Background sweep: периодическая задача через asynq
	modules.AsynqServer{Redis: redisClient}.Run(ctx, g,
		modules.AsynqQueues{cfg.Sweeper.Queue: 1},
		modules.AsynqHandler{
			Pattern: worker.TaskPipelineSweep,
			Handle:  sweeper.HandleSweepTask,
		},
	)

	modules.AsynqScheduler{Redis: redisClient}.Run(ctx, g,
		modules.AsynqScheduleEntry{
			Spec: fmt.Sprintf("@every %s", cfg.Sweeper.Interval),
			Task: asynq.NewTask(worker.TaskPipelineSweep, nil, asynq.Queue(cfg.Sweeper.Queue)),
		},
	)

	logger(ctx).Info("application started",
		"http", cfg.HTTP.ListenAddress,
		"sweep_interval", cfg.Sweeper.Interval.String(),
	)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	logger(ctx).Info("application stopped")

	return nil
}
