package modules

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type AsynqQueues map[string]int

type AsynqHandler struct {
	Pattern string
	Handle  func(context.Context, *asynq.Task) error
}

// AsynqServer поднимается поверх общего redis-клиента приложения,
// чтобы не плодить отдельные подключения.
type AsynqServer struct {
	Redis redis.UniversalClient
}

func (s AsynqServer) Run(
	ctx context.Context,
	g *errgroup.Group,
	queues AsynqQueues,
	handlers ...AsynqHandler,
) {
	g.Go(func() error {
		worker := asynq.NewServerFromRedisClient(s.Redis, asynq.Config{
			BaseContext: func() context.Context { return ctx },
			Queues:      queues,
		})

		mux := asynq.NewServeMux()

		for _, h := range handlers {
			mux.HandleFunc(h.Pattern, h.Handle)
		}

		go func() {
			<-ctx.Done()
			worker.Shutdown()
		}()

		logger(ctx).Info("asynq server started", slog.Int("queues", len(queues)))

		if err := worker.Run(mux); err != nil {
			return fmt.Errorf("asynqServer.Run: %w", err)
		}

		logger(ctx).Info("asynq server stopped")

		return nil
	})
}

type AsynqScheduleEntry struct {
	Spec string
	Task *asynq.Task
}

// AsynqScheduler регистрирует периодические задачи (cron/@every спеки).
type AsynqScheduler struct {
	Redis redis.UniversalClient
}

func (s AsynqScheduler) Run(
	ctx context.Context,
	g *errgroup.Group,
	entries ...AsynqScheduleEntry,
) {
	g.Go(func() error {
		scheduler := asynq.NewSchedulerFromRedisClient(s.Redis, nil)

		for _, e := range entries {
			if _, err := scheduler.Register(e.Spec, e.Task); err != nil {
				return fmt.Errorf("scheduler.Register %q: %w", e.Spec, err)
			}
		}

		go func() {
			<-ctx.Done()
			scheduler.Shutdown()
		}()

		logger(ctx).Info("asynq scheduler started", slog.Int("entries", len(entries)))

		if err := scheduler.Run(); err != nil {
			return fmt.Errorf("scheduler.Run: %w", err)
		}

		logger(ctx).Info("asynq scheduler stopped")

		return nil
	})
}
