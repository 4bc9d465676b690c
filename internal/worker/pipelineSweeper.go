package worker

import (
	"context"

	"github.com/hibiken/asynq"

	service "auto_crm/internal/domain/service/deal"
)

// TaskPipelineSweep — периодическая задача проверки сроков по открытым сделкам.
const TaskPipelineSweep = "pipeline:sweep"

type PipelineSweeper struct {
	dealService *service.DealService
	alerts      chan<- service.DealAlert
}

func NewPipelineSweeper(
	dealService *service.DealService,
	alerts chan<- service.DealAlert,
) *PipelineSweeper {
	return &PipelineSweeper{
		dealService: dealService,
		alerts:      alerts,
	}
}

// HandleSweepTask — обработчик asynq-задачи. Сам ничего не мутирует:
// собирает просроченные и залежавшиеся сделки и отдаёт их в канал алертов.
func (w *PipelineSweeper) HandleSweepTask(ctx context.Context, _ *asynq.Task) error {
	return w.sweep(ctx)
}

func (w *PipelineSweeper) sweep(ctx context.Context) error {
	alerts, err := w.dealService.CollectAttention(ctx)
	if err != nil {
		logger(ctx).Error("pipeline sweep failed", "error", err)
		return err
	}

	for _, alert := range alerts {
		select {
		case w.alerts <- alert:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if len(alerts) > 0 {
		logger(ctx).Info("pipeline sweep completed", "alerts", len(alerts))
	}

	return nil
}
