package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"auto_crm/internal/domain"
	"auto_crm/internal/domain/entity"
	"auto_crm/internal/domain/value"
	"auto_crm/pkg/errcodes"
)

const dealColumns = `id, lead_id, car_id, agent_id, status, probability,
		vehicle_price, final_price, commission_rate, expected_close_date,
		closed_at, status_history, version, created_at, updated_at`

type DealRepository struct {
	db *sqlx.DB
}

func NewDealRepository(db *sqlx.DB) *DealRepository {
	return &DealRepository{db: db}
}

// withTx выполняет функцию в транзакции.
func (r *DealRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return domain.WrapError(
				fmt.Errorf("%w; rollback: %v", err, rbErr),
				errcodes.InternalServerError,
				"transaction failed",
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit")
	}

	return nil
}

func (r *DealRepository) Create(ctx context.Context, deal *entity.Deal) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		schema, err := fromDeal(deal)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to marshal deal")
		}

		query := `
			INSERT INTO deals (
				id, lead_id, car_id, agent_id, status, probability,
				vehicle_price, final_price, commission_rate, expected_close_date,
				closed_at, status_history, version, created_at, updated_at
			) VALUES (
				:id, :lead_id, :car_id, :agent_id, :status, :probability,
				:vehicle_price, :final_price, :commission_rate, :expected_close_date,
				:closed_at, :status_history, :version, :created_at, :updated_at
			)`

		if _, err := tx.NamedExecContext(ctx, query, schema); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to insert deal")
		}

		return nil
	})
}

func (r *DealRepository) GetByID(ctx context.Context, id value.DealID) (*entity.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1`

	var schema dealSchema
	if err := r.db.GetContext(ctx, &schema, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.DealNotFound, "deal not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get deal")
	}

	return schema.toDomain()
}

// Update пишет сделку с проверкой версии (оптимистичная блокировка).
// Второй писатель получает StorageConflict, повторов здесь нет.
func (r *DealRepository) Update(ctx context.Context, deal *entity.Deal) error {
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		schema, err := fromDeal(deal)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to marshal deal")
		}

		query := `
			UPDATE deals SET
				status = :status,
				probability = :probability,
				vehicle_price = :vehicle_price,
				final_price = :final_price,
				commission_rate = :commission_rate,
				expected_close_date = :expected_close_date,
				closed_at = :closed_at,
				status_history = :status_history,
				version = version + 1,
				updated_at = :updated_at
			WHERE id = :id AND version = :version`

		res, err := tx.NamedExecContext(ctx, query, schema)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to update deal")
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
		}

		if rows == 0 {
			var exists bool
			if err := tx.GetContext(ctx, &exists,
				`SELECT EXISTS(SELECT 1 FROM deals WHERE id = $1)`, schema.ID); err != nil {
				return domain.WrapError(err, errcodes.InternalServerError, "failed to check deal existence")
			}

			if !exists {
				return domain.NewError(errcodes.DealNotFound, "deal not found")
			}

			return domain.NewError(errcodes.StorageConflict, "deal was modified concurrently")
		}

		return nil
	})
	if err != nil {
		return err
	}

	// Версия в памяти растёт только после закоммиченной записи:
	// иначе повтор после неудачного коммита ловил бы ложный конфликт
	deal.Version++

	return nil
}

// List отдаёт сделки, сужая выборку по агенту и статусу ещё в запросе.
// Пагинацию здесь не делаем: остальные предикаты накладываются выше,
// и страница до фильтрации давала бы неполные результаты.
func (r *DealRepository) List(ctx context.Context, agentID *int64, status *entity.DealStatus) ([]entity.Deal, error) {
	query := `SELECT ` + dealColumns + `
		FROM deals
		WHERE ($1::bigint IS NULL OR agent_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC`

	var statusName *string
	if status != nil {
		name := status.String()
		statusName = &name
	}

	var schemas []dealSchema
	if err := r.db.SelectContext(ctx, &schemas, query, agentID, statusName); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list deals")
	}

	return r.toDomainList(schemas)
}

// ListOpen — все сделки вне терминальных статусов, для фоновой проверки сроков.
func (r *DealRepository) ListOpen(ctx context.Context) ([]entity.Deal, error) {
	query := `SELECT ` + dealColumns + `
		FROM deals
		WHERE status NOT IN ($1, $2)
		ORDER BY created_at`

	var schemas []dealSchema
	if err := r.db.SelectContext(ctx, &schemas, query,
		entity.StatusClosedWon.String(), entity.StatusClosedLost.String()); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list open deals")
	}

	return r.toDomainList(schemas)
}

func (r *DealRepository) toDomainList(schemas []dealSchema) ([]entity.Deal, error) {
	deals := make([]entity.Deal, 0, len(schemas))

	for i := range schemas {
		deal, err := schemas[i].toDomain()
		if err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to convert deal")
		}
		deals = append(deals, *deal)
	}

	return deals, nil
}
