package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

var _ repository.ConsumptionLogRepository = (*ConsumptionLogRepo)(nil)

// ConsumptionLogRepo persistencia de bitácoras de consumo y sus líneas.
type ConsumptionLogRepo struct {
	q Querier
}

func NewConsumptionLogRepository(q Querier) *ConsumptionLogRepo {
	return &ConsumptionLogRepo{q: q}
}

// Create inserta solo la cabecera; las líneas van por AddLine.
func (r *ConsumptionLogRepo) Create(ctx context.Context, log *entity.ConsumptionLog) error {
	_, err := r.q.Exec(ctx, `INSERT INTO consumption_logs (id, description, logged_at) VALUES ($1, $2, $3)`,
		log.ID, log.Description, log.LoggedAt)
	if err != nil {
		return mapWriteErr("insert consumption log", err)
	}
	return nil
}

func (r *ConsumptionLogRepo) GetByID(ctx context.Context, id string) (*entity.ConsumptionLog, error) {
	return r.get(ctx, `SELECT id, description, logged_at FROM consumption_logs WHERE id = $1`, id)
}

// GetByIDForUpdate bloquea la cabecera y después lee las líneas.
func (r *ConsumptionLogRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.ConsumptionLog, error) {
	return r.get(ctx, `SELECT id, description, logged_at FROM consumption_logs WHERE id = $1 FOR UPDATE`, id)
}

func (r *ConsumptionLogRepo) get(ctx context.Context, query, id string) (*entity.ConsumptionLog, error) {
	if !validID(id) {
		return nil, nil
	}
	var log entity.ConsumptionLog
	err := r.q.QueryRow(ctx, query, id).
		Scan(&log.ID, &log.Description, &log.LoggedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get consumption log: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT log_id, material_id, batch_id, quantity FROM consumption_lines
		WHERE log_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("get consumption lines: %w", err)
	}
	log.Lines, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.ConsumptionLine, error) {
		var l entity.ConsumptionLine
		err := row.Scan(&l.LogID, &l.MaterialID, &l.BatchID, &l.Quantity)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan consumption lines: %w", err)
	}
	return &log, nil
}

func (r *ConsumptionLogRepo) Update(ctx context.Context, log *entity.ConsumptionLog) error {
	cmd, err := r.q.Exec(ctx, `UPDATE consumption_logs SET description = $2, logged_at = $3 WHERE id = $1`,
		log.ID, log.Description, log.LoggedAt)
	if err != nil {
		return mapWriteErr("update consumption log", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la cabecera; las líneas caen por ON DELETE CASCADE.
func (r *ConsumptionLogRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM consumption_logs WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr("delete consumption log", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ConsumptionLogRepo) AddLine(ctx context.Context, line entity.ConsumptionLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO consumption_lines (log_id, material_id, batch_id, quantity) VALUES ($1, $2, $3, $4)`,
		line.LogID, line.MaterialID, line.BatchID, line.Quantity)
	if err != nil {
		return mapWriteErr("insert consumption line", err)
	}
	return nil
}

func (r *ConsumptionLogRepo) DeleteLines(ctx context.Context, logID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM consumption_lines WHERE log_id = $1`, logID); err != nil {
		return fmt.Errorf("delete consumption lines: %w", err)
	}
	return nil
}

// List bitácoras más recientes primero con los nombres de las materias primas consumidas.
func (r *ConsumptionLogRepo) List(ctx context.Context, limit, offset int) ([]repository.ConsumptionLogRow, error) {
	rows, err := r.q.Query(ctx, `
		SELECT c.id, c.description, c.logged_at,
		       COALESCE(array_agg(DISTINCT m.name ORDER BY m.name) FILTER (WHERE m.name IS NOT NULL), '{}')
		FROM consumption_logs c
		LEFT JOIN consumption_lines l ON l.log_id = c.id
		LEFT JOIN raw_materials m ON m.id = l.material_id
		GROUP BY c.id
		ORDER BY c.logged_at DESC, c.id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list consumption logs: %w", err)
	}
	defer rows.Close()
	var list []repository.ConsumptionLogRow
	for rows.Next() {
		var row repository.ConsumptionLogRow
		if err := rows.Scan(&row.ID, &row.Description, &row.LoggedAt, &row.MaterialNames); err != nil {
			return nil, fmt.Errorf("scan consumption log: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}
