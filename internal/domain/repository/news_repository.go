package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"judgeboard/internal/common"
	"judgeboard/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type NewsRepository interface {
	Create(ctx context.Context, news *model.News) error
	Update(ctx context.Context, news *model.News) error
	FindByID(ctx context.Context, id int64) (*model.News, error)
	List(ctx context.Context, limit, offset int) ([]model.News, int, error)
	Delete(ctx context.Context, id int64) error
}

type pgNewsRepository struct {
	db *sql.DB
}

func NewPgNewsRepository(db *sql.DB) NewsRepository {
	return &pgNewsRepository{db: db}
}

func (r *pgNewsRepository) Create(ctx context.Context, n *model.News) error {
	query := `INSERT INTO news (id, title, slug, body, creator_id) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, n.ID, n.Title, n.Slug, n.Body, n.CreatorID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("news with this id already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgNewsRepository.Create: %w", err)
	}
	return nil
}

func (r *pgNewsRepository) Update(ctx context.Context, n *model.News) error {
	query := `UPDATE news SET title = $1, slug = $2, body = $3, updated_at = CURRENT_TIMESTAMP WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, n.Title, n.Slug, n.Body, n.ID)
	if err != nil {
		return fmt.Errorf("pgNewsRepository.Update: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgNewsRepository) FindByID(ctx context.Context, id int64) (*model.News, error) {
	query := `SELECT id, title, slug, body, creator_id, created_at, updated_at FROM news WHERE id = $1`
	n := &model.News{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.Title, &n.Slug, &n.Body, &n.CreatorID, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgNewsRepository.FindByID: %w", err)
	}
	return n, nil
}

func (r *pgNewsRepository) List(ctx context.Context, limit, offset int) ([]model.News, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM news`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgNewsRepository.List count: %w", err)
	}

	query := `SELECT id, title, slug, body, creator_id, created_at, updated_at
	          FROM news ORDER BY id DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgNewsRepository.List query: %w", err)
	}
	defer rows.Close()

	items := []model.News{}
	for rows.Next() {
		var n model.News
		if err := rows.Scan(&n.ID, &n.Title, &n.Slug, &n.Body, &n.CreatorID, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("pgNewsRepository.List scan: %w", err)
		}
		items = append(items, n)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgNewsRepository.List rows.Err: %w", err)
	}
	return items, total, nil
}

func (r *pgNewsRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgNewsRepository.Delete: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
