package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"judgeboard/internal/common"
	"judgeboard/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ContestRepository interface {
	Create(ctx context.Context, contest *model.Contest) error
	Update(ctx context.Context, contest *model.Contest) error
	FindByID(ctx context.Context, id int64) (*model.Contest, error)
	// List pages contests newest-first. includeReserved is false for
	// non-privileged viewers; titleFilter is matched as a substring and is
	// always passed as a bind parameter, never spliced into the query text.
	List(ctx context.Context, limit, offset int, includeReserved bool, titleFilter string) ([]model.Contest, int, error)
	Delete(ctx context.Context, id int64) error
}

type pgContestRepository struct {
	db *sql.DB
}

func NewPgContestRepository(db *sql.DB) ContestRepository {
	return &pgContestRepository{db: db}
}

// problem_list and invite_list live in jsonb columns; contests are small and
// the lists are only ever read whole.
func marshalLists(c *model.Contest) (problems, invites []byte, err error) {
	problems, err = json.Marshal(c.ProblemList)
	if err != nil {
		return nil, nil, err
	}
	if c.InviteList == nil {
		invites = []byte("[]")
		return problems, invites, nil
	}
	invites, err = json.Marshal(c.InviteList)
	return problems, invites, err
}

func (r *pgContestRepository) Create(ctx context.Context, c *model.Contest) error {
	problems, invites, err := marshalLists(c)
	if err != nil {
		return fmt.Errorf("pgContestRepository.Create marshal: %w", err)
	}

	query := `INSERT INTO contests (id, title, start_at, end_at, problem_list, encryption_mode, secret, invite_list, status, creator_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.db.ExecContext(ctx, query, c.ID, c.Title, c.StartAt, c.EndAt, problems, c.EncryptionMode, c.Secret, invites, c.Status, c.CreatorID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("contest with this id already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgContestRepository.Create: %w", err)
	}
	return nil
}

func (r *pgContestRepository) Update(ctx context.Context, c *model.Contest) error {
	problems, invites, err := marshalLists(c)
	if err != nil {
		return fmt.Errorf("pgContestRepository.Update marshal: %w", err)
	}

	query := `UPDATE contests SET
                title = $1, start_at = $2, end_at = $3, problem_list = $4,
                encryption_mode = $5, secret = $6, invite_list = $7, status = $8,
                updated_at = CURRENT_TIMESTAMP
              WHERE id = $9`
	res, err := r.db.ExecContext(ctx, query, c.Title, c.StartAt, c.EndAt, problems, c.EncryptionMode, c.Secret, invites, c.Status, c.ID)
	if err != nil {
		return fmt.Errorf("pgContestRepository.Update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanContest(scan func(dest ...interface{}) error) (*model.Contest, error) {
	c := &model.Contest{}
	var problems, invites []byte
	err := scan(&c.ID, &c.Title, &c.StartAt, &c.EndAt, &problems, &c.EncryptionMode, &c.Secret, &invites, &c.Status, &c.CreatorID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(problems, &c.ProblemList); err != nil {
		return nil, fmt.Errorf("decode problem_list: %w", err)
	}
	if err := json.Unmarshal(invites, &c.InviteList); err != nil {
		return nil, fmt.Errorf("decode invite_list: %w", err)
	}
	return c, nil
}

const contestColumns = `id, title, start_at, end_at, problem_list, encryption_mode, secret, invite_list, status, creator_id, created_at, updated_at`

func (r *pgContestRepository) FindByID(ctx context.Context, id int64) (*model.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	c, err := scanContest(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgContestRepository.FindByID: %w", err)
	}
	return c, nil
}

func (r *pgContestRepository) List(ctx context.Context, limit, offset int, includeReserved bool, titleFilter string) ([]model.Contest, int, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if !includeReserved {
		conditions = append(conditions, fmt.Sprintf("status != $%d", argID))
		args = append(args, model.StatusReserved)
		argID++
	}
	if titleFilter != "" {
		conditions = append(conditions, fmt.Sprintf("title ILIKE $%d", argID))
		args = append(args, "%"+titleFilter+"%")
		argID++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contests"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgContestRepository.List count: %w", err)
	}

	query := fmt.Sprintf("SELECT "+contestColumns+" FROM contests%s ORDER BY id DESC LIMIT $%d OFFSET $%d", whereClause, argID, argID+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgContestRepository.List query: %w", err)
	}
	defer rows.Close()

	contests := []model.Contest{}
	for rows.Next() {
		c, err := scanContest(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("pgContestRepository.List scan: %w", err)
		}
		contests = append(contests, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgContestRepository.List rows.Err: %w", err)
	}
	return contests, total, nil
}

func (r *pgContestRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgContestRepository.Delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}
