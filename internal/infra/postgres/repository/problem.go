package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/revisit/internal/domain/entities"
	"github.com/aliskhannn/revisit/internal/infra/postgres"
)

const problemColumns = `id, user_id, name, difficulty, tags, url, date_solved, notes,
	practice_meta, created_at, updated_at`

// ProblemRepository provides access to problems in the database.
type ProblemRepository struct {
	db postgres.DBTX
}

// NewProblemRepository creates a new ProblemRepository over a pool or transaction.
func NewProblemRepository(db postgres.DBTX) *ProblemRepository {
	return &ProblemRepository{db: db}
}

// Create inserts a new problem.
func (r *ProblemRepository) Create(ctx context.Context, p *entities.Problem) error {
	meta, err := p.Practice.Encode()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO problems (` + problemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.Name,
		p.Difficulty,
		p.Tags,
		p.URL,
		p.DateSolved,
		p.Notes,
		meta,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create problem: %w", err)
	}

	return nil
}

// GetByID retrieves a problem owned by userID.
func (r *ProblemRepository) GetByID(ctx context.Context, userID int64, id string) (*entities.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE id = $1 AND user_id = $2`
	return r.getOne(ctx, query, id, userID)
}

// GetForUpdate retrieves a problem and locks its row. Must run inside a transaction.
func (r *ProblemRepository) GetForUpdate(ctx context.Context, userID int64, id string) (*entities.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE id = $1 AND user_id = $2 FOR UPDATE`
	return r.getOne(ctx, query, id, userID)
}

func (r *ProblemRepository) getOne(ctx context.Context, query string, args ...any) (*entities.Problem, error) {
	p, err := scanProblem(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrProblemNotFound
		}
		return nil, fmt.Errorf("get problem: %w", err)
	}
	return p, nil
}

// List returns the user's problems, most recently solved first.
func (r *ProblemRepository) List(ctx context.Context, userID int64, filter entities.ProblemFilter) ([]*entities.Problem, error) {
	where, args := []string{"user_id = $1"}, []any{userID}
	if filter.Difficulty != "" {
		args = append(args, filter.Difficulty)
		where = append(where, fmt.Sprintf("difficulty = $%d", len(args)))
	}
	if filter.Tag != "" {
		args = append(args, strings.ToLower(filter.Tag))
		where = append(where, fmt.Sprintf("$%d = ANY(tags)", len(args)))
	}

	query := `SELECT ` + problemColumns + ` FROM problems
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY date_solved DESC, created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	defer rows.Close()

	var problems []*entities.Problem
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan problem: %w", err)
		}
		problems = append(problems, p)
	}

	return problems, rows.Err()
}

// Update rewrites the user-editable fields of a problem.
func (r *ProblemRepository) Update(ctx context.Context, p *entities.Problem) error {
	query := `
		UPDATE problems
		SET name = $1, difficulty = $2, tags = $3, url = $4,
		    date_solved = $5, notes = $6, updated_at = $7
		WHERE id = $8 AND user_id = $9
	`

	tag, err := r.db.Exec(ctx, query,
		p.Name, p.Difficulty, p.Tags, p.URL, p.DateSolved, p.Notes, p.UpdatedAt, p.ID, p.UserID,
	)
	if err != nil {
		return fmt.Errorf("update problem: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrProblemNotFound
	}
	return nil
}

// UpdatePracticeMeta stores the practice document of a problem.
func (r *ProblemRepository) UpdatePracticeMeta(ctx context.Context, p *entities.Problem) error {
	meta, err := p.Practice.Encode()
	if err != nil {
		return err
	}

	query := `
		UPDATE problems
		SET practice_meta = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4
	`

	tag, err := r.db.Exec(ctx, query, meta, p.UpdatedAt, p.ID, p.UserID)
	if err != nil {
		return fmt.Errorf("update practice meta: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrProblemNotFound
	}
	return nil
}

// Delete removes a problem. Its reminders go with it through the foreign key.
func (r *ProblemRepository) Delete(ctx context.Context, userID int64, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM problems WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete problem: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrProblemNotFound
	}
	return nil
}

func scanProblem(row pgx.Row) (*entities.Problem, error) {
	var (
		p    entities.Problem
		meta []byte
	)

	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Difficulty,
		&p.Tags,
		&p.URL,
		&p.DateSolved,
		&p.Notes,
		&meta,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	practice, err := entities.DecodePracticeMeta(meta)
	if err != nil {
		return nil, fmt.Errorf("problem %s: %w", p.ID, err)
	}
	p.Practice = practice

	return &p, nil
}
