package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

const problemColumns = `id, user_id, name, difficulty, tags, url, date_solved, notes,
	practice_meta, created_ts, updated_ts`

type problemRow struct {
	ID           string `db:"id"`
	UserID       int64  `db:"user_id"`
	Name         string `db:"name"`
	Difficulty   string `db:"difficulty"`
	Tags         string `db:"tags"`
	URL          string `db:"url"`
	DateSolved   string `db:"date_solved"`
	Notes        string `db:"notes"`
	PracticeMeta string `db:"practice_meta"`
	CreatedTs    int64  `db:"created_ts"`
	UpdatedTs    int64  `db:"updated_ts"`
}

func newProblemRow(p *entities.Problem) (*problemRow, error) {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode tags")
	}
	meta, err := p.Practice.Encode()
	if err != nil {
		return nil, err
	}

	return &problemRow{
		ID:           p.ID,
		UserID:       p.UserID,
		Name:         p.Name,
		Difficulty:   string(p.Difficulty),
		Tags:         string(tags),
		URL:          p.URL,
		DateSolved:   p.DateSolved.Format(entities.DateLayout),
		Notes:        p.Notes,
		PracticeMeta: string(meta),
		CreatedTs:    toTs(p.CreatedAt),
		UpdatedTs:    toTs(p.UpdatedAt),
	}, nil
}

func (r *problemRow) toEntity() (*entities.Problem, error) {
	p := &entities.Problem{
		ID:         r.ID,
		UserID:     r.UserID,
		Name:       r.Name,
		Difficulty: entities.Difficulty(r.Difficulty),
		URL:        r.URL,
		Notes:      r.Notes,
		CreatedAt:  fromTs(r.CreatedTs),
		UpdatedAt:  fromTs(r.UpdatedTs),
	}

	if err := json.Unmarshal([]byte(r.Tags), &p.Tags); err != nil {
		return nil, errors.Wrapf(err, "problem %s: failed to decode tags", r.ID)
	}

	solved, err := time.Parse(entities.DateLayout, r.DateSolved)
	if err != nil {
		return nil, errors.Wrapf(err, "problem %s: failed to parse date_solved", r.ID)
	}
	p.DateSolved = solved

	meta, err := entities.DecodePracticeMeta([]byte(r.PracticeMeta))
	if err != nil {
		return nil, errors.Wrapf(err, "problem %s", r.ID)
	}
	p.Practice = meta

	return p, nil
}

type ProblemStore struct {
	db sqlx.ExtContext
}

func NewProblemStore(db sqlx.ExtContext) *ProblemStore {
	return &ProblemStore{db: db}
}

func (s *ProblemStore) Create(ctx context.Context, p *entities.Problem) error {
	row, err := newProblemRow(p)
	if err != nil {
		return err
	}

	stmt := `INSERT INTO problems (` + problemColumns + `)
		VALUES (:id, :user_id, :name, :difficulty, :tags, :url, :date_solved, :notes,
			:practice_meta, :created_ts, :updated_ts)`
	if _, err := sqlx.NamedExecContext(ctx, s.db, stmt, row); err != nil {
		return errors.Wrap(err, "failed to create problem")
	}
	return nil
}

func (s *ProblemStore) GetByID(ctx context.Context, userID int64, id string) (*entities.Problem, error) {
	var row problemRow
	query := `SELECT ` + problemColumns + ` FROM problems WHERE id = ? AND user_id = ?`
	if err := sqlx.GetContext(ctx, s.db, &row, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrProblemNotFound
		}
		return nil, errors.Wrap(err, "failed to get problem")
	}
	return row.toEntity()
}

// GetForUpdate is GetByID: the single connection already serializes writers.
func (s *ProblemStore) GetForUpdate(ctx context.Context, userID int64, id string) (*entities.Problem, error) {
	return s.GetByID(ctx, userID, id)
}

func (s *ProblemStore) List(ctx context.Context, userID int64, filter entities.ProblemFilter) ([]*entities.Problem, error) {
	where, args := []string{"user_id = ?"}, []any{userID}
	if filter.Difficulty != "" {
		where, args = append(where, "difficulty = ?"), append(args, string(filter.Difficulty))
	}
	if filter.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(problems.tags) WHERE json_each.value = ?)")
		args = append(args, strings.ToLower(filter.Tag))
	}

	query := `SELECT ` + problemColumns + ` FROM problems
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY date_solved DESC, created_ts DESC`
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	var rows []problemRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list problems")
	}

	problems := make([]*entities.Problem, 0, len(rows))
	for i := range rows {
		p, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		problems = append(problems, p)
	}
	return problems, nil
}

func (s *ProblemStore) Update(ctx context.Context, p *entities.Problem) error {
	row, err := newProblemRow(p)
	if err != nil {
		return err
	}

	stmt := `UPDATE problems
		SET name = :name, difficulty = :difficulty, tags = :tags, url = :url,
			date_solved = :date_solved, notes = :notes, updated_ts = :updated_ts
		WHERE id = :id AND user_id = :user_id`
	res, err := sqlx.NamedExecContext(ctx, s.db, stmt, row)
	if err != nil {
		return errors.Wrap(err, "failed to update problem")
	}
	return affectedOrNotFound(res, entities.ErrProblemNotFound)
}

func (s *ProblemStore) UpdatePracticeMeta(ctx context.Context, p *entities.Problem) error {
	meta, err := p.Practice.Encode()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE problems SET practice_meta = ?, updated_ts = ? WHERE id = ? AND user_id = ?`,
		string(meta), toTs(p.UpdatedAt), p.ID, p.UserID,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update practice meta")
	}
	return affectedOrNotFound(res, entities.ErrProblemNotFound)
}

func (s *ProblemStore) Delete(ctx context.Context, userID int64, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM problems WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return errors.Wrap(err, "failed to delete problem")
	}
	return affectedOrNotFound(res, entities.ErrProblemNotFound)
}

func affectedOrNotFound(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}
