package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/itchan-dev/nanashi/shared/domain"
	internal_errors "github.com/itchan-dev/nanashi/shared/errors"
)

func (s *Storage) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Category{}, wrap("begin transaction", err)
	}
	defer tx.Rollback()

	c, err = createCategory(ctx, tx, c)
	if err != nil {
		return domain.Category{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Category{}, wrap("commit transaction", err)
	}
	return c, nil
}

func createCategory(ctx context.Context, tx *sql.Tx, c domain.Category) (domain.Category, error) {
	var err error
	if c.Id == 0 {
		err = tx.QueryRowContext(ctx,
			`INSERT INTO categories (name) VALUES ($1) RETURNING id`,
			c.Name,
		).Scan(&c.Id)
	} else {
		_, err = tx.ExecContext(ctx, `INSERT INTO categories (id, name) VALUES ($1, $2)`, c.Id, c.Name)
		if err == nil {
			err = syncIdentity(ctx, tx, "categories")
		}
	}
	if err != nil {
		if pqCode(err) == uniqueViolation {
			return domain.Category{}, internal_errors.Conflict("category")
		}
		return domain.Category{}, wrap("insert category", err)
	}
	return c, nil
}

func (s *Storage) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.Id, &c.Name); err != nil {
			return nil, wrap("scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list categories", err)
	}
	return categories, nil
}

func (s *Storage) CreateBoard(ctx context.Context, data domain.BoardCreationData) (domain.Board, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Board{}, wrap("begin transaction", err)
	}
	defer tx.Rollback()

	board, err := createBoard(ctx, tx, data)
	if err != nil {
		return domain.Board{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Board{}, wrap("commit transaction", err)
	}
	return board, nil
}

func createBoard(ctx context.Context, tx *sql.Tx, data domain.BoardCreationData) (domain.Board, error) {
	b := domain.Board{
		Id:          data.Id,
		CategoryId:  data.CategoryId,
		Name:        data.Name,
		DefaultName: data.DefaultName,
		Rules:       data.Rules,
	}

	var err error
	if data.Id == 0 {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO boards (category_id, name, default_name, rules)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`,
			data.CategoryId, data.Name, data.DefaultName, data.Rules,
		).Scan(&b.Id, &b.CreatedAt)
	} else {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO boards (id, category_id, name, default_name, rules)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at`,
			data.Id, data.CategoryId, data.Name, data.DefaultName, data.Rules,
		).Scan(&b.CreatedAt)
		if err == nil {
			err = syncIdentity(ctx, tx, "boards")
		}
	}
	if err != nil {
		switch pqCode(err) {
		case uniqueViolation:
			return domain.Board{}, internal_errors.Conflict("board")
		case foreignKeyViolation:
			return domain.Board{}, internal_errors.NotFound("category")
		}
		return domain.Board{}, wrap("insert board", err)
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}

// syncIdentity moves the table's identity past explicitly inserted ids so
// later generated ids don't collide with them.
func syncIdentity(ctx context.Context, tx *sql.Tx, table string) error {
	_, err := tx.ExecContext(ctx, fmt.Sprintf(
		`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), (SELECT MAX(id) FROM %[1]s))`, table))
	return err
}

// EnsureDefaultBoard creates the category and board unless they exist. Safe
// to race: conflicting inserts are ignored and the stored row is returned.
func (s *Storage) EnsureDefaultBoard(ctx context.Context, data domain.DefaultBoardData) (domain.Board, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Board{}, wrap("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO categories (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		data.Category.Id, data.Category.Name,
	); err != nil {
		return domain.Board{}, wrap("ensure category", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO boards (id, category_id, name, default_name, rules)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		data.Board.Id, data.Board.CategoryId, data.Board.Name, data.Board.DefaultName, data.Board.Rules,
	); err != nil {
		return domain.Board{}, wrap("ensure board", err)
	}
	for _, table := range []string{"categories", "boards"} {
		if err := syncIdentity(ctx, tx, table); err != nil {
			return domain.Board{}, wrap("sync identity", err)
		}
	}

	board, err := getBoard(ctx, tx, data.Board.Id)
	if err != nil {
		return domain.Board{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Board{}, wrap("commit transaction", err)
	}
	return board, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const boardColumns = `id, category_id, name, default_name, rules, created_at`

func scanBoard(row interface{ Scan(...any) error }) (domain.Board, error) {
	var b domain.Board
	err := row.Scan(&b.Id, &b.CategoryId, &b.Name, &b.DefaultName, &b.Rules, &b.CreatedAt)
	b.CreatedAt = b.CreatedAt.UTC()
	return b, err
}

func getBoard(ctx context.Context, q queryRower, id domain.BoardId) (domain.Board, error) {
	b, err := scanBoard(q.QueryRowContext(ctx, `SELECT `+boardColumns+` FROM boards WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return domain.Board{}, internal_errors.NotFound("board")
		}
		return domain.Board{}, wrap("get board", err)
	}
	return b, nil
}

func (s *Storage) GetBoard(ctx context.Context, id domain.BoardId) (domain.Board, error) {
	return getBoard(ctx, s.db, id)
}

func (s *Storage) ListBoards(ctx context.Context) ([]domain.Board, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+boardColumns+` FROM boards ORDER BY id`)
	if err != nil {
		return nil, wrap("list boards", err)
	}
	defer rows.Close()

	boards := []domain.Board{}
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, wrap("scan board", err)
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list boards", err)
	}
	return boards, nil
}
