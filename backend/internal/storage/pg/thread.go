package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/itchan-dev/nanashi/shared/domain"
	internal_errors "github.com/itchan-dev/nanashi/shared/errors"
)

const threadColumns = `t.id, t.board_id, t.title, t.res_count, t.is_full, t.created_at, t.bumped_at`

const responseColumns = `r.id, r.thread_id, r.res_number, r.name, r.tripcode, r.email, r.body, r.ip_address, r.poster_id, r.created_at`

type scanner interface {
	Scan(dest ...any) error
}

func threadDest(t *domain.Thread) []any {
	return []any{&t.Id, &t.BoardId, &t.Title, &t.ResCount, &t.IsFull, &t.CreatedAt, &t.BumpedAt}
}

func responseDest(r *domain.Response) []any {
	return []any{&r.Id, &r.ThreadId, &r.ResNumber, &r.Name, &r.Tripcode, &r.Email, &r.Body, &r.IpAddress, &r.PosterId, &r.CreatedAt}
}

func normalizeThread(t *domain.Thread) {
	t.CreatedAt = t.CreatedAt.UTC()
	t.BumpedAt = t.BumpedAt.UTC()
}

func scanResponse(row scanner) (domain.Response, error) {
	var r domain.Response
	if err := row.Scan(responseDest(&r)...); err != nil {
		return domain.Response{}, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}

func (s *Storage) CreateThread(ctx context.Context, nt domain.NewThread) (domain.Thread, domain.Response, error) {
	if nt.First.ResNumber != 1 || nt.Thread.ResCount != 1 {
		return domain.Thread{}, domain.Response{}, fmt.Errorf("%w: new thread must start at response 1", internal_errors.ErrStorage)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Thread{}, domain.Response{}, wrap("begin transaction", err)
	}
	defer tx.Rollback()

	thread := nt.Thread
	err = tx.QueryRowContext(ctx, `
		INSERT INTO threads (board_id, title, res_count, is_full, created_at, bumped_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		thread.BoardId, thread.Title, thread.ResCount, thread.IsFull, thread.CreatedAt, thread.BumpedAt,
	).Scan(&thread.Id)
	if err != nil {
		if pqCode(err) == foreignKeyViolation {
			return domain.Thread{}, domain.Response{}, internal_errors.NotFound("board")
		}
		return domain.Thread{}, domain.Response{}, wrap("insert thread", err)
	}

	first := nt.First
	first.ThreadId = thread.Id
	if first.Id, err = insertResponse(ctx, tx, first); err != nil {
		return domain.Thread{}, domain.Response{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Thread{}, domain.Response{}, wrap("commit transaction", err)
	}
	return thread, first, nil
}

func insertResponse(ctx context.Context, tx *sql.Tx, r domain.Response) (domain.ResponseId, error) {
	var id domain.ResponseId
	err := tx.QueryRowContext(ctx, `
		INSERT INTO responses (thread_id, res_number, name, tripcode, email, body, ip_address, poster_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		r.ThreadId, r.ResNumber, r.Name, r.Tripcode, r.Email, r.Body, r.IpAddress, r.PosterId, r.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, wrap("insert response", err)
	}
	return id, nil
}

// AppendResponse locks the thread row, hands its state to apply and writes
// the new response and thread state in the same transaction.
func (s *Storage) AppendResponse(ctx context.Context, id domain.ThreadId, apply domain.AppendFunc) (domain.Thread, domain.Response, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Thread{}, domain.Response{}, wrap("begin transaction", err)
	}
	defer tx.Rollback()

	var current domain.Thread
	err = tx.QueryRowContext(ctx,
		`SELECT `+threadColumns+` FROM threads t WHERE t.id = $1 FOR UPDATE`, id,
	).Scan(threadDest(&current)...)
	if err != nil {
		if isNoRows(err) {
			return domain.Thread{}, domain.Response{}, internal_errors.NotFound("thread")
		}
		return domain.Thread{}, domain.Response{}, wrap("lock thread", err)
	}
	normalizeThread(&current)

	next, res, err := apply(current)
	if err != nil {
		return domain.Thread{}, domain.Response{}, err
	}
	if res.ResNumber != current.ResCount+1 || next.ResCount != res.ResNumber || next.Id != current.Id {
		return domain.Thread{}, domain.Response{}, fmt.Errorf("%w: response %d does not follow %d", internal_errors.ErrStorage, res.ResNumber, current.ResCount)
	}

	res.ThreadId = id
	if res.Id, err = insertResponse(ctx, tx, res); err != nil {
		return domain.Thread{}, domain.Response{}, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE threads SET res_count = $2, is_full = $3, bumped_at = $4
		WHERE id = $1`,
		id, next.ResCount, next.IsFull, next.BumpedAt,
	); err != nil {
		return domain.Thread{}, domain.Response{}, wrap("update thread", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Thread{}, domain.Response{}, wrap("commit transaction", err)
	}
	return next, res, nil
}

func (s *Storage) GetThreadMetadata(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	var t domain.Thread
	err := s.db.QueryRowContext(ctx, `SELECT `+threadColumns+` FROM threads t WHERE t.id = $1`, id).Scan(threadDest(&t)...)
	if err != nil {
		if isNoRows(err) {
			return domain.Thread{}, internal_errors.NotFound("thread")
		}
		return domain.Thread{}, wrap("get thread", err)
	}
	normalizeThread(&t)
	return t, nil
}

func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (domain.ThreadDetail, error) {
	// one snapshot for metadata and responses
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return domain.ThreadDetail{}, wrap("begin transaction", err)
	}
	defer tx.Rollback()

	var detail domain.ThreadDetail
	dest := append(threadDest(&detail.Thread),
		&detail.Board.Id, &detail.Board.CategoryId, &detail.Board.Name,
		&detail.Board.DefaultName, &detail.Board.Rules, &detail.Board.CreatedAt)
	err = tx.QueryRowContext(ctx, `
		SELECT `+threadColumns+`, b.id, b.category_id, b.name, b.default_name, b.rules, b.created_at
		FROM threads t JOIN boards b ON b.id = t.board_id
		WHERE t.id = $1`, id,
	).Scan(dest...)
	if err != nil {
		if isNoRows(err) {
			return domain.ThreadDetail{}, internal_errors.NotFound("thread")
		}
		return domain.ThreadDetail{}, wrap("get thread", err)
	}
	normalizeThread(&detail.Thread)
	detail.Board.CreatedAt = detail.Board.CreatedAt.UTC()

	rows, err := tx.QueryContext(ctx,
		`SELECT `+responseColumns+` FROM responses r WHERE r.thread_id = $1 ORDER BY r.res_number`, id)
	if err != nil {
		return domain.ThreadDetail{}, wrap("list responses", err)
	}
	defer rows.Close()

	detail.Responses = make([]domain.Response, 0, detail.ResCount)
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return domain.ThreadDetail{}, wrap("scan response", err)
		}
		detail.Responses = append(detail.Responses, r)
	}
	if err := rows.Err(); err != nil {
		return domain.ThreadDetail{}, wrap("list responses", err)
	}
	return detail, nil
}

func (s *Storage) ListThreads(ctx context.Context, filter domain.ThreadFilter) ([]domain.ThreadPreview, error) {
	order := "t.bumped_at DESC, t.id DESC"
	if filter.Sort == domain.SortCreated {
		order = "t.created_at DESC, t.id DESC"
	}
	limit := any(nil) // LIMIT NULL is no limit
	if filter.Limit > 0 {
		limit = filter.Limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+threadColumns+`,
			b.id, b.category_id, b.name, b.default_name, b.rules, b.created_at,
			`+responseColumns+`
		FROM threads t
		JOIN boards b ON b.id = t.board_id
		JOIN responses r ON r.thread_id = t.id AND r.res_number = 1
		WHERE ($1::BIGINT IS NULL OR t.board_id = $1)
		ORDER BY `+order+`
		LIMIT $2 OFFSET $3`,
		filter.BoardId, limit, filter.Offset,
	)
	if err != nil {
		return nil, wrap("list threads", err)
	}
	defer rows.Close()

	previews := []domain.ThreadPreview{}
	for rows.Next() {
		var p domain.ThreadPreview
		dest := threadDest(&p.Thread)
		dest = append(dest, &p.Board.Id, &p.Board.CategoryId, &p.Board.Name, &p.Board.DefaultName, &p.Board.Rules, &p.Board.CreatedAt)
		dest = append(dest, responseDest(&p.First)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, wrap("scan thread", err)
		}
		normalizeThread(&p.Thread)
		p.Board.CreatedAt = p.Board.CreatedAt.UTC()
		p.First.CreatedAt = p.First.CreatedAt.UTC()
		previews = append(previews, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list threads", err)
	}
	return previews, nil
}
