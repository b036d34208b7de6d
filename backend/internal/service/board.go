package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/itchan-dev/nanashi/shared/config"
	"github.com/itchan-dev/nanashi/shared/domain"
	internal_errors "github.com/itchan-dev/nanashi/shared/errors"
	"github.com/itchan-dev/nanashi/shared/logger"
)

const (
	maxBoardNameLength = 64
	maxRulesLength     = 8192
)

type BoardStorage interface {
	CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateBoard(ctx context.Context, data domain.BoardCreationData) (domain.Board, error)
	GetBoard(ctx context.Context, id domain.BoardId) (domain.Board, error)
	ListBoards(ctx context.Context) ([]domain.Board, error)
}

type Board struct {
	storage BoardStorage
	cfg     config.Bbs
}

func NewBoard(storage BoardStorage, cfg config.Bbs) *Board {
	return &Board{storage: storage, cfg: cfg}
}

func (b *Board) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := validateBoardName(c.Name); err != nil {
		return domain.Category{}, err
	}
	if c.Id < 0 {
		return domain.Category{}, internal_errors.Validation("category id must be positive")
	}
	c, err := b.storage.CreateCategory(ctx, c)
	if err != nil {
		return domain.Category{}, err
	}
	logger.FromContext(ctx).Info("category created", "category", c.Id, "name", c.Name)
	return c, nil
}

func (b *Board) CreateBoard(ctx context.Context, data domain.BoardCreationData) (domain.Board, error) {
	data.Name = strings.TrimSpace(data.Name)
	data.DefaultName = strings.TrimSpace(data.DefaultName)
	if err := validateBoardName(data.Name); err != nil {
		return domain.Board{}, err
	}
	if data.Id < 0 {
		return domain.Board{}, internal_errors.Validation("board id must be positive")
	}
	if utf8.RuneCountInString(data.Rules) > maxRulesLength {
		return domain.Board{}, internal_errors.Validation("rules are too long")
	}
	if data.DefaultName == "" {
		data.DefaultName = b.cfg.DefaultBoard.DefaultName
	}
	if utf8.RuneCountInString(data.DefaultName) > b.cfg.MaxNameLength {
		return domain.Board{}, internal_errors.Validation("default name is too long")
	}

	board, err := b.storage.CreateBoard(ctx, data)
	if err != nil {
		return domain.Board{}, err
	}
	logger.FromContext(ctx).Info("board created", "board", board.Id, "category", board.CategoryId, "name", board.Name)
	return board, nil
}

func (b *Board) GetBoard(ctx context.Context, id domain.BoardId) (domain.Board, error) {
	return b.storage.GetBoard(ctx, id)
}

func (b *Board) ListBoards(ctx context.Context) ([]domain.Category, []domain.Board, error) {
	categories, err := b.storage.ListCategories(ctx)
	if err != nil {
		return nil, nil, err
	}
	boards, err := b.storage.ListBoards(ctx)
	if err != nil {
		return nil, nil, err
	}
	return categories, boards, nil
}

func validateBoardName(name string) error {
	if name == "" {
		return internal_errors.Validation("name is required")
	}
	if utf8.RuneCountInString(name) > maxBoardNameLength {
		return internal_errors.Validation("name is too long")
	}
	return nil
}
