package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/code-nft/pkg/nft/data/edition"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres-backed edition.Store
func New(db *sql.DB) edition.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Put implements edition.Store.Put
func (s *store) Put(ctx context.Context, record *edition.Record) error {
	obj, err := toModel(record)
	if err != nil {
		return err
	}

	if err := obj.dbPut(ctx, s.db); err != nil {
		return err
	}

	fromModel(obj).CopyTo(record)
	return nil
}

// Get implements edition.Store.Get
func (s *store) Get(ctx context.Context, mint string) (*edition.Record, error) {
	model, err := dbGetByMint(ctx, s.db, mint)
	if err != nil {
		return nil, err
	}
	return fromModel(model), nil
}

// GetAllByMaster implements edition.Store.GetAllByMaster
func (s *store) GetAllByMaster(ctx context.Context, masterMint string) ([]*edition.Record, error) {
	models, err := dbGetAllByMaster(ctx, s.db, masterMint)
	if err != nil {
		return nil, err
	}

	res := make([]*edition.Record, len(models))
	for i, model := range models {
		res[i] = fromModel(model)
	}
	return res, nil
}

// MarkBurned implements edition.Store.MarkBurned
func (s *store) MarkBurned(ctx context.Context, mint string) error {
	return dbMarkBurned(ctx, s.db, mint)
}

// CountByMaster implements edition.Store.CountByMaster
func (s *store) CountByMaster(ctx context.Context, masterMint string) (uint64, error) {
	return dbCountByMaster(ctx, s.db, masterMint)
}
