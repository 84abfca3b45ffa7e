package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	pgutil "github.com/code-payments/code-nft/pkg/database/postgres"
	"github.com/code-payments/code-nft/pkg/nft/data/edition"
)

const (
	tableName = "nft__core_printedition"

	allColumns = `id, mint, master_mint, edition_number, owner, signature, state, created_at`
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Mint       string `db:"mint"`
	MasterMint string `db:"master_mint"`
	Edition    int64  `db:"edition_number"`

	Owner     string `db:"owner"`
	Signature string `db:"signature"`

	State uint8 `db:"state"`

	CreatedAt time.Time `db:"created_at"`
}

func toModel(obj *edition.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	return &model{
		Mint:       obj.Mint,
		MasterMint: obj.MasterMint,
		Edition:    int64(obj.Edition),

		Owner:     obj.Owner,
		Signature: obj.Signature,

		State: uint8(obj.State),

		CreatedAt: obj.CreatedAt,
	}, nil
}

func fromModel(obj *model) *edition.Record {
	return &edition.Record{
		Id: uint64(obj.Id.Int64),

		Mint:       obj.Mint,
		MasterMint: obj.MasterMint,
		Edition:    uint64(obj.Edition),

		Owner:     obj.Owner,
		Signature: obj.Signature,

		State: edition.State(obj.State),

		CreatedAt: obj.CreatedAt,
	}
}

func (m *model) dbPut(ctx context.Context, db *sqlx.DB) error {
	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + tableName + `
			(mint, master_mint, edition_number, owner, signature, state, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING ` + allColumns

		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}

		return tx.QueryRowxContext(
			ctx,
			query,
			m.Mint,
			m.MasterMint,
			m.Edition,
			m.Owner,
			m.Signature,
			m.State,
			m.CreatedAt,
		).StructScan(m)
	})
	return pgutil.CheckUniqueViolation(err, edition.ErrAlreadyExists)
}

func dbGetByMint(ctx context.Context, db *sqlx.DB, mint string) (*model, error) {
	var res model
	query := `SELECT ` + allColumns + ` FROM ` + tableName + `
		WHERE mint = $1
	`

	err := db.GetContext(ctx, &res, query, mint)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, edition.ErrNotFound)
	}
	return &res, nil
}

func dbGetAllByMaster(ctx context.Context, db *sqlx.DB, masterMint string) ([]*model, error) {
	res := []*model{}
	query := `SELECT ` + allColumns + ` FROM ` + tableName + `
		WHERE master_mint = $1
		ORDER BY edition_number ASC
	`

	err := db.SelectContext(ctx, &res, query, masterMint)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, edition.ErrNotFound)
	} else if len(res) == 0 {
		return nil, edition.ErrNotFound
	}
	return res, nil
}

func dbMarkBurned(ctx context.Context, db *sqlx.DB, mint string) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `UPDATE ` + tableName + `
			SET state = $2
			WHERE mint = $1
		`

		res, err := tx.ExecContext(ctx, query, mint, edition.StateBurned)
		if err != nil {
			return err
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return err
		} else if rows == 0 {
			return edition.ErrNotFound
		}
		return nil
	})
}

func dbCountByMaster(ctx context.Context, db *sqlx.DB, masterMint string) (uint64, error) {
	var res uint64
	query := `SELECT COUNT(*) FROM ` + tableName + `
		WHERE master_mint = $1
	`

	err := db.GetContext(ctx, &res, query, masterMint)
	if err != nil {
		return 0, err
	}
	return res, nil
}
