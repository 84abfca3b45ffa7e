package postgres

import (
	"database/sql"
	"os"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-nft/pkg/nft/data/edition"
	"github.com/code-payments/code-nft/pkg/nft/data/edition/tests"

	postgrestest "github.com/code-payments/code-nft/pkg/database/postgres/test"

	_ "github.com/jackc/pgx/v4/stdlib"
)

// The production schema is managed by migrations outside this repository.
const schema = `
	CREATE TABLE IF NOT EXISTS nft__core_printedition (
		id SERIAL NOT NULL PRIMARY KEY,

		mint TEXT NOT NULL UNIQUE,
		master_mint TEXT NOT NULL,
		edition_number BIGINT NOT NULL CHECK (edition_number > 0),

		owner TEXT NOT NULL,
		signature TEXT NOT NULL,
		state INTEGER NOT NULL,

		created_at TIMESTAMP WITH TIME ZONE NOT NULL,

		CONSTRAINT nft__core_printedition__uniq__master__and__edition UNIQUE (master_mint, edition_number)
	);
`

var (
	testStore edition.Store
	teardown  func()
)

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

// run owns the container for the lifetime of the package's tests, so the
// deferred cleanup happens before the process exits.
func run(m *testing.M) int {
	log := logrus.StandardLogger().WithField("type", "edition/postgres/test")

	pool, err := dockertest.NewPool("")
	if err != nil {
		log.WithError(err).Error("failure creating docker pool")
		return 1
	}

	db, cleanup, err := postgrestest.StartPostgresDB(pool)
	if err != nil {
		log.WithError(err).Error("failure starting postgres container")
		return 1
	}
	defer cleanup()
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		log.WithError(err).Error("failure creating schema")
		return 1
	}

	testStore = New(db)
	teardown = func() {
		if err := truncate(db); err != nil {
			log.WithError(err).Fatal("failure truncating tables")
		}
	}

	return m.Run()
}

func truncate(db *sql.DB) error {
	_, err := db.Exec(`TRUNCATE TABLE nft__core_printedition RESTART IDENTITY`)
	return errors.Wrap(err, "truncate nft__core_printedition")
}

func TestEditionPostgresStore(t *testing.T) {
	tests.RunTests(t, testStore, teardown)
}
