package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-nft/pkg/nft/data/edition"
)

func RunTests(t *testing.T, s edition.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s edition.Store){
		testHappyPath,
		testUniqueness,
		testGetAllByMaster,
		testBurning,
		testValidation,
	} {
		tf(t, s)
		teardown()
	}
}

func newRecord(master string, number uint64) *edition.Record {
	return &edition.Record{
		Mint:       fmt.Sprintf("%s-edition-%d", master, number),
		MasterMint: master,
		Edition:    number,
		Owner:      "owner",
		Signature:  fmt.Sprintf("signature-%s-%d", master, number),
		State:      edition.StateActive,
	}
}

func testHappyPath(t *testing.T, s edition.Store) {
	t.Run("testHappyPath", func(t *testing.T) {
		ctx := context.Background()
		start := time.Now()

		record := newRecord("master", 7)
		cloned := record.Clone()

		_, err := s.Get(ctx, record.Mint)
		assert.Equal(t, edition.ErrNotFound, err)

		count, err := s.CountByMaster(ctx, record.MasterMint)
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)

		require.NoError(t, s.Put(ctx, record))
		assert.True(t, record.Id > 0)
		assert.False(t, record.CreatedAt.IsZero())

		actual, err := s.Get(ctx, record.Mint)
		require.NoError(t, err)
		assert.Equal(t, record.Id, actual.Id)
		assert.False(t, actual.CreatedAt.Before(start.Add(-time.Second)))
		assertEquivalentRecords(t, &cloned, actual)

		count, err = s.CountByMaster(ctx, record.MasterMint)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})
}

func testUniqueness(t *testing.T, s edition.Store) {
	t.Run("testUniqueness", func(t *testing.T) {
		ctx := context.Background()

		record := newRecord("master", 1)
		require.NoError(t, s.Put(ctx, record))

		sameMint := newRecord("other-master", 1)
		sameMint.Mint = record.Mint
		assert.Equal(t, edition.ErrAlreadyExists, s.Put(ctx, sameMint))

		sameNumber := newRecord("master", 1)
		sameNumber.Mint = "a-different-mint"
		assert.Equal(t, edition.ErrAlreadyExists, s.Put(ctx, sameNumber))

		// The same number under another master is a different edition.
		require.NoError(t, s.Put(ctx, newRecord("other-master", 1)))

		count, err := s.CountByMaster(ctx, "master")
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})
}

func testGetAllByMaster(t *testing.T, s edition.Store) {
	t.Run("testGetAllByMaster", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetAllByMaster(ctx, "master")
		assert.Equal(t, edition.ErrNotFound, err)

		for _, number := range []uint64{248, 1, 247, 3} {
			require.NoError(t, s.Put(ctx, newRecord("master", number)))
		}
		require.NoError(t, s.Put(ctx, newRecord("other-master", 2)))

		actual, err := s.GetAllByMaster(ctx, "master")
		require.NoError(t, err)
		require.Len(t, actual, 4)
		for i, number := range []uint64{1, 3, 247, 248} {
			assert.Equal(t, number, actual[i].Edition)
			assert.Equal(t, "master", actual[i].MasterMint)
		}

		count, err := s.CountByMaster(ctx, "master")
		require.NoError(t, err)
		assert.EqualValues(t, 4, count)
	})
}

func testBurning(t *testing.T, s edition.Store) {
	t.Run("testBurning", func(t *testing.T) {
		ctx := context.Background()

		record := newRecord("master", 2)
		assert.Equal(t, edition.ErrNotFound, s.MarkBurned(ctx, record.Mint))

		require.NoError(t, s.Put(ctx, record))
		require.NoError(t, s.MarkBurned(ctx, record.Mint))
		require.NoError(t, s.MarkBurned(ctx, record.Mint))

		actual, err := s.Get(ctx, record.Mint)
		require.NoError(t, err)
		assert.Equal(t, edition.StateBurned, actual.State)

		// Burned editions still count against the master.
		count, err := s.CountByMaster(ctx, record.MasterMint)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		assert.Equal(t, edition.ErrAlreadyExists, s.Put(ctx, newRecord("master", 2)))
	})
}

func testValidation(t *testing.T, s edition.Store) {
	t.Run("testValidation", func(t *testing.T) {
		ctx := context.Background()

		for _, mutate := range []func(r *edition.Record){
			func(r *edition.Record) { r.Mint = "" },
			func(r *edition.Record) { r.MasterMint = "" },
			func(r *edition.Record) { r.MasterMint = r.Mint },
			func(r *edition.Record) { r.Edition = 0 },
			func(r *edition.Record) { r.Owner = "" },
			func(r *edition.Record) { r.Signature = "" },
			func(r *edition.Record) { r.State = edition.StateUnknown },
		} {
			record := newRecord("master", 1)
			mutate(record)
			assert.Error(t, s.Put(ctx, record))
		}

		count, err := s.CountByMaster(ctx, "master")
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)
	})
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *edition.Record) {
	assert.Equal(t, obj1.Mint, obj2.Mint)
	assert.Equal(t, obj1.MasterMint, obj2.MasterMint)
	assert.Equal(t, obj1.Edition, obj2.Edition)
	assert.Equal(t, obj1.Owner, obj2.Owner)
	assert.Equal(t, obj1.Signature, obj2.Signature)
	assert.Equal(t, obj1.State, obj2.State)
}
