package tokenmetadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditionMarker_Position(t *testing.T) {
	for _, tc := range []struct {
		edition    uint64
		index      uint64
		bit        uint64
		byteOffset int
		mask       byte
	}{
		{0, 0, 0, 0, 0x80},
		{1, 0, 1, 0, 0x40},
		{7, 0, 7, 0, 0x01},
		{8, 0, 8, 1, 0x80},
		{247, 0, 247, 30, 0x01},
		{248, 1, 0, 0, 0x80},
		{249, 1, 1, 0, 0x40},
		{495, 1, 247, 30, 0x01},
		{496, 2, 0, 0, 0x80},
	} {
		assert.Equal(t, tc.index, GetEditionMarkerIndex(tc.edition), "edition %d", tc.edition)
		assert.Equal(t, tc.bit, GetEditionMarkerBit(tc.edition), "edition %d", tc.edition)

		byteOffset, mask := getEditionMarkerOffset(tc.edition)
		assert.Equal(t, tc.byteOffset, byteOffset, "edition %d", tc.edition)
		assert.Equal(t, tc.mask, mask, "edition %d", tc.edition)
	}
}

func TestEditionMarker_DistinctBits(t *testing.T) {
	// Within one block, every edition maps to its own bit
	var marker EditionMarkerAccount
	for edition := uint64(0); edition < EditionMarkerBitSize; edition++ {
		require.False(t, marker.IsEditionSet(edition), "edition %d", edition)
		marker.SetEdition(edition)
		require.True(t, marker.IsEditionSet(edition), "edition %d", edition)
	}
	for _, b := range marker.Ledger {
		assert.EqualValues(t, 0xff, b)
	}

	// Editions in a different block share bit positions, but not marker accounts
	var other EditionMarkerAccount
	other.SetEdition(248)
	assert.True(t, other.IsEditionSet(0))
	assert.NotEqual(t, GetEditionMarkerIndex(0), GetEditionMarkerIndex(248))
}

func TestEditionMarker_GetEditions(t *testing.T) {
	var marker EditionMarkerAccount
	assert.Empty(t, marker.GetEditions(0))

	for _, edition := range []uint64{250, 260, 495} {
		marker.SetEdition(edition)
	}
	assert.Equal(t, []uint64{250, 260, 495}, marker.GetEditions(1))
}

func TestEditionMarker_RoundTrip(t *testing.T) {
	var marker EditionMarkerAccount
	marker.SetEdition(1)
	marker.SetEdition(247)

	data := marker.Marshal()
	require.Len(t, data, EditionMarkerAccountSize)
	assert.EqualValues(t, KeyEditionMarker, data[0])
	assert.EqualValues(t, 0x40, data[1])
	assert.EqualValues(t, 0x01, data[31])

	var actual EditionMarkerAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, marker, actual)

	data[0] = byte(KeyEditionV1)
	assert.Equal(t, ErrInvalidAccountData, actual.Unmarshal(data))
	assert.Equal(t, ErrInvalidAccountData, actual.Unmarshal(data[:10]))
}

func TestPrintEdition_LimitedSupply(t *testing.T) {
	maxSupply := uint64(3)
	master := &MasterEditionAccount{MaxSupply: &maxSupply}
	marker := &EditionMarkerAccount{}

	for edition := uint64(1); edition <= 3; edition++ {
		require.NoError(t, PrintEdition(master, marker, edition))
		assert.Equal(t, edition, master.Supply)
	}
	assert.True(t, master.IsExhausted())

	assert.Equal(t, ErrorMaxEditionsMintedAlready, PrintEdition(master, marker, 4))
	assert.EqualValues(t, 3, master.Supply)
	assert.False(t, marker.IsEditionSet(4))

	// A set bit is reported before the exhausted supply
	assert.Equal(t, ErrorEditionAlreadyMinted, PrintEdition(master, marker, 2))
	assert.EqualValues(t, 3, master.Supply)
}

func TestPrintEdition_AlreadyMinted(t *testing.T) {
	master := &MasterEditionAccount{}
	marker := &EditionMarkerAccount{}

	require.NoError(t, PrintEdition(master, marker, 7))

	before := *marker
	assert.Equal(t, ErrorEditionAlreadyMinted, PrintEdition(master, marker, 7))
	assert.EqualValues(t, 1, master.Supply)
	assert.Equal(t, before, *marker)
}

func TestPrintEdition_EditionAboveMaxSupply(t *testing.T) {
	maxSupply := uint64(10)
	master := &MasterEditionAccount{MaxSupply: &maxSupply}
	marker := &EditionMarkerAccount{}

	assert.Equal(t, ErrorMaxEditionsMintedAlready, PrintEdition(master, marker, 11))
	assert.EqualValues(t, 0, master.Supply)
	require.NoError(t, PrintEdition(master, marker, 10))
}

func TestPrintEdition_UnlimitedSupply(t *testing.T) {
	master := &MasterEditionAccount{}
	markers := make(map[uint64]*EditionMarkerAccount)

	for _, edition := range []uint64{1, 247, 248, 10_000, 1 << 40} {
		index := GetEditionMarkerIndex(edition)
		marker, ok := markers[index]
		if !ok {
			marker = &EditionMarkerAccount{}
			markers[index] = marker
		}
		require.NoError(t, PrintEdition(master, marker, edition))
	}
	assert.EqualValues(t, 5, master.Supply)
	assert.Len(t, markers, 4)
	assert.False(t, master.IsExhausted())
}

func TestPrintEdition_ZeroEdition(t *testing.T) {
	master := &MasterEditionAccount{}
	marker := &EditionMarkerAccount{}

	assert.Equal(t, ErrInvalidEditionNumber, PrintEdition(master, marker, 0))
	assert.EqualValues(t, 0, master.Supply)
	assert.False(t, marker.IsEditionSet(0))
}
