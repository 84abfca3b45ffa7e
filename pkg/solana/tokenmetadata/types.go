package tokenmetadata

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/near/borsh-go"
)

// Pubkey is the borsh representation of an address.
type Pubkey [ed25519.PublicKeySize]byte

func NewPubkey(key ed25519.PublicKey) Pubkey {
	var p Pubkey
	copy(p[:], key)
	return p
}

func (p Pubkey) PublicKey() ed25519.PublicKey {
	return append(ed25519.PublicKey{}, p[:]...)
}

func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

type Creator struct {
	Address  Pubkey
	Verified bool
	// In percentages, not basis points
	Share uint8
}

type Collection struct {
	Verified bool
	Key      Pubkey
}

type UseMethod uint8

const (
	UseMethodBurn UseMethod = iota
	UseMethodMultiple
	UseMethodSingle
)

type Uses struct {
	UseMethod UseMethod
	Remaining uint64
	Total     uint64
}

// Token standards recorded in MetadataAccount.TokenStandard.
const (
	TokenStandardNonFungible        uint8 = 0
	TokenStandardFungibleAsset      uint8 = 1
	TokenStandardFungible           uint8 = 2
	TokenStandardNonFungibleEdition uint8 = 3
)

type CollectionDetails struct {
	Enum borsh.Enum `borsh_enum:"true"`
	V1   CollectionDetailsV1
}

type CollectionDetailsV1 struct {
	Size uint64
}

// Data is the descriptive part of a metadata account.
type Data struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             *[]Creator
}

// DataV2 is the descriptive part of a metadata creation request.
type DataV2 struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             *[]Creator
	Collection           *Collection
	Uses                 *Uses
}

func (d *DataV2) ToData() Data {
	return Data{
		Name:                 d.Name,
		Symbol:               d.Symbol,
		Uri:                  d.Uri,
		SellerFeeBasisPoints: d.SellerFeeBasisPoints,
		Creators:             d.Creators,
	}
}

// Validate checks the length, royalty and creator constraints enforced by the
// metadata program.
func (d *DataV2) Validate() error {
	if len(d.Name) > MaxNameLength {
		return ErrorNameTooLong
	}
	if len(d.Symbol) > MaxSymbolLength {
		return ErrorSymbolTooLong
	}
	if len(d.Uri) > MaxUriLength {
		return ErrorUriTooLong
	}
	if d.SellerFeeBasisPoints > 10_000 {
		return ErrorInvalidBasisPoints
	}

	if d.Creators == nil {
		return nil
	}

	creators := *d.Creators
	if len(creators) == 0 {
		return ErrorCreatorsMustBeAtleastOne
	}
	if len(creators) > MaxCreatorLimit {
		return ErrorCreatorsTooLong
	}

	var total int
	seen := make(map[Pubkey]struct{})
	for _, c := range creators {
		if _, ok := seen[c.Address]; ok {
			return ErrorDuplicateCreatorAddress
		}
		seen[c.Address] = struct{}{}
		total += int(c.Share)
	}
	if total != 100 {
		return ErrorShareTotalMustBe100
	}

	return nil
}
