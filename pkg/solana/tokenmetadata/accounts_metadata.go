package tokenmetadata

import (
	"fmt"

	"github.com/code-payments/code-nft/pkg/solana/binary"
)

type MetadataAccount struct {
	Key                 Key
	UpdateAuthority     Pubkey
	Mint                Pubkey
	Data                Data
	PrimarySaleHappened bool
	IsMutable           bool
	EditionNonce        *uint8
	TokenStandard       *uint8
	Collection          *Collection
	Uses                *Uses
	CollectionDetails   *CollectionDetails
}

// Marshal encodes the account with puffed strings, zero padded to
// MetadataAccountSize.
func (obj *MetadataAccount) Marshal() ([]byte, error) {
	puffed := *obj
	puffed.Key = KeyMetadataV1
	puffed.Data.Name = puffString(obj.Data.Name, MaxNameLength)
	puffed.Data.Symbol = puffString(obj.Data.Symbol, MaxSymbolLength)
	puffed.Data.Uri = puffString(obj.Data.Uri, MaxUriLength)

	return marshalPadded(puffed, MetadataAccountSize)
}

func (obj *MetadataAccount) Unmarshal(data []byte) error {
	if len(data) != MetadataAccountSize || getKey(data) != KeyMetadataV1 {
		return ErrInvalidAccountData
	}

	var decoded MetadataAccount
	if err := binary.UnmarshalBorsh(&decoded, data); err != nil {
		return ErrInvalidAccountData
	}

	decoded.Data.Name = unpuffString(decoded.Data.Name)
	decoded.Data.Symbol = unpuffString(decoded.Data.Symbol)
	decoded.Data.Uri = unpuffString(decoded.Data.Uri)

	*obj = decoded
	return nil
}

func (obj *MetadataAccount) String() string {
	return fmt.Sprintf(
		"Metadata{update_authority=%s,mint=%s,name=%s,symbol=%s,uri=%s,seller_fee_basis_points=%d,is_mutable=%t}",
		obj.UpdateAuthority,
		obj.Mint,
		obj.Data.Name,
		obj.Data.Symbol,
		obj.Data.Uri,
		obj.Data.SellerFeeBasisPoints,
		obj.IsMutable,
	)
}
