package tokenmetadata

import (
	bin "github.com/gagliardetto/binary"
	"github.com/near/borsh-go"

	"github.com/code-payments/code-nft/pkg/solana/binary"
)

// Layouts carrying an Option field implement bin.EncoderDecoder so None
// survives a round trip. Option free layouts are encoded by reflection.

func (c Creator) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := binary.WriteKey(enc, c.Address); err != nil {
		return err
	}
	if err := enc.WriteBool(c.Verified); err != nil {
		return err
	}
	return enc.WriteUint8(c.Share)
}

func (c *Creator) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if c.Address, err = binary.ReadKey(dec); err != nil {
		return err
	}
	if c.Verified, err = dec.ReadBool(); err != nil {
		return err
	}
	c.Share, err = dec.ReadUint8()
	return err
}

func (c Collection) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBool(c.Verified); err != nil {
		return err
	}
	return binary.WriteKey(enc, c.Key)
}

func (c *Collection) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if c.Verified, err = dec.ReadBool(); err != nil {
		return err
	}
	c.Key, err = binary.ReadKey(dec)
	return err
}

func (u Uses) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(uint8(u.UseMethod)); err != nil {
		return err
	}
	if err := enc.WriteUint64(u.Remaining, bin.LE); err != nil {
		return err
	}
	return enc.WriteUint64(u.Total, bin.LE)
}

func (u *Uses) UnmarshalWithDecoder(dec *bin.Decoder) error {
	method, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	u.UseMethod = UseMethod(method)
	if u.Remaining, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	u.Total, err = dec.ReadUint64(bin.LE)
	return err
}

func (d CollectionDetails) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(uint8(d.Enum)); err != nil {
		return err
	}
	return enc.WriteUint64(d.V1.Size, bin.LE)
}

func (d *CollectionDetails) UnmarshalWithDecoder(dec *bin.Decoder) error {
	variant, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	if variant != 0 {
		return ErrInvalidAccountData
	}
	d.Enum = borsh.Enum(variant)
	d.V1.Size, err = dec.ReadUint64(bin.LE)
	return err
}

func writeCreators(enc *bin.Encoder, creators *[]Creator) error {
	return binary.WriteOption(enc, creators != nil, func() error {
		if err := enc.WriteUint32(uint32(len(*creators)), bin.LE); err != nil {
			return err
		}
		for _, c := range *creators {
			if err := c.MarshalWithEncoder(enc); err != nil {
				return err
			}
		}
		return nil
	})
}

func readCreators(dec *bin.Decoder) (*[]Creator, error) {
	var creators []Creator
	present, err := binary.ReadOption(dec, func() error {
		n, err := dec.ReadUint32(bin.LE)
		if err != nil {
			return err
		}
		if n > MaxCreatorLimit {
			return ErrorCreatorsTooLong
		}
		creators = make([]Creator, n)
		for i := range creators {
			if err := creators[i].UnmarshalWithDecoder(dec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil || !present {
		return nil, err
	}
	return &creators, nil
}

func writeOptionalCollection(enc *bin.Encoder, c *Collection) error {
	return binary.WriteOption(enc, c != nil, func() error { return c.MarshalWithEncoder(enc) })
}

func readOptionalCollection(dec *bin.Decoder) (*Collection, error) {
	c := &Collection{}
	present, err := binary.ReadOption(dec, func() error { return c.UnmarshalWithDecoder(dec) })
	if err != nil || !present {
		return nil, err
	}
	return c, nil
}

func writeOptionalUses(enc *bin.Encoder, u *Uses) error {
	return binary.WriteOption(enc, u != nil, func() error { return u.MarshalWithEncoder(enc) })
}

func readOptionalUses(dec *bin.Decoder) (*Uses, error) {
	u := &Uses{}
	present, err := binary.ReadOption(dec, func() error { return u.UnmarshalWithDecoder(dec) })
	if err != nil || !present {
		return nil, err
	}
	return u, nil
}

func writeOptionalCollectionDetails(enc *bin.Encoder, d *CollectionDetails) error {
	return binary.WriteOption(enc, d != nil, func() error { return d.MarshalWithEncoder(enc) })
}

func readOptionalCollectionDetails(dec *bin.Decoder) (*CollectionDetails, error) {
	d := &CollectionDetails{}
	present, err := binary.ReadOption(dec, func() error { return d.UnmarshalWithDecoder(dec) })
	if err != nil || !present {
		return nil, err
	}
	return d, nil
}

// writeDataPrefix writes the fields Data and DataV2 share.
func writeDataPrefix(enc *bin.Encoder, name, symbol, uri string, fee uint16, creators *[]Creator) error {
	for _, s := range []string{name, symbol, uri} {
		if err := binary.WriteString(enc, s); err != nil {
			return err
		}
	}
	if err := enc.WriteUint16(fee, bin.LE); err != nil {
		return err
	}
	return writeCreators(enc, creators)
}

func readDataPrefix(dec *bin.Decoder) (d Data, err error) {
	if d.Name, err = binary.ReadString(dec); err != nil {
		return d, err
	}
	if d.Symbol, err = binary.ReadString(dec); err != nil {
		return d, err
	}
	if d.Uri, err = binary.ReadString(dec); err != nil {
		return d, err
	}
	if d.SellerFeeBasisPoints, err = dec.ReadUint16(bin.LE); err != nil {
		return d, err
	}
	d.Creators, err = readCreators(dec)
	return d, err
}

func (d Data) MarshalWithEncoder(enc *bin.Encoder) error {
	return writeDataPrefix(enc, d.Name, d.Symbol, d.Uri, d.SellerFeeBasisPoints, d.Creators)
}

func (d *Data) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	*d, err = readDataPrefix(dec)
	return err
}

func (d DataV2) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := writeDataPrefix(enc, d.Name, d.Symbol, d.Uri, d.SellerFeeBasisPoints, d.Creators); err != nil {
		return err
	}
	if err := writeOptionalCollection(enc, d.Collection); err != nil {
		return err
	}
	return writeOptionalUses(enc, d.Uses)
}

func (d *DataV2) UnmarshalWithDecoder(dec *bin.Decoder) error {
	prefix, err := readDataPrefix(dec)
	if err != nil {
		return err
	}

	decoded := DataV2{
		Name:                 prefix.Name,
		Symbol:               prefix.Symbol,
		Uri:                  prefix.Uri,
		SellerFeeBasisPoints: prefix.SellerFeeBasisPoints,
		Creators:             prefix.Creators,
	}
	if decoded.Collection, err = readOptionalCollection(dec); err != nil {
		return err
	}
	if decoded.Uses, err = readOptionalUses(dec); err != nil {
		return err
	}

	*d = decoded
	return nil
}

func (obj MetadataAccount) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(uint8(obj.Key)); err != nil {
		return err
	}
	if err := binary.WriteKey(enc, obj.UpdateAuthority); err != nil {
		return err
	}
	if err := binary.WriteKey(enc, obj.Mint); err != nil {
		return err
	}
	if err := obj.Data.MarshalWithEncoder(enc); err != nil {
		return err
	}
	if err := enc.WriteBool(obj.PrimarySaleHappened); err != nil {
		return err
	}
	if err := enc.WriteBool(obj.IsMutable); err != nil {
		return err
	}
	if err := binary.WriteOptionalUint8(enc, obj.EditionNonce); err != nil {
		return err
	}
	if err := binary.WriteOptionalUint8(enc, obj.TokenStandard); err != nil {
		return err
	}
	if err := writeOptionalCollection(enc, obj.Collection); err != nil {
		return err
	}
	if err := writeOptionalUses(enc, obj.Uses); err != nil {
		return err
	}
	return writeOptionalCollectionDetails(enc, obj.CollectionDetails)
}

func (obj *MetadataAccount) UnmarshalWithDecoder(dec *bin.Decoder) error {
	var decoded MetadataAccount

	key, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	decoded.Key = Key(key)
	if decoded.UpdateAuthority, err = binary.ReadKey(dec); err != nil {
		return err
	}
	if decoded.Mint, err = binary.ReadKey(dec); err != nil {
		return err
	}
	if err = decoded.Data.UnmarshalWithDecoder(dec); err != nil {
		return err
	}
	if decoded.PrimarySaleHappened, err = dec.ReadBool(); err != nil {
		return err
	}
	if decoded.IsMutable, err = dec.ReadBool(); err != nil {
		return err
	}
	if decoded.EditionNonce, err = binary.ReadOptionalUint8(dec); err != nil {
		return err
	}
	if decoded.TokenStandard, err = binary.ReadOptionalUint8(dec); err != nil {
		return err
	}
	if decoded.Collection, err = readOptionalCollection(dec); err != nil {
		return err
	}
	if decoded.Uses, err = readOptionalUses(dec); err != nil {
		return err
	}
	if decoded.CollectionDetails, err = readOptionalCollectionDetails(dec); err != nil {
		return err
	}

	*obj = decoded
	return nil
}

func (obj MasterEditionAccount) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(uint8(obj.Key)); err != nil {
		return err
	}
	if err := enc.WriteUint64(obj.Supply, bin.LE); err != nil {
		return err
	}
	return binary.WriteOptionalUint64(enc, obj.MaxSupply)
}

func (obj *MasterEditionAccount) UnmarshalWithDecoder(dec *bin.Decoder) error {
	key, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	supply, err := dec.ReadUint64(bin.LE)
	if err != nil {
		return err
	}
	maxSupply, err := binary.ReadOptionalUint64(dec)
	if err != nil {
		return err
	}

	*obj = MasterEditionAccount{Key: Key(key), Supply: supply, MaxSupply: maxSupply}
	return nil
}

func (args CreateMasterEditionV3InstructionArgs) MarshalWithEncoder(enc *bin.Encoder) error {
	return binary.WriteOptionalUint64(enc, args.MaxSupply)
}

func (args *CreateMasterEditionV3InstructionArgs) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	args.MaxSupply, err = binary.ReadOptionalUint64(dec)
	return err
}

func (args CreateMetadataAccountV3InstructionArgs) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := args.Data.MarshalWithEncoder(enc); err != nil {
		return err
	}
	if err := enc.WriteBool(args.IsMutable); err != nil {
		return err
	}
	return writeOptionalCollectionDetails(enc, args.CollectionDetails)
}

func (args *CreateMetadataAccountV3InstructionArgs) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	var decoded CreateMetadataAccountV3InstructionArgs
	if err = decoded.Data.UnmarshalWithDecoder(dec); err != nil {
		return err
	}
	if decoded.IsMutable, err = dec.ReadBool(); err != nil {
		return err
	}
	if decoded.CollectionDetails, err = readOptionalCollectionDetails(dec); err != nil {
		return err
	}

	*args = decoded
	return nil
}
