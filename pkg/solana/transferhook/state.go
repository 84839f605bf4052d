package transferhook

import (
	"github.com/pkg/errors"

	"github.com/hooklabs/hook-server/pkg/solana/tlv"
)

const metaListCountSize = 4

// ExtraAccountMetaList is the persisted state of a hook program's validation
// account: the required account records, framed as the type-length-value
// entry tagged with the execute instruction's discriminator.
//
// The account is created once by the mint authority and only ever mutated
// through explicit initialize/update instructions.
type ExtraAccountMetaList struct {
	Metas []ExtraAccountMeta
}

// GetAccountSize returns the validation account size required to hold the
// given number of records, for rent exemption math.
func GetAccountSize(numMetas int) uint64 {
	return uint64(tlv.DiscriminatorSize + // entry discriminator
		tlv.LengthSize + // entry length
		metaListCountSize + // record count
		numMetas*ExtraAccountMetaSize) // packed records
}

func (l *ExtraAccountMetaList) Marshal() []byte {
	return tlv.Append(nil, ExecuteDiscriminator, marshalMetaListValue(l.Metas))
}

func (l *ExtraAccountMetaList) Unmarshal(data []byte) error {
	value, err := tlv.Get(data, ExecuteDiscriminator)
	if err != nil {
		return err
	}

	l.Metas, err = unmarshalMetaListValue(value)
	return err
}

// marshalMetaListValue packs the records as a little-endian uint32 count
// followed by a fixed stride array.
func marshalMetaListValue(metas []ExtraAccountMeta) []byte {
	b := make([]byte, metaListCountSize+len(metas)*ExtraAccountMetaSize)

	var offset int
	putUint32(b, uint32(len(metas)), &offset)
	for i := range metas {
		copy(b[offset:], metas[i].Marshal())
		offset += ExtraAccountMetaSize
	}

	return b
}

func unmarshalMetaListValue(value []byte) ([]ExtraAccountMeta, error) {
	if len(value) < metaListCountSize {
		return nil, errors.Wrapf(ErrInvalidAccountData, "record count requires %d bytes, have %d", metaListCountSize, len(value))
	}

	var offset int
	var count uint32
	getUint32(value, &count, &offset)

	expected := metaListCountSize + int(count)*ExtraAccountMetaSize
	if len(value) < expected {
		return nil, errors.Wrapf(ErrInvalidAccountData, "%d records require %d bytes, have %d", count, expected, len(value))
	}

	metas := make([]ExtraAccountMeta, count)
	for i := range metas {
		if err := metas[i].Unmarshal(value[offset:]); err != nil {
			return nil, err
		}
		offset += ExtraAccountMetaSize
	}

	return metas, nil
}
