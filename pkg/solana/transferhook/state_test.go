package transferhook

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooklabs/hook-server/pkg/solana/tlv"
)

func TestExtraAccountMetaList_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 2)

	literal, err := NewExtraAccountMeta(keys[0], true, true)
	require.NoError(t, err)
	pda, err := NewPdaExtraAccountMeta([]Seed{
		NewLiteralSeed([]byte("vault")),
		NewAccountKeySeed(1),
	}, false, true)
	require.NoError(t, err)
	other, err := NewExtraAccountMeta(keys[1], false, false)
	require.NoError(t, err)

	list := ExtraAccountMetaList{
		Metas: []ExtraAccountMeta{literal, pda, other},
	}

	data := list.Marshal()
	assert.EqualValues(t, GetAccountSize(len(list.Metas)), len(data))

	var decoded ExtraAccountMetaList
	require.NoError(t, decoded.Unmarshal(data))
	assert.Equal(t, list, decoded)
}

func TestExtraAccountMetaList_Empty(t *testing.T) {
	list := ExtraAccountMetaList{}

	data := list.Marshal()
	assert.EqualValues(t, GetAccountSize(0), len(data))

	var decoded ExtraAccountMetaList
	require.NoError(t, decoded.Unmarshal(data))
	assert.Empty(t, decoded.Metas)
}

func TestExtraAccountMetaList_UnmarshalInvalid(t *testing.T) {
	keys := generateKeys(t, 1)

	meta, err := NewExtraAccountMeta(keys[0], false, false)
	require.NoError(t, err)
	list := ExtraAccountMetaList{Metas: []ExtraAccountMeta{meta}}
	data := list.Marshal()

	var decoded ExtraAccountMetaList

	// account data holding an entry for a different interface
	wrongEntry := tlv.Append(nil, tlv.NewDiscriminator("some-other-interface:execute"), []byte{0, 0, 0, 0})
	assert.Equal(t, tlv.ErrTypeMismatch, decoded.Unmarshal(wrongEntry))

	// truncated container
	assert.True(t, errors.Is(decoded.Unmarshal(data[:len(data)-1]), tlv.ErrInvalidAccountData))

	// record count running past the entry value
	value := marshalMetaListValue(list.Metas)
	value[0] = 2
	assert.True(t, errors.Is(decoded.Unmarshal(tlv.Append(nil, ExecuteDiscriminator, value)), ErrInvalidAccountData))

	// entry value shorter than the record count
	assert.True(t, errors.Is(decoded.Unmarshal(tlv.Append(nil, ExecuteDiscriminator, []byte{1, 2})), ErrInvalidAccountData))
}
