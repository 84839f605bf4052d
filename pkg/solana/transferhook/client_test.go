package transferhook

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooklabs/hook-server/pkg/solana"
)

type fakeSolanaClient struct {
	accounts map[string]solana.AccountInfo
	err      error
}

func (f *fakeSolanaClient) GetAccountInfo(account ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	if f.err != nil {
		return solana.AccountInfo{}, f.err
	}

	info, ok := f.accounts[string(account)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return info, nil
}

func (f *fakeSolanaClient) GetMinimumBalanceForRentExemption(uint64) (uint64, error) {
	return 0, nil
}

func (f *fakeSolanaClient) GetSlot(solana.Commitment) (uint64, error) {
	return 0, nil
}

func setupValidationAccount(t *testing.T, sc *fakeSolanaClient, program, mint, owner ed25519.PublicKey, data []byte) {
	address, _, err := GetExtraAccountMetasAddress(program, mint)
	require.NoError(t, err)

	if sc.accounts == nil {
		sc.accounts = make(map[string]solana.AccountInfo)
	}
	sc.accounts[string(address)] = solana.AccountInfo{
		Data:  data,
		Owner: owner,
	}
}

func TestClient_GetExtraAccountMetaList(t *testing.T) {
	keys := generateKeys(t, 3)
	program, mint := keys[0], keys[1]

	literal, err := NewExtraAccountMeta(keys[2], false, true)
	require.NoError(t, err)
	list := ExtraAccountMetaList{Metas: []ExtraAccountMeta{literal}}

	sc := &fakeSolanaClient{}
	setupValidationAccount(t, sc, program, mint, program, list.Marshal())

	client := NewClient(sc, program)
	assert.EqualValues(t, program, client.Program())

	actual, err := client.GetExtraAccountMetaList(mint, solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.Equal(t, list.Metas, actual.Metas)
}

func TestClient_GetExtraAccountMetaList_NotFound(t *testing.T) {
	keys := generateKeys(t, 2)

	client := NewClient(&fakeSolanaClient{}, keys[0])

	_, err := client.GetExtraAccountMetaList(keys[1], solana.CommitmentFinalized)
	assert.Equal(t, ErrMetaListNotFound, err)
}

func TestClient_GetExtraAccountMetaList_WrongOwner(t *testing.T) {
	keys := generateKeys(t, 3)
	program, mint := keys[0], keys[1]

	list := ExtraAccountMetaList{}

	sc := &fakeSolanaClient{}
	setupValidationAccount(t, sc, program, mint, keys[2], list.Marshal())

	client := NewClient(sc, program)

	_, err := client.GetExtraAccountMetaList(mint, solana.CommitmentFinalized)
	assert.Equal(t, ErrInvalidMetaListAccount, err)
}

func TestClient_GetExtraAccountMetaList_GarbageData(t *testing.T) {
	keys := generateKeys(t, 2)
	program, mint := keys[0], keys[1]

	sc := &fakeSolanaClient{}
	setupValidationAccount(t, sc, program, mint, program, []byte{0xde, 0xad, 0xbe, 0xef})

	client := NewClient(sc, program)

	_, err := client.GetExtraAccountMetaList(mint, solana.CommitmentFinalized)
	assert.Equal(t, ErrInvalidMetaListAccount, err)
}

func TestClient_ResolveExecute(t *testing.T) {
	keys := generateKeys(t, 7)
	program, mint := keys[0], keys[1]

	pda, err := NewPdaExtraAccountMeta([]Seed{
		NewLiteralSeed([]byte("hook-state")),
		NewAccountKeySeed(1),
	}, false, false)
	require.NoError(t, err)
	list := ExtraAccountMetaList{Metas: []ExtraAccountMeta{pda}}

	sc := &fakeSolanaClient{}
	setupValidationAccount(t, sc, program, mint, program, list.Marshal())

	client := NewClient(sc, program)

	validationState, _, err := GetExtraAccountMetasAddress(program, mint)
	require.NoError(t, err)

	instruction := Execute(program, keys[2], mint, keys[3], keys[4], validationState, 100)
	require.NoError(t, client.ResolveExecute(&instruction, mint, solana.CommitmentFinalized))
	require.Len(t, instruction.Accounts, 6)

	expected, err := solana.FindProgramAddress(program, []byte("hook-state"), mint)
	require.NoError(t, err)
	assert.EqualValues(t, expected, instruction.Accounts[5].PublicKey)
	assert.False(t, instruction.Accounts[5].IsSigner)
	assert.False(t, instruction.Accounts[5].IsWritable)
}

func TestClient_ResolveExecute_NotFound(t *testing.T) {
	keys := generateKeys(t, 6)
	program, mint := keys[0], keys[1]

	client := NewClient(&fakeSolanaClient{}, program)

	instruction := Execute(program, keys[2], mint, keys[3], keys[4], keys[5], 100)
	err := client.ResolveExecute(&instruction, mint, solana.CommitmentFinalized)
	assert.Equal(t, ErrMetaListNotFound, err)
	assert.Len(t, instruction.Accounts, 5)
}
