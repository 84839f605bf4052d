package transferhook

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/hooklabs/hook-server/pkg/solana"
)

var (
	// ErrMetaListNotFound indicates the hook program has no validation
	// account for the given mint.
	ErrMetaListNotFound = errors.New("extra account meta list account not found")
	// ErrInvalidMetaListAccount indicates a Solana account exists at the
	// validation address, but it is not owned by the hook program or is not
	// configured correctly.
	ErrInvalidMetaListAccount = errors.New("invalid extra account meta list account")
)

// Client provides utilities for resolving a hook program's extra accounts
// off chain.
type Client struct {
	sc      solana.Client
	program ed25519.PublicKey
}

// NewClient creates a new Client for the given hook program.
func NewClient(sc solana.Client, program ed25519.PublicKey) *Client {
	return &Client{
		sc:      sc,
		program: program,
	}
}

func (c *Client) Program() ed25519.PublicKey {
	return c.program
}

// GetExtraAccountMetaList returns the required account records persisted for
// the specified mint.
func (c *Client) GetExtraAccountMetaList(mint ed25519.PublicKey, commitment solana.Commitment) (*ExtraAccountMetaList, error) {
	accountInfo, err := c.getValidationAccount(mint, commitment)
	if err != nil {
		return nil, err
	}

	var list ExtraAccountMetaList
	if err := list.Unmarshal(accountInfo.Data); err != nil {
		return nil, ErrInvalidMetaListAccount
	}

	return &list, nil
}

// ResolveExecute resolves the extra accounts required by an execute
// instruction for the specified mint and appends them to the instruction.
func (c *Client) ResolveExecute(i *solana.Instruction, mint ed25519.PublicKey, commitment solana.Commitment) error {
	accountInfo, err := c.getValidationAccount(mint, commitment)
	if err != nil {
		return err
	}

	return AddExtraAccountMetas(i, c.program, accountInfo.Data)
}

func (c *Client) getValidationAccount(mint ed25519.PublicKey, commitment solana.Commitment) (solana.AccountInfo, error) {
	var accountInfo solana.AccountInfo

	address, _, err := GetExtraAccountMetasAddress(c.program, mint)
	if err != nil {
		return accountInfo, errors.Wrap(err, "failed to derive validation account address")
	}

	accountInfo, err = c.sc.GetAccountInfo(address, commitment)
	if err == solana.ErrNoAccountInfo {
		return accountInfo, ErrMetaListNotFound
	} else if err != nil {
		return accountInfo, errors.Wrap(err, "failed to get account info")
	}

	if !bytes.Equal(accountInfo.Owner, c.program) {
		return accountInfo, ErrInvalidMetaListAccount
	}

	return accountInfo, nil
}
