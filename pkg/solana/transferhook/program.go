package transferhook

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/hooklabs/hook-server/pkg/solana"
	"github.com/hooklabs/hook-server/pkg/solana/tlv"
)

// Namespace is the instruction namespace of the transfer hook interface.
// Hook programs share the namespace, so a counterparty can target any
// implementation knowing only its program id.
const Namespace = "transfer-hook-interface"

var (
	ExecuteDiscriminator                        = tlv.NewDiscriminator(Namespace + ":execute")
	InitializeExtraAccountMetaListDiscriminator = tlv.NewDiscriminator(Namespace + ":initialize-extra-account-metas")
	UpdateExtraAccountMetaListDiscriminator     = tlv.NewDiscriminator(Namespace + ":update-extra-account-metas")
)

var (
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
	ErrInvalidSeeds           = errors.New("invalid seed configuration")
	ErrCircularReference      = errors.New("circular seed reference")
	ErrAccountNotFound        = errors.New("account not found in resolved metas")
)

var (
	SYSTEM_PROGRAM_ID = mustBase58Decode("11111111111111111111111111111111")
)

const executeInstructionSize = (tlv.DiscriminatorSize + // discriminator
	8) // amount

// Execute builds the hook instruction invoked after a token transfer. The
// extra accounts declared in the validation account are resolved off chain
// and appended by AddExtraAccountMetas before compilation.
func Execute(program, source, mint, destination, owner, validationState ed25519.PublicKey, amount uint64) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[]` The source token account.
	//   1. `[]` The token mint.
	//   2. `[]` The destination token account.
	//   3. `[]` The source account's owner/delegate.
	//   4. `[]` The validation account holding the extra account metas.
	//   5. ..5+N `[]` N resolved extra accounts.
	data := make([]byte, executeInstructionSize)
	var offset int
	copy(data, ExecuteDiscriminator.Bytes())
	offset += tlv.DiscriminatorSize
	putUint64(data, amount, &offset)

	return solana.NewInstruction(
		program,
		data,
		solana.NewReadonlyAccountMeta(source, false),
		solana.NewReadonlyAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(destination, false),
		solana.NewReadonlyAccountMeta(owner, false),
		solana.NewReadonlyAccountMeta(validationState, false),
	)
}

type DecompiledExecute struct {
	Source          ed25519.PublicKey
	Mint            ed25519.PublicKey
	Destination     ed25519.PublicKey
	Owner           ed25519.PublicKey
	ValidationState ed25519.PublicKey
	Amount          uint64
}

func DecompileExecute(program ed25519.PublicKey, i solana.Instruction) (*DecompiledExecute, error) {
	if !bytes.Equal(i.Program, program) {
		return nil, solana.ErrIncorrectProgram
	}
	if !bytes.HasPrefix(i.Data, ExecuteDiscriminator.Bytes()) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Data) != executeInstructionSize {
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}
	// note: we do < 5 instead of != 5 to support resolved extra accounts.
	if len(i.Accounts) < 5 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}

	return &DecompiledExecute{
		Source:          i.Accounts[0].PublicKey,
		Mint:            i.Accounts[1].PublicKey,
		Destination:     i.Accounts[2].PublicKey,
		Owner:           i.Accounts[3].PublicKey,
		ValidationState: i.Accounts[4].PublicKey,
		Amount:          binary.LittleEndian.Uint64(i.Data[tlv.DiscriminatorSize:]),
	}, nil
}

// InitializeExtraAccountMetaList builds the instruction that creates a hook
// program's validation account and persists its required account records.
func InitializeExtraAccountMetaList(program, validationState, mint, authority ed25519.PublicKey, metas []ExtraAccountMeta) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The validation account to initialize.
	//   1. `[]` The token mint.
	//   2. `[signer]` The mint authority.
	//   3. `[]` System program.
	return solana.NewInstruction(
		program,
		append(InitializeExtraAccountMetaListDiscriminator.Bytes(), marshalMetaListValue(metas)...),
		solana.NewAccountMeta(validationState, false),
		solana.NewReadonlyAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(authority, true),
		solana.NewReadonlyAccountMeta(SYSTEM_PROGRAM_ID, false),
	)
}

// UpdateExtraAccountMetaList builds the instruction that replaces the
// required account records of an existing validation account.
func UpdateExtraAccountMetaList(program, validationState, mint, authority ed25519.PublicKey, metas []ExtraAccountMeta) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The validation account to update.
	//   1. `[]` The token mint.
	//   2. `[signer]` The mint authority.
	return solana.NewInstruction(
		program,
		append(UpdateExtraAccountMetaListDiscriminator.Bytes(), marshalMetaListValue(metas)...),
		solana.NewAccountMeta(validationState, false),
		solana.NewReadonlyAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(authority, true),
	)
}

type DecompiledInitializeExtraAccountMetaList struct {
	ValidationState ed25519.PublicKey
	Mint            ed25519.PublicKey
	Authority       ed25519.PublicKey
	Metas           []ExtraAccountMeta
}

func DecompileInitializeExtraAccountMetaList(program ed25519.PublicKey, i solana.Instruction) (*DecompiledInitializeExtraAccountMetaList, error) {
	if !bytes.Equal(i.Program, program) {
		return nil, solana.ErrIncorrectProgram
	}
	if !bytes.HasPrefix(i.Data, InitializeExtraAccountMetaListDiscriminator.Bytes()) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) != 4 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	if !bytes.Equal(SYSTEM_PROGRAM_ID, i.Accounts[3].PublicKey) {
		return nil, errors.Errorf("invalid system program")
	}

	metas, err := unmarshalMetaListValue(i.Data[tlv.DiscriminatorSize:])
	if err != nil {
		return nil, err
	}

	return &DecompiledInitializeExtraAccountMetaList{
		ValidationState: i.Accounts[0].PublicKey,
		Mint:            i.Accounts[1].PublicKey,
		Authority:       i.Accounts[2].PublicKey,
		Metas:           metas,
	}, nil
}
