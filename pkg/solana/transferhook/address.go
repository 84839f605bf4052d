package transferhook

import (
	"crypto/ed25519"

	"github.com/hooklabs/hook-server/pkg/solana"
)

var (
	ExtraAccountMetasPrefix = []byte("extra-account-metas")
)

// GetExtraAccountMetasAddress derives the validation account holding a hook
// program's required account records for the given mint.
func GetExtraAccountMetasAddress(program, mint ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		program,
		ExtraAccountMetasPrefix,
		mint,
	)
}
