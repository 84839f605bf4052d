package transferhook

import (
	"crypto/ed25519"

	"github.com/pkg/errors"
)

const (
	// ExtraAccountMetaSize is the fixed stride of a packed record, allowing
	// O(1) indexed access without deserializing the whole list.
	ExtraAccountMetaSize = (1 + // discriminator
		addressConfigSize + // address or packed seed configuration
		1 + // is_signer
		1) // is_writable

	// addressConfigSize bounds the packed seed configuration of a program
	// derived address record. It matches the public key size so the literal
	// variant shares the same layout.
	addressConfigSize = ed25519.PublicKeySize
)

const (
	// The record holds a literal address.
	extraAccountMetaAddress uint8 = iota

	// The record holds a packed seed configuration for an address derived
	// against the hook program.
	extraAccountMetaPda
)

// ExtraAccountMeta is one required account declared in a hook program's
// validation account: either a literal, already known address, or a program
// derived address described by a packed seed configuration.
type ExtraAccountMeta struct {
	Discriminator uint8
	AddressConfig [addressConfigSize]byte
	IsSigner      bool
	IsWritable    bool
}

// NewExtraAccountMeta creates a record for a literal address.
func NewExtraAccountMeta(address ed25519.PublicKey, isSigner, isWritable bool) (ExtraAccountMeta, error) {
	var m ExtraAccountMeta
	if len(address) != ed25519.PublicKeySize {
		return m, errors.Wrapf(ErrInvalidAccountData, "invalid public key length %d", len(address))
	}

	m.Discriminator = extraAccountMetaAddress
	copy(m.AddressConfig[:], address)
	m.IsSigner = isSigner
	m.IsWritable = isWritable
	return m, nil
}

// NewPdaExtraAccountMeta creates a record for an address derived against the
// hook program from the provided seeds.
func NewPdaExtraAccountMeta(seeds []Seed, isSigner, isWritable bool) (ExtraAccountMeta, error) {
	var m ExtraAccountMeta

	config, err := packSeeds(seeds)
	if err != nil {
		return m, err
	}

	m.Discriminator = extraAccountMetaPda
	m.AddressConfig = config
	m.IsSigner = isSigner
	m.IsWritable = isWritable
	return m, nil
}

// IsPda returns whether the record's address must be derived.
func (m *ExtraAccountMeta) IsPda() bool {
	return m.Discriminator == extraAccountMetaPda
}

// Address returns the literal address of a non-PDA record.
func (m *ExtraAccountMeta) Address() ed25519.PublicKey {
	address := make([]byte, ed25519.PublicKeySize)
	copy(address, m.AddressConfig[:])
	return address
}

// Seeds returns the seed list of a PDA record.
func (m *ExtraAccountMeta) Seeds() ([]Seed, error) {
	if !m.IsPda() {
		return nil, errors.Wrap(ErrInvalidSeeds, "record holds a literal address")
	}
	return unpackSeeds(m.AddressConfig)
}

func (m *ExtraAccountMeta) Marshal() []byte {
	b := make([]byte, ExtraAccountMetaSize)

	var offset int
	putUint8(b, m.Discriminator, &offset)
	copy(b[offset:], m.AddressConfig[:])
	offset += addressConfigSize
	putBool(b, m.IsSigner, &offset)
	putBool(b, m.IsWritable, &offset)

	return b
}

func (m *ExtraAccountMeta) Unmarshal(data []byte) error {
	if len(data) < ExtraAccountMetaSize {
		return errors.Wrapf(ErrInvalidAccountData, "record requires %d bytes, have %d", ExtraAccountMetaSize, len(data))
	}

	var offset int
	getUint8(data, &m.Discriminator, &offset)
	if m.Discriminator != extraAccountMetaAddress && m.Discriminator != extraAccountMetaPda {
		return errors.Wrapf(ErrInvalidAccountData, "unknown record discriminator %d", m.Discriminator)
	}
	copy(m.AddressConfig[:], data[offset:])
	offset += addressConfigSize
	getBool(data, &m.IsSigner, &offset)
	getBool(data, &m.IsWritable, &offset)

	return nil
}
