package transferhook

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/hooklabs/hook-server/pkg/solana"
)

// SeedKind identifies one component of a program derived address.
type SeedKind uint8

const (
	// A zero kind terminates a packed seed configuration.
	seedKindUninitialized SeedKind = iota

	// SeedKindLiteral is a fixed byte string baked into the configuration.
	SeedKindLiteral

	// SeedKindInstructionArg is a byte range sliced out of the instruction
	// data, located at an offset with a length implied by a primitive type.
	SeedKindInstructionArg

	// SeedKindAccountKey is the public key of the account at the given
	// position in the final resolved account list.
	SeedKindAccountKey
)

// ArgType declares the primitive type of an instruction argument seed. The
// type determines how many bytes are sliced out of the instruction data.
type ArgType uint8

const (
	ArgTypeU8 ArgType = iota
	ArgTypeU16
	ArgTypeU32
	ArgTypeU64
	ArgTypeU128
	ArgTypePubkey
)

// Size returns the byte width of the argument type, or 0 for unknown types.
func (t ArgType) Size() int {
	switch t {
	case ArgTypeU8:
		return 1
	case ArgTypeU16:
		return 2
	case ArgTypeU32:
		return 4
	case ArgTypeU64:
		return 8
	case ArgTypeU128:
		return 16
	case ArgTypePubkey:
		return ed25519.PublicKeySize
	default:
		return 0
	}
}

// Seed describes one component of a program derived address. Exactly one
// variant is active, selected by Kind.
type Seed struct {
	Kind SeedKind

	// SeedKindLiteral
	Literal []byte

	// SeedKindInstructionArg
	Offset  uint8
	ArgType ArgType

	// SeedKindAccountKey
	AccountIndex uint8
}

// NewLiteralSeed creates a seed from a fixed byte string.
func NewLiteralSeed(b []byte) Seed {
	return Seed{
		Kind:    SeedKindLiteral,
		Literal: b,
	}
}

// NewInstructionArgSeed creates a seed sliced out of the instruction data.
func NewInstructionArgSeed(offset uint8, argType ArgType) Seed {
	return Seed{
		Kind:    SeedKindInstructionArg,
		Offset:  offset,
		ArgType: argType,
	}
}

// NewAccountKeySeed creates a seed referencing the key of the account at the
// given position in the final resolved account list.
func NewAccountKeySeed(index uint8) Seed {
	return Seed{
		Kind:         SeedKindAccountKey,
		AccountIndex: index,
	}
}

// Resolve produces the concrete seed bytes against the instruction data and
// the map of already resolved account metas, keyed by final list position.
func (s Seed) Resolve(instructionData []byte, resolved map[int]solana.AccountMeta) ([]byte, error) {
	switch s.Kind {
	case SeedKindLiteral:
		return s.Literal, nil
	case SeedKindInstructionArg:
		end := int(s.Offset) + s.ArgType.Size()
		if s.ArgType.Size() == 0 {
			return nil, errors.Wrapf(ErrInvalidSeeds, "unknown argument type %d", s.ArgType)
		}
		if len(instructionData) < end {
			return nil, errors.Wrapf(ErrInvalidInstructionData, "seed requires %d bytes of instruction data, have %d", end, len(instructionData))
		}
		return instructionData[s.Offset:end], nil
	case SeedKindAccountKey:
		meta, ok := resolved[int(s.AccountIndex)]
		if !ok {
			return nil, errors.Wrapf(ErrAccountNotFound, "account at index %d has not been resolved", s.AccountIndex)
		}
		return meta.PublicKey, nil
	default:
		return nil, errors.Wrapf(ErrInvalidSeeds, "unknown seed kind %d", s.Kind)
	}
}

// packSeeds writes the seed list into a fixed size configuration region. The
// region bounds the total packed size; seed lists that do not fit fail with
// ErrInvalidSeeds.
func packSeeds(seeds []Seed) ([addressConfigSize]byte, error) {
	var config [addressConfigSize]byte

	var offset int
	for _, s := range seeds {
		switch s.Kind {
		case SeedKindLiteral:
			if len(s.Literal) == 0 || len(s.Literal) > addressConfigSize {
				return config, errors.Wrapf(ErrInvalidSeeds, "literal seed length %d out of range", len(s.Literal))
			}
			if offset+2+len(s.Literal) > addressConfigSize {
				return config, errors.Wrap(ErrInvalidSeeds, "packed seeds exceed configuration size")
			}
			config[offset] = byte(SeedKindLiteral)
			config[offset+1] = byte(len(s.Literal))
			copy(config[offset+2:], s.Literal)
			offset += 2 + len(s.Literal)
		case SeedKindInstructionArg:
			if s.ArgType.Size() == 0 {
				return config, errors.Wrapf(ErrInvalidSeeds, "unknown argument type %d", s.ArgType)
			}
			if offset+3 > addressConfigSize {
				return config, errors.Wrap(ErrInvalidSeeds, "packed seeds exceed configuration size")
			}
			config[offset] = byte(SeedKindInstructionArg)
			config[offset+1] = s.Offset
			config[offset+2] = byte(s.ArgType)
			offset += 3
		case SeedKindAccountKey:
			if offset+2 > addressConfigSize {
				return config, errors.Wrap(ErrInvalidSeeds, "packed seeds exceed configuration size")
			}
			config[offset] = byte(SeedKindAccountKey)
			config[offset+1] = s.AccountIndex
			offset += 2
		default:
			return config, errors.Wrapf(ErrInvalidSeeds, "unknown seed kind %d", s.Kind)
		}
	}

	return config, nil
}

// unpackSeeds reads a seed list from a packed configuration region. The list
// ends at the first zero kind byte or the end of the region.
func unpackSeeds(config [addressConfigSize]byte) ([]Seed, error) {
	var seeds []Seed

	for offset := 0; offset < addressConfigSize; {
		kind := SeedKind(config[offset])
		switch kind {
		case seedKindUninitialized:
			return seeds, nil
		case SeedKindLiteral:
			if offset+2 > addressConfigSize {
				return nil, errors.Wrap(ErrInvalidSeeds, "truncated literal seed")
			}
			length := int(config[offset+1])
			if length == 0 || offset+2+length > addressConfigSize {
				return nil, errors.Wrapf(ErrInvalidSeeds, "literal seed length %d out of range", length)
			}
			literal := make([]byte, length)
			copy(literal, config[offset+2:])
			seeds = append(seeds, NewLiteralSeed(literal))
			offset += 2 + length
		case SeedKindInstructionArg:
			if offset+3 > addressConfigSize {
				return nil, errors.Wrap(ErrInvalidSeeds, "truncated instruction argument seed")
			}
			seeds = append(seeds, NewInstructionArgSeed(config[offset+1], ArgType(config[offset+2])))
			offset += 3
		case SeedKindAccountKey:
			if offset+2 > addressConfigSize {
				return nil, errors.Wrap(ErrInvalidSeeds, "truncated account key seed")
			}
			seeds = append(seeds, NewAccountKeySeed(config[offset+1]))
			offset += 2
		default:
			return nil, errors.Wrapf(ErrInvalidSeeds, "unknown seed kind %d", kind)
		}
	}

	return seeds, nil
}

// seedDependencies returns the final list positions referenced by account key
// seeds, in declared order.
func seedDependencies(seeds []Seed) []int {
	var dependencies []int
	for _, s := range seeds {
		if s.Kind == SeedKindAccountKey {
			dependencies = append(dependencies, int(s.AccountIndex))
		}
	}
	return dependencies
}
