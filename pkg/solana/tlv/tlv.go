// Package tlv implements the type-length-value account container used by
// interface-style programs to persist self-describing state.
//
// An account's data is a stream of entries, each framed as an 8 byte
// discriminator, a little-endian uint32 value length, and the value bytes.
// Discriminators are derived by hashing a namespace string, so unrelated
// entries can coexist in one account without an agreed-upon registry.
package tlv

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// DiscriminatorSize is the byte length of an entry discriminator.
	DiscriminatorSize = 8

	// LengthSize is the byte length of an entry's value length header.
	LengthSize = 4
)

var (
	// ErrTypeMismatch indicates the requested discriminator is not present
	// in the account data.
	ErrTypeMismatch = errors.New("discriminator not found in account data")

	// ErrInvalidAccountData indicates the account data is not a well formed
	// type-length-value stream.
	ErrInvalidAccountData = errors.New("malformed type-length-value data")
)

// Discriminator tags an entry with the type of its value.
type Discriminator [DiscriminatorSize]byte

// NewDiscriminator derives a discriminator from a namespace string, using the
// leading bytes of its SHA-256 hash.
func NewDiscriminator(namespace string) Discriminator {
	var d Discriminator
	h := sha256.Sum256([]byte(namespace))
	copy(d[:], h[:DiscriminatorSize])
	return d
}

func (d Discriminator) Bytes() []byte {
	return d[:]
}

// Entry is a single decoded type-length-value entry.
type Entry struct {
	Discriminator Discriminator
	Value         []byte
}

// Split decodes all entries from the account data. A truncated header or a
// length running past the end of the data fails with ErrInvalidAccountData.
func Split(data []byte) ([]Entry, error) {
	var entries []Entry

	for len(data) > 0 {
		if len(data) < DiscriminatorSize+LengthSize {
			return nil, errors.Wrapf(ErrInvalidAccountData, "truncated entry header (%d bytes remain)", len(data))
		}

		var entry Entry
		copy(entry.Discriminator[:], data[:DiscriminatorSize])

		length := binary.LittleEndian.Uint32(data[DiscriminatorSize:])
		data = data[DiscriminatorSize+LengthSize:]

		if uint32(len(data)) < length {
			return nil, errors.Wrapf(ErrInvalidAccountData, "entry value exceeds account data (need %d bytes, have %d)", length, len(data))
		}

		entry.Value = data[:length]
		entries = append(entries, entry)

		data = data[length:]
	}

	return entries, nil
}

// Get returns the value of the entry tagged with the provided discriminator,
// or ErrTypeMismatch if no such entry exists.
func Get(data []byte, d Discriminator) ([]byte, error) {
	entries, err := Split(data)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if bytes.Equal(entry.Discriminator[:], d[:]) {
			return entry.Value, nil
		}
	}

	return nil, ErrTypeMismatch
}

// Append frames the value as a new entry at the end of the account data.
func Append(data []byte, d Discriminator, value []byte) []byte {
	out := make([]byte, len(data)+DiscriminatorSize+LengthSize+len(value))

	var offset int
	offset += copy(out, data)
	offset += copy(out[offset:], d[:])
	binary.LittleEndian.PutUint32(out[offset:], uint32(len(value)))
	offset += LengthSize
	copy(out[offset:], value)

	return out
}
