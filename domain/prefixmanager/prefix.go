package prefixmanager

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	prefixZero byte = 0
	prefixOne  byte = 1
)

// Prefix is a database prefix that is used to manage more than one chain
// database at once: every consensus store lives under the bucket of its
// prefix, so a chain can be rebuilt under the other prefix while the
// current one is still being served.
type Prefix struct {
	value byte
}

// NewPrefix returns a new prefix with the given value
func NewPrefix(value byte) *Prefix {
	return &Prefix{value: value}
}

// DefaultPrefix is the prefix of a fresh database
func DefaultPrefix() *Prefix {
	return NewPrefix(prefixZero)
}

// Serialize serializes the prefix into a byte slice
func (p *Prefix) Serialize() []byte {
	return []byte{p.value}
}

// Equal returns whether p equals to other
func (p *Prefix) Equal(other *Prefix) bool {
	return p.value == other.value
}

// Flip returns the opposite of the current prefix
func (p *Prefix) Flip() *Prefix {
	if p.value == prefixZero {
		return NewPrefix(prefixOne)
	}
	return NewPrefix(prefixZero)
}

func (p *Prefix) String() string {
	return fmt.Sprintf("%02x", p.value)
}

// Deserialize deserializes a prefix from a byte slice
func Deserialize(prefixBytes []byte) (*Prefix, error) {
	if len(prefixBytes) != 1 {
		return nil, errors.Errorf("invalid length %d for prefix", len(prefixBytes))
	}

	if prefixBytes[0] != prefixZero && prefixBytes[0] != prefixOne {
		return nil, errors.Errorf("invalid prefix %x", prefixBytes)
	}

	return NewPrefix(prefixBytes[0]), nil
}
