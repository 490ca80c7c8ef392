package externalapi

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// DomainAddressSize is the size of an account address in bytes.
const DomainAddressSize = 20

// DomainAddress identifies an account. It is a value type so it can be
// used directly as a map key.
type DomainAddress [DomainAddressSize]byte

// NewDomainAddressFromByteSlice constructs a DomainAddress out of a byte slice
// of exactly DomainAddressSize bytes.
func NewDomainAddressFromByteSlice(addressBytes []byte) (DomainAddress, error) {
	var address DomainAddress
	if len(addressBytes) != DomainAddressSize {
		return address, errors.Errorf("invalid address size. Want: %d, got: %d",
			DomainAddressSize, len(addressBytes))
	}
	copy(address[:], addressBytes)
	return address, nil
}

// NewDomainAddressFromString parses a hex-encoded address, with or without a 0x prefix.
func NewDomainAddressFromString(addressString string) (DomainAddress, error) {
	addressBytes, err := hex.DecodeString(strings.TrimPrefix(addressString, "0x"))
	if err != nil {
		return DomainAddress{}, errors.WithStack(err)
	}
	return NewDomainAddressFromByteSlice(addressBytes)
}

// String returns the address as a 0x-prefixed hexadecimal string.
func (address DomainAddress) String() string {
	return "0x" + hex.EncodeToString(address[:])
}

// Less returns true if address sorts before other.
func (address DomainAddress) Less(other DomainAddress) bool {
	return bytes.Compare(address[:], other[:]) < 0
}

// CloneAddress returns a copy of the given address pointer, or nil.
func CloneAddress(address *DomainAddress) *DomainAddress {
	if address == nil {
		return nil
	}
	clone := *address
	return &clone
}
