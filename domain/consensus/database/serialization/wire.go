// Package serialization is the canonical byte encoding of every consensus
// entity. The same bytes are persisted to the database and fed into the
// hash functions, so encoding must be deterministic: every field is always
// written, in ascending field-number order, and decoding rejects anything
// that deviates from that layout.
package serialization

import (
	"math/big"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

func appendVarintField(b []byte, num protowire.Number, value uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, value)
}

func appendFixed64Field(b []byte, num protowire.Number, value uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, value)
}

func appendBytesField(b []byte, num protowire.Number, value []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, value)
}

func appendBigIntField(b []byte, num protowire.Number, value *big.Int) []byte {
	if value == nil {
		return appendBytesField(b, num, nil)
	}
	return appendBytesField(b, num, value.Bytes())
}

// decoder consumes the fields of a single encoded entity in order.
type decoder struct {
	entity string
	buf    []byte
}

func newDecoder(entity string, buf []byte) *decoder {
	return &decoder{entity: entity, buf: buf}
}

func (d *decoder) decodingError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDecoding, d.entity+": "+format, args...)
}

func (d *decoder) deserializationError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDeserialization, d.entity+": "+format, args...)
}

// next reports whether the next field in the buffer has the given number.
func (d *decoder) next(num protowire.Number) bool {
	if len(d.buf) == 0 {
		return false
	}
	n, _, length := protowire.ConsumeTag(d.buf)
	return length > 0 && n == num
}

func (d *decoder) tag(num protowire.Number, typ protowire.Type) error {
	if len(d.buf) == 0 {
		return d.decodingError("missing field %d", num)
	}
	n, t, length := protowire.ConsumeTag(d.buf)
	if length < 0 {
		return d.decodingError("field %d: %s", num, protowire.ParseError(length))
	}
	if length != protowire.SizeTag(n) {
		return d.decodingError("field %d: non-minimal tag", num)
	}
	if n != num || t != typ {
		return d.decodingError("expected field %d of wire type %d but got field %d of wire type %d",
			num, typ, n, t)
	}
	d.buf = d.buf[length:]
	return nil
}

func (d *decoder) uint64(num protowire.Number) (uint64, error) {
	err := d.tag(num, protowire.VarintType)
	if err != nil {
		return 0, err
	}
	value, length := protowire.ConsumeVarint(d.buf)
	if length < 0 {
		return 0, d.decodingError("field %d: %s", num, protowire.ParseError(length))
	}
	if length != protowire.SizeVarint(value) {
		return 0, d.decodingError("field %d: non-minimal varint", num)
	}
	d.buf = d.buf[length:]
	return value, nil
}

func (d *decoder) fixed64(num protowire.Number) (uint64, error) {
	err := d.tag(num, protowire.Fixed64Type)
	if err != nil {
		return 0, err
	}
	value, length := protowire.ConsumeFixed64(d.buf)
	if length < 0 {
		return 0, d.decodingError("field %d: %s", num, protowire.ParseError(length))
	}
	d.buf = d.buf[length:]
	return value, nil
}

// bytes returns a copy of the next length-delimited field.
func (d *decoder) bytes(num protowire.Number) ([]byte, error) {
	err := d.tag(num, protowire.BytesType)
	if err != nil {
		return nil, err
	}
	value, length := protowire.ConsumeBytes(d.buf)
	if length < 0 {
		return nil, d.decodingError("field %d: %s", num, protowire.ParseError(length))
	}
	d.buf = d.buf[length:]
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	return valueCopy, nil
}

func (d *decoder) fixedBytes(num protowire.Number, size int) ([]byte, error) {
	value, err := d.bytes(num)
	if err != nil {
		return nil, err
	}
	if len(value) != size {
		return nil, d.deserializationError("field %d: expected %d bytes but got %d",
			num, size, len(value))
	}
	return value, nil
}

func (d *decoder) bigInt(num protowire.Number) (*big.Int, error) {
	value, err := d.bytes(num)
	if err != nil {
		return nil, err
	}
	if len(value) > 0 && value[0] == 0 {
		return nil, d.deserializationError("field %d: integer has a leading zero byte", num)
	}
	return new(big.Int).SetBytes(value), nil
}

func (d *decoder) finish() error {
	if len(d.buf) != 0 {
		return d.decodingError("%d unexpected trailing bytes", len(d.buf))
	}
	return nil
}

func (d *decoder) hash(num protowire.Number, dest *externalapi.DomainHash) error {
	value, err := d.fixedBytes(num, externalapi.DomainHashSize)
	if err != nil {
		return err
	}
	hash, err := externalapi.NewDomainHashFromByteSlice(value)
	if err != nil {
		return d.deserializationError("field %d: %s", num, err)
	}
	*dest = *hash
	return nil
}

func (d *decoder) address(num protowire.Number, dest *externalapi.DomainAddress) error {
	value, err := d.fixedBytes(num, externalapi.DomainAddressSize)
	if err != nil {
		return err
	}
	copy(dest[:], value)
	return nil
}
