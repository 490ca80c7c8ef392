package serialization

import "github.com/pkg/errors"

var (
	// ErrDecoding indicates bytes that are not a well-formed encoding: a
	// truncated buffer, an unexpected field, a bad wire type or trailing data.
	ErrDecoding = errors.New("decoding error")

	// ErrDeserialization indicates a well-formed encoding that carries a
	// semantically invalid value, such as a hash of the wrong length or a
	// non-canonical integer.
	ErrDeserialization = errors.New("deserialization error")
)

// IsDecodingError returns whether err is, or wraps, ErrDecoding.
func IsDecodingError(err error) bool {
	return errors.Is(err, ErrDecoding)
}

// IsDeserializationError returns whether err is, or wraps, ErrDeserialization.
func IsDeserializationError(err error) bool {
	return errors.Is(err, ErrDeserialization)
}
