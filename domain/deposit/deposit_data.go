package deposit

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/utils/hashes"
	"github.com/blockforge/forkd/util/binaryserializer"
	"github.com/pkg/errors"
)

const (
	// PublicKeySize is the size of a validator public key
	PublicKeySize = 48

	// WithdrawalCredentialsSize is the size of the withdrawal credentials
	WithdrawalCredentialsSize = 32

	// SignatureSize is the size of a deposit signature
	SignatureSize = 96

	// DepositDataSize is the size of an encoded DepositData
	DepositDataSize = PublicKeySize + WithdrawalCredentialsSize + 8 + SignatureSize
)

// DepositData is the payload of a deposit: who deposits, how much, where
// withdrawals go, and a signature over the other three fields
type DepositData struct {
	PublicKey             [PublicKeySize]byte
	WithdrawalCredentials [WithdrawalCredentialsSize]byte
	Amount                uint64
	Signature             [SignatureSize]byte
}

// Serialize writes the fixed-layout encoding of the deposit data: public
// key, withdrawal credentials, little endian amount, signature
func (data *DepositData) Serialize(w io.Writer) error {
	err := binaryserializer.PutFixedBytes(w, data.PublicKey[:])
	if err != nil {
		return err
	}
	err = binaryserializer.PutFixedBytes(w, data.WithdrawalCredentials[:])
	if err != nil {
		return err
	}
	err = binaryserializer.PutUint64(w, data.Amount)
	if err != nil {
		return err
	}
	return binaryserializer.PutFixedBytes(w, data.Signature[:])
}

// Deserialize reads deposit data written by Serialize
func (data *DepositData) Deserialize(r io.Reader) error {
	err := binaryserializer.FixedBytes(r, data.PublicKey[:])
	if err != nil {
		return err
	}
	err = binaryserializer.FixedBytes(r, data.WithdrawalCredentials[:])
	if err != nil {
		return err
	}
	data.Amount, err = binaryserializer.Uint64(r)
	if err != nil {
		return err
	}
	return binaryserializer.FixedBytes(r, data.Signature[:])
}

// Bytes returns the canonical encoding of the deposit data
func (data *DepositData) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, DepositDataSize))
	err := data.Serialize(buf)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. bytes.Buffer writes never fail"))
	}
	return buf.Bytes()
}

// DecodeDepositData decodes the canonical encoding of deposit data
func DecodeDepositData(dataBytes []byte) (*DepositData, error) {
	if len(dataBytes) != DepositDataSize {
		return nil, errors.Wrapf(serialization.ErrDecoding, "deposit data is %d bytes, expected %d",
			len(dataBytes), DepositDataSize)
	}
	data := &DepositData{}
	err := data.Deserialize(bytes.NewReader(dataBytes))
	if err != nil {
		return nil, errors.Wrapf(serialization.ErrDecoding, "deposit data: %s", err)
	}
	return data, nil
}

// LeafDigest returns the tree leaf that commits to the deposit data
func (data *DepositData) LeafDigest() *externalapi.DomainHash {
	w := hashes.NewDepositLeafHashWriter()
	w.InfallibleWrite(data.Bytes())
	return w.Finalize()
}

func (data *DepositData) String() string {
	return fmt.Sprintf("pubkey=%s, amount=%d", hex.EncodeToString(data.PublicKey[:8]), data.Amount)
}
