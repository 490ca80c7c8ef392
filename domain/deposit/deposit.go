// Package deposit implements the deposit record: a DepositData payload
// together with the merkle proof that places it in the deposit tree.
// Checking a deposit needs only the tree root, so a deposit submitted by an
// untrusted party can be verified without the rest of the deposit list.
package deposit

import (
	"bytes"

	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/deposit/deposittree"
	"github.com/blockforge/forkd/util/binaryserializer"
	"github.com/pkg/errors"
)

// Deposit is a deposit data and its inclusion proof
type Deposit struct {
	Proof deposittree.Proof
	Data  DepositData
}

// New returns a deposit for a tree of the given depth. The proof must
// have depth+1 entries.
func New(proof []externalapi.DomainHash, data *DepositData, depth uint) (*Deposit, error) {
	checkedProof, err := deposittree.NewProof(proof, depth)
	if err != nil {
		return nil, err
	}
	return &Deposit{Proof: checkedProof, Data: *data}, nil
}

// Empty returns the placeholder deposit for a tree of the given depth: an
// all-zero proof and zero deposit data
func Empty(depth uint) (*Deposit, error) {
	proof, err := deposittree.EmptyProof(depth)
	if err != nil {
		return nil, err
	}
	return &Deposit{Proof: proof}, nil
}

// LeafDigest returns the tree leaf of the deposit's data
func (d *Deposit) LeafDigest() *externalapi.DomainHash {
	return d.Data.LeafDigest()
}

// Verify returns whether the deposit is the one at index in the deposit
// tree of the given depth whose length-mixed root is root
func (d *Deposit) Verify(root *externalapi.DomainHash, index uint64, depth uint) bool {
	return deposittree.VerifyProof(d.LeafDigest(), d.Proof, depth, index, root)
}

// Clone returns a clone of the deposit
func (d *Deposit) Clone() *Deposit {
	return &Deposit{Proof: d.Proof.Clone(), Data: d.Data}
}

// Equal returns whether d equals other
func (d *Deposit) Equal(other *Deposit) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.Proof.Equal(other.Proof) && d.Data == other.Data
}

// Bytes returns the canonical encoding of the deposit: every proof entry
// followed by the encoded deposit data
func (d *Deposit) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, len(d.Proof)*externalapi.DomainHashSize+DepositDataSize))
	for i := range d.Proof {
		err := binaryserializer.PutFixedBytes(buf, d.Proof[i].ByteSlice())
		if err != nil {
			panic(errors.Wrap(err, "this should never happen. bytes.Buffer writes never fail"))
		}
	}
	err := d.Data.Serialize(buf)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. bytes.Buffer writes never fail"))
	}
	return buf.Bytes()
}

// Decode decodes the canonical encoding of a deposit for a tree of the
// given depth
func Decode(depositBytes []byte, depth uint) (*Deposit, error) {
	if depth > deposittree.MaxDepth {
		return nil, errors.Wrapf(deposittree.ErrInvalidTreeDepth, "tree depth %d is above the maximum %d",
			depth, deposittree.MaxDepth)
	}
	expectedSize := int(depth+1)*externalapi.DomainHashSize + DepositDataSize
	if len(depositBytes) != expectedSize {
		return nil, errors.Wrapf(serialization.ErrDecoding, "a deposit for a tree of depth %d "+
			"is %d bytes, got %d", depth, expectedSize, len(depositBytes))
	}

	proof := make(deposittree.Proof, depth+1)
	for i := range proof {
		entry, err := externalapi.NewDomainHashFromByteSlice(
			depositBytes[i*externalapi.DomainHashSize : (i+1)*externalapi.DomainHashSize])
		if err != nil {
			return nil, errors.Wrapf(serialization.ErrDeserialization, "deposit proof entry %d: %s", i, err)
		}
		proof[i] = *entry
	}

	data, err := DecodeDepositData(depositBytes[len(proof)*externalapi.DomainHashSize:])
	if err != nil {
		return nil, err
	}
	return &Deposit{Proof: proof, Data: *data}, nil
}
