package hashes

import (
	"hash"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// HashWriter is used to incrementally hash data without concatenating all of the data to a single buffer
// it exposes an io.Writer api and a Finalize function to get the resulting hash.
// The used hash function is blake2b.
// This can only be created via one of the domain separated constructors
type HashWriter struct {
	hash.Hash
}

// InfallibleWrite is just like write but doesn't return anything
func (h HashWriter) InfallibleWrite(p []byte) {
	// This write can never return an error, this is part of the hash.Hash interface contract.
	_, err := h.Write(p)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. hash.Hash interface promises to not return errors."))
	}
}

// Finalize returns the resulting hash
func (h HashWriter) Finalize() *externalapi.DomainHash {
	var sum [externalapi.DomainHashSize]byte
	// This should prevent `Sum` for allocating an output buffer, by using the DomainHash buffer. we still copy because we don't want to rely on that.
	copy(sum[:], h.Sum(sum[:0]))
	return externalapi.NewDomainHashFromByteArray(&sum)
}

var (
	blockHashDomain          = []byte("BlockHash")
	sealHashDomain           = []byte("BlockSealHash")
	proofOfWorkDomain        = []byte("ProofOfWorkHash")
	ommersHashDomain         = []byte("OmmersHash")
	transactionIDDomain      = []byte("TransactionID")
	transactionSigningDomain = []byte("TransactionSigningHash")
	receiptHashDomain        = []byte("ReceiptHash")
	merkleBranchDomain       = []byte("MerkleBranchHash")
	addressDomain            = []byte("AccountAddress")
	contractAddressDomain    = []byte("ContractAddress")
	bloomDomain              = []byte("BloomHash")
	depositTreeDomain        = []byte("DepositTreeHash")
	depositLeafDomain        = []byte("DepositLeafHash")
)

func newKeyedWriter(key []byte) HashWriter {
	blake, err := blake2b.New256(key)
	if err != nil {
		panic(errors.Wrapf(err, "this should never happen. %s is less than 64 bytes", key))
	}
	return HashWriter{blake}
}

// NewBlockHashWriter Returns a new HashWriter used for block hashes
func NewBlockHashWriter() HashWriter {
	return newKeyedWriter(blockHashDomain)
}

// NewSealHashWriter Returns a new HashWriter used for the header preimage
// that proof of work commits to
func NewSealHashWriter() HashWriter {
	return newKeyedWriter(sealHashDomain)
}

// NewPoWHashWriter Returns a new HashWriter used for the proof of work mix
func NewPoWHashWriter() HashWriter {
	return newKeyedWriter(proofOfWorkDomain)
}

// NewOmmersHashWriter Returns a new HashWriter used for the ommers commitment
func NewOmmersHashWriter() HashWriter {
	return newKeyedWriter(ommersHashDomain)
}

// NewTransactionIDWriter Returns a new HashWriter used for transaction IDs
func NewTransactionIDWriter() HashWriter {
	return newKeyedWriter(transactionIDDomain)
}

// NewTransactionSigningHashWriter Returns a new HashWriter used for signing on a transaction
func NewTransactionSigningHashWriter() HashWriter {
	return newKeyedWriter(transactionSigningDomain)
}

// NewReceiptHashWriter Returns a new HashWriter used for receipt hashes
func NewReceiptHashWriter() HashWriter {
	return newKeyedWriter(receiptHashDomain)
}

// NewMerkleBranchHashWriter Returns a new HashWriter used for a merkle tree branch
func NewMerkleBranchHashWriter() HashWriter {
	return newKeyedWriter(merkleBranchDomain)
}

// NewAddressHashWriter Returns a new HashWriter used to derive an account
// address from a public key
func NewAddressHashWriter() HashWriter {
	return newKeyedWriter(addressDomain)
}

// NewContractAddressHashWriter Returns a new HashWriter used to derive the
// address of a created contract
func NewContractAddressHashWriter() HashWriter {
	return newKeyedWriter(contractAddressDomain)
}

// NewBloomHashWriter Returns a new HashWriter used to select bloom filter bits
func NewBloomHashWriter() HashWriter {
	return newKeyedWriter(bloomDomain)
}

// NewDepositTreeHashWriter Returns a new HashWriter used for deposit tree nodes
func NewDepositTreeHashWriter() HashWriter {
	return newKeyedWriter(depositTreeDomain)
}

// NewDepositLeafHashWriter Returns a new HashWriter used for deposit leaves
func NewDepositLeafHashWriter() HashWriter {
	return newKeyedWriter(depositLeafDomain)
}
