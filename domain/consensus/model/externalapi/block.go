package externalapi

// DomainBlock represents a block: a header, its ordered transactions and
// the ommer headers it references.
type DomainBlock struct {
	Header       *DomainBlockHeader
	Transactions []*DomainTransaction
	Ommers       []*DomainBlockHeader
}

// Clone returns a clone of DomainBlock
func (block *DomainBlock) Clone() *DomainBlock {
	transactionClone := make([]*DomainTransaction, len(block.Transactions))
	for i, tx := range block.Transactions {
		transactionClone[i] = tx.Clone()
	}

	return &DomainBlock{
		Header:       block.Header.Clone(),
		Transactions: transactionClone,
		Ommers:       CloneHeaders(block.Ommers),
	}
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = DomainBlock{&DomainBlockHeader{}, []*DomainTransaction{}, []*DomainBlockHeader{}}

// Equal returns whether block equals to other
func (block *DomainBlock) Equal(other *DomainBlock) bool {
	if block == nil || other == nil {
		return block == other
	}

	if len(block.Transactions) != len(other.Transactions) {
		return false
	}

	if len(block.Ommers) != len(other.Ommers) {
		return false
	}

	if !block.Header.Equal(other.Header) {
		return false
	}

	for i, tx := range block.Transactions {
		if !tx.Equal(other.Transactions[i]) {
			return false
		}
	}

	for i, ommer := range block.Ommers {
		if !ommer.Equal(other.Ommers[i]) {
			return false
		}
	}

	return true
}
