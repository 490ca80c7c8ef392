package externalapi

// Genesis is the input that seeds a new chain: the genesis header and the
// account state it commits to.
type Genesis struct {
	Header   *DomainBlockHeader
	Accounts map[DomainAddress]*Account
}

// Block returns the genesis block. It carries no transactions or ommers.
func (genesis *Genesis) Block() *DomainBlock {
	return &DomainBlock{
		Header:       genesis.Header.Clone(),
		Transactions: []*DomainTransaction{},
		Ommers:       []*DomainBlockHeader{},
	}
}
