package chainconfig

import (
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/utils/consensushashing"
	"github.com/blockforge/forkd/domain/consensus/utils/merkle"
	"github.com/blockforge/forkd/domain/consensus/utils/multiset"
	"github.com/pkg/errors"
)

// NewGenesis returns a genesis whose header commits to the given accounts:
// its state, transaction, receipt and ommer commitments are filled in and
// every other field is taken from header
func NewGenesis(header *externalapi.DomainBlockHeader,
	accounts map[externalapi.DomainAddress]*externalapi.Account) *externalapi.Genesis {

	genesisHeader := header.Clone()
	genesisHeader.Number = 0
	genesisHeader.GasUsed = 0
	genesisHeader.Bloom = externalapi.Bloom{}
	genesisHeader.OmmersHash = *consensushashing.EmptyOmmersHash
	genesisHeader.TransactionRoot = *merkle.CalculateTransactionRoot(nil)
	genesisHeader.ReceiptRoot = *merkle.CalculateReceiptRoot(nil)
	genesisHeader.StateRoot = *multiset.StateRoot(accounts)

	genesisAccounts := make(map[externalapi.DomainAddress]*externalapi.Account, len(accounts))
	for address, account := range accounts {
		genesisAccounts[address] = account.Clone()
	}
	return &externalapi.Genesis{Header: genesisHeader, Accounts: genesisAccounts}
}

// ValidateGenesis checks that the genesis header is a well formed block zero
// that commits to the genesis accounts
func ValidateGenesis(genesis *externalapi.Genesis) error {
	if genesis == nil || genesis.Header == nil {
		return errors.Wrapf(ErrConfiguration, "missing genesis header")
	}
	header := genesis.Header
	switch {
	case header.Number != 0:
		return errors.Wrapf(ErrConfiguration, "genesis has block number %d", header.Number)
	case header.GasUsed != 0:
		return errors.Wrapf(ErrConfiguration, "genesis uses %d gas", header.GasUsed)
	case header.Difficulty == nil || header.Difficulty.Sign() <= 0:
		return errors.Wrapf(ErrConfiguration, "genesis has no difficulty")
	case !header.OmmersHash.Equal(consensushashing.EmptyOmmersHash):
		return errors.Wrapf(ErrConfiguration, "genesis ommers hash %s is not the empty ommers hash",
			&header.OmmersHash)
	case !header.TransactionRoot.Equal(merkle.CalculateTransactionRoot(nil)):
		return errors.Wrapf(ErrConfiguration, "genesis transaction root %s is not the empty root",
			&header.TransactionRoot)
	}

	stateRoot := multiset.StateRoot(genesis.Accounts)
	if !header.StateRoot.Equal(stateRoot) {
		return errors.Wrapf(ErrConfiguration, "genesis state root %s does not match the genesis "+
			"accounts, which have root %s", &header.StateRoot, stateRoot)
	}
	return nil
}
