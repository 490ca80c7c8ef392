package chainconfig

import (
	"fmt"
	"math/big"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/utils/consensushashing"
	"github.com/pkg/errors"
)

// Params defines a chain variant by its fork table and genesis
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// ForkTable resolves the rule set of every block number
	ForkTable *ForkTable

	// Genesis is the first block of the chain and the state it commits to
	Genesis *externalapi.Genesis

	// GenesisHash is the hash of the genesis header
	GenesisHash *externalapi.DomainHash
}

// RuleFor returns the fork rule that applies to the given block number
func (p *Params) RuleFor(blockNumber uint64) *ForkRule {
	return p.ForkTable.RuleFor(blockNumber)
}

// WithGenesis returns a copy of the params with a different genesis
func (p Params) WithGenesis(genesis *externalapi.Genesis) *Params {
	p.Genesis = genesis
	p.GenesisHash = consensushashing.HeaderHash(genesis.Header)
	return &p
}

// WithForkTable returns a copy of the params with a different fork table
func (p Params) WithForkTable(forkTable *ForkTable) *Params {
	p.ForkTable = forkTable
	return &p
}

func newParams(name string, forkTable *ForkTable, genesis *externalapi.Genesis) Params {
	return Params{
		Name:        name,
		ForkTable:   forkTable,
		Genesis:     genesis,
		GenesisHash: consensushashing.HeaderHash(genesis.Header),
	}
}

func genesisHeader(difficulty int64, gasLimit uint64, timestamp uint64, extraData string) *externalapi.DomainBlockHeader {
	return &externalapi.DomainBlockHeader{
		ParentHash: *externalapi.NewZeroHash(),
		Difficulty: big.NewInt(difficulty),
		GasLimit:   gasLimit,
		Timestamp:  timestamp,
		ExtraData:  []byte(extraData),
	}
}

var (
	// TestnetDAODrainAddress is drained into TestnetDAORefundAddress at the
	// DAO fork block of TestnetEarlyForkParams
	TestnetDAODrainAddress = externalapi.DomainAddress{0xda, 0x0d, 0x12, 0xa1}

	// TestnetDAORefundAddress receives the drained balances at the DAO fork
	// block of TestnetEarlyForkParams
	TestnetDAORefundAddress = externalapi.DomainAddress{0xbf, 0x4e, 0xd7, 0xb2}
)

// MainnetParams defines the network parameters for the main network.
var MainnetParams = newParams("mainnet",
	mustNewForkTable(
		Activation{Block: 0, Rules: Frontier()},
		Activation{Block: 1150000, Rules: Homestead()},
		Activation{Block: 4370000, Rules: Byzantium()},
	),
	NewGenesis(genesisHeader(17179869184, 5000, 0, "forkd mainnet"), nil),
)

// TestnetEarlyForkParams defines a test network that starts with Frontier
// rules, switches to Homestead at block 5 and performs the DAO fork at
// block 8. Its difficulty is low enough to mine on demand.
var TestnetEarlyForkParams = newParams("testnet-early-fork",
	mustNewForkTable(
		Activation{Block: 0, Rules: Frontier().WithMinimumDifficulty(16)},
		Activation{Block: 5, Rules: Homestead().WithMinimumDifficulty(16).
			WithDAOFork(8, []externalapi.DomainAddress{TestnetDAODrainAddress}, TestnetDAORefundAddress)},
	),
	NewGenesis(genesisHeader(16, 3141592, 1000, "forkd testnet"),
		map[externalapi.DomainAddress]*externalapi.Account{
			TestnetDAODrainAddress: {Balance: new(big.Int).Mul(big.NewInt(1000), Ether)},
		}),
)

// SimnetParams defines the network parameters for the simulation test
// network: Byzantium rules from genesis and a difficulty every mix meets.
var SimnetParams = newParams("simnet",
	mustNewForkTable(
		Activation{Block: 0, Rules: Byzantium().WithMinimumDifficulty(1)},
	),
	NewGenesis(genesisHeader(1, 8000000, 1000, "forkd simnet"), nil),
)

// DevnetParams defines the network parameters for the development network.
var DevnetParams = newParams("devnet",
	mustNewForkTable(
		Activation{Block: 0, Rules: Homestead().WithMinimumDifficulty(16)},
	),
	NewGenesis(genesisHeader(16, 3141592, 1000, "forkd devnet"), nil),
)

var (
	// ErrDuplicateNet describes an error where the parameters for a network
	// could not be set due to the network already being a standard network
	// or previously-registered into this package.
	ErrDuplicateNet = errors.New("duplicate network")

	// ErrUnknownNet describes an error where no parameters are registered
	// under a name.
	ErrUnknownNet = errors.New("unknown network")
)

var registeredNets = make(map[string]*Params)

// Register registers the network parameters under their name. This may
// error with ErrDuplicateNet if the name is already registered.
func Register(params *Params) error {
	if _, ok := registeredNets[params.Name]; ok {
		return errors.Wrapf(ErrDuplicateNet, "%s", params.Name)
	}
	registeredNets[params.Name] = params

	return nil
}

// ParamsByName returns the registered network parameters with the given name
func ParamsByName(name string) (*Params, error) {
	params, ok := registeredNets[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownNet, "%s", name)
	}
	return params, nil
}

// mustRegister performs the same function as Register except it panics if there
// is an error. This should only be called from package init functions.
func mustRegister(params *Params) {
	if err := Register(params); err != nil {
		panic(fmt.Sprintf("failed to register network: %s", err))
	}
}

func init() {
	// Register all default networks when the package is initialized.
	mustRegister(&MainnetParams)
	mustRegister(&TestnetEarlyForkParams)
	mustRegister(&SimnetParams)
	mustRegister(&DevnetParams)
}
