package chainconfig

import (
	"math/big"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// Ether is the number of wei in one ether
var Ether = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// DifficultyInput holds everything a DifficultyFunc may look at
type DifficultyInput struct {
	ParentDifficulty *big.Int
	ParentTimestamp  uint64
	ParentHasOmmers  bool
	Number           uint64
	Timestamp        uint64
}

// DifficultyFunc calculates the difficulty a block must declare. The result
// is never below minimum.
type DifficultyFunc func(input *DifficultyInput, minimum *big.Int) *big.Int

// RewardFunc returns the reward paid to a block's coinbase and to each of the
// block's ommers' coinbases, in ommer order
type RewardFunc func(blockNumber uint64, ommerNumbers []uint64) (coinbaseReward *big.Int, ommerRewards []*big.Int)

// OmmerPolicy bounds which headers a block may reference as ommers
type OmmerPolicy struct {
	// MaxOmmers is the maximum number of ommers a single block may carry
	MaxOmmers int

	// MaxDepth is how many generations an ommer may trail the block that
	// includes it. An ommer's parent must be an ancestor of the including
	// block that is at most MaxDepth+1 generations back, other than the
	// including block's own parent.
	MaxDepth uint64
}

// GasSchedule is the gas cost of the parts of transaction execution that
// are modeled
type GasSchedule struct {
	TxGas                uint64
	TxCreateGas          uint64
	TxDataZeroGas        uint64
	TxDataNonZeroGas     uint64
	CallGas              uint64
	StorageWriteGas      uint64
	CreateDataGasPerByte uint64
}

// IntrinsicGas returns the gas a transaction pays before any execution
func (gs *GasSchedule) IntrinsicGas(tx *externalapi.DomainTransaction) uint64 {
	gas := gs.TxGas
	if tx.IsContractCreation() {
		gas = gs.TxCreateGas
	}
	for _, b := range tx.Data {
		if b == 0 {
			gas += gs.TxDataZeroGas
		} else {
			gas += gs.TxDataNonZeroGas
		}
	}
	return gas
}

// DAOForkConfig describes the irregular state change at the DAO fork block
// and the extra-data marker required of the blocks following it
type DAOForkConfig struct {
	Block          uint64
	ExtraData      []byte
	ExtraDataRange uint64
	DrainList      []externalapi.DomainAddress
	RefundAddress  externalapi.DomainAddress
}

// RequiresExtraData returns whether a block at the given number must carry
// the fork's extra-data marker
func (dao *DAOForkConfig) RequiresExtraData(blockNumber uint64) bool {
	return blockNumber >= dao.Block && blockNumber-dao.Block < dao.ExtraDataRange
}

// RuleSet is a named set of consensus policies that applies to a range of
// block numbers. RuleSets are treated as immutable once a ForkTable holds
// them; the With* methods return modified copies.
type RuleSet struct {
	Name string

	CalcDifficulty    DifficultyFunc
	MinimumDifficulty *big.Int

	GasLimitBoundDivisor uint64
	MinGasLimit          uint64
	MaxExtraDataSize     int

	Ommers OmmerPolicy
	Gas    GasSchedule

	BlockReward *big.Int
	Rewards     RewardFunc

	// CodeDepositFailureReverts makes a contract creation that can not pay
	// for storing its code fail. When false the contract is created without
	// code instead.
	CodeDepositFailureReverts bool

	// DAOFork is nil for rule sets without a DAO fork
	DAOFork *DAOForkConfig
}

func (rs *RuleSet) clone() *RuleSet {
	clone := *rs
	clone.MinimumDifficulty = new(big.Int).Set(rs.MinimumDifficulty)
	clone.BlockReward = new(big.Int).Set(rs.BlockReward)
	if rs.DAOFork != nil {
		dao := *rs.DAOFork
		dao.ExtraData = append([]byte(nil), rs.DAOFork.ExtraData...)
		dao.DrainList = append([]externalapi.DomainAddress(nil), rs.DAOFork.DrainList...)
		clone.DAOFork = &dao
	}
	return &clone
}

// WithMinimumDifficulty returns a copy of the rule set with the given
// minimum difficulty
func (rs *RuleSet) WithMinimumDifficulty(minimum int64) *RuleSet {
	clone := rs.clone()
	clone.MinimumDifficulty = big.NewInt(minimum)
	return clone
}

// WithDAOFork returns a copy of the rule set that performs the DAO fork at
// the given block, moving every balance in drainList to refundAddress
func (rs *RuleSet) WithDAOFork(block uint64, drainList []externalapi.DomainAddress,
	refundAddress externalapi.DomainAddress) *RuleSet {

	clone := rs.clone()
	clone.Name = rs.Name + "+DAO"
	clone.DAOFork = &DAOForkConfig{
		Block:          block,
		ExtraData:      []byte(daoForkExtraData),
		ExtraDataRange: daoForkExtraDataRange,
		DrainList:      append([]externalapi.DomainAddress(nil), drainList...),
		RefundAddress:  refundAddress,
	}
	return clone
}

// validate checks that every policy a block import needs is present
func (rs *RuleSet) validate() error {
	switch {
	case rs.Name == "":
		return errors.Wrapf(ErrConfiguration, "rule set has no name")
	case rs.CalcDifficulty == nil:
		return errors.Wrapf(ErrConfiguration, "rule set %s has no difficulty function", rs.Name)
	case rs.Rewards == nil || rs.BlockReward == nil:
		return errors.Wrapf(ErrConfiguration, "rule set %s has no reward schedule", rs.Name)
	case rs.MinimumDifficulty == nil || rs.MinimumDifficulty.Sign() <= 0:
		return errors.Wrapf(ErrConfiguration, "rule set %s has a non-positive minimum difficulty", rs.Name)
	case rs.GasLimitBoundDivisor == 0:
		return errors.Wrapf(ErrConfiguration, "rule set %s has a zero gas limit bound divisor", rs.Name)
	case rs.DAOFork != nil && rs.DAOFork.ExtraDataRange == 0:
		return errors.Wrapf(ErrConfiguration, "rule set %s has an empty DAO extra-data range", rs.Name)
	}
	return nil
}

// StandardRewards returns the reward schedule in which each ommer's coinbase
// earns (8 + ommerNumber - blockNumber) / 8 of blockReward and the including
// block's coinbase earns blockReward plus blockReward/32 per ommer. An ommer
// 8 or more generations behind earns nothing, so an OmmerPolicy with a deeper
// window stays safe under this schedule.
func StandardRewards(blockReward *big.Int) RewardFunc {
	return func(blockNumber uint64, ommerNumbers []uint64) (*big.Int, []*big.Int) {
		coinbaseReward := new(big.Int).Set(blockReward)
		ommerRewards := make([]*big.Int, len(ommerNumbers))
		nephewReward := new(big.Int).Div(blockReward, big.NewInt(32))

		for i, ommerNumber := range ommerNumbers {
			ommerReward := new(big.Int).SetUint64(ommerNumber)
			ommerReward.Add(ommerReward, big.NewInt(8))
			ommerReward.Sub(ommerReward, new(big.Int).SetUint64(blockNumber))
			if ommerReward.Sign() < 0 {
				ommerReward.SetInt64(0)
			}
			ommerReward.Mul(ommerReward, blockReward)
			ommerReward.Div(ommerReward, big.NewInt(8))
			ommerRewards[i] = ommerReward

			coinbaseReward.Add(coinbaseReward, nephewReward)
		}
		return coinbaseReward, ommerRewards
	}
}
