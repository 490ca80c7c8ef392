package chainconfig

import (
	"math/big"
)

const (
	daoForkExtraData      = "dao-hard-fork"
	daoForkExtraDataRange = 10

	mainnetMinimumDifficulty = 131072
)

// Frontier returns a fresh copy of the launch rule set
func Frontier() *RuleSet {
	blockReward := new(big.Int).Mul(big.NewInt(5), Ether)
	return &RuleSet{
		Name:                 "Frontier",
		CalcDifficulty:       FrontierDifficulty,
		MinimumDifficulty:    big.NewInt(mainnetMinimumDifficulty),
		GasLimitBoundDivisor: 1024,
		MinGasLimit:          5000,
		MaxExtraDataSize:     32,
		Ommers:               OmmerPolicy{MaxOmmers: 2, MaxDepth: 6},
		Gas: GasSchedule{
			TxGas:                21000,
			TxCreateGas:          21000,
			TxDataZeroGas:        4,
			TxDataNonZeroGas:     68,
			CallGas:              40,
			StorageWriteGas:      20000,
			CreateDataGasPerByte: 200,
		},
		BlockReward:               blockReward,
		Rewards:                   StandardRewards(blockReward),
		CodeDepositFailureReverts: false,
	}
}

// Homestead returns a fresh copy of the Homestead rule set: contract
// creation costs more, a failed code deposit reverts the creation, and the
// difficulty adjusts proportionally to the block time
func Homestead() *RuleSet {
	rules := Frontier()
	rules.Name = "Homestead"
	rules.CalcDifficulty = HomesteadDifficulty
	rules.Gas.TxCreateGas = 53000
	rules.CodeDepositFailureReverts = true
	return rules
}

// Byzantium returns a fresh copy of the Byzantium rule set: a lower block
// reward, pricier calls and a difficulty that accounts for ommers
func Byzantium() *RuleSet {
	rules := Homestead()
	rules.Name = "Byzantium"
	rules.CalcDifficulty = ByzantiumDifficulty
	rules.Gas.CallGas = 700
	rules.BlockReward = new(big.Int).Mul(big.NewInt(3), Ether)
	rules.Rewards = StandardRewards(rules.BlockReward)
	return rules
}
