package chainconfig

import (
	"math/big"
)

var (
	bigOne                 = big.NewInt(1)
	bigMinus99             = big.NewInt(-99)
	difficultyBoundDivisor = big.NewInt(2048)
)

const (
	frontierDurationLimit = 13
	bombPeriod            = 100000
	byzantiumBombDelay    = 3000000
)

// FrontierDifficulty raises the difficulty by parent/2048 when the block
// came faster than the duration limit and lowers it by the same amount
// otherwise
func FrontierDifficulty(input *DifficultyInput, minimum *big.Int) *big.Int {
	adjustment := new(big.Int).Div(input.ParentDifficulty, difficultyBoundDivisor)
	difficulty := new(big.Int).Set(input.ParentDifficulty)
	if input.elapsed() < frontierDurationLimit {
		difficulty.Add(difficulty, adjustment)
	} else {
		difficulty.Sub(difficulty, adjustment)
	}
	return finishDifficulty(difficulty, minimum, input.Number)
}

// HomesteadDifficulty adjusts by parent/2048 * max(1 - elapsed/10, -99)
func HomesteadDifficulty(input *DifficultyInput, minimum *big.Int) *big.Int {
	return adjustedDifficulty(input, minimum, 1, 10, input.Number)
}

// ByzantiumDifficulty adjusts by parent/2048 * max(y - elapsed/9, -99) where
// y is 2 when the parent has ommers and 1 otherwise, and delays the bomb
func ByzantiumDifficulty(input *DifficultyInput, minimum *big.Int) *big.Int {
	y := int64(1)
	if input.ParentHasOmmers {
		y = 2
	}
	bombNumber := uint64(0)
	if input.Number > byzantiumBombDelay {
		bombNumber = input.Number - byzantiumBombDelay
	}
	return adjustedDifficulty(input, minimum, y, 9, bombNumber)
}

func adjustedDifficulty(input *DifficultyInput, minimum *big.Int, y int64, divisor uint64,
	bombNumber uint64) *big.Int {

	factor := big.NewInt(y)
	factor.Sub(factor, new(big.Int).SetUint64(input.elapsed()/divisor))
	if factor.Cmp(bigMinus99) < 0 {
		factor.Set(bigMinus99)
	}

	adjustment := new(big.Int).Div(input.ParentDifficulty, difficultyBoundDivisor)
	adjustment.Mul(adjustment, factor)
	difficulty := new(big.Int).Add(input.ParentDifficulty, adjustment)
	return finishDifficulty(difficulty, minimum, bombNumber)
}

// finishDifficulty clamps the difficulty to the minimum and adds the
// exponential bomb of 2^(number/100000 - 2)
func finishDifficulty(difficulty *big.Int, minimum *big.Int, bombNumber uint64) *big.Int {
	if difficulty.Cmp(minimum) < 0 {
		difficulty.Set(minimum)
	}
	periodCount := bombNumber / bombPeriod
	if periodCount > 1 {
		bomb := new(big.Int).Lsh(bigOne, uint(periodCount-2))
		difficulty.Add(difficulty, bomb)
	}
	return difficulty
}

func (input *DifficultyInput) elapsed() uint64 {
	if input.Timestamp <= input.ParentTimestamp {
		return 0
	}
	return input.Timestamp - input.ParentTimestamp
}
