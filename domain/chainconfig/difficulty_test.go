package chainconfig

import (
	"math/big"
	"testing"
)

func TestDifficultyFormulas(t *testing.T) {
	parentDifficulty := big.NewInt(2048 * 1000)
	minimum := big.NewInt(131072)

	tests := []struct {
		name     string
		calc     DifficultyFunc
		input    DifficultyInput
		expected int64
	}{
		{"frontier fast", FrontierDifficulty,
			DifficultyInput{ParentDifficulty: parentDifficulty, ParentTimestamp: 100, Timestamp: 112, Number: 1},
			2048*1000 + 1000},
		{"frontier slow", FrontierDifficulty,
			DifficultyInput{ParentDifficulty: parentDifficulty, ParentTimestamp: 100, Timestamp: 113, Number: 1},
			2048*1000 - 1000},
		{"homestead fast", HomesteadDifficulty,
			DifficultyInput{ParentDifficulty: parentDifficulty, ParentTimestamp: 100, Timestamp: 109, Number: 1},
			2048*1000 + 1000},
		{"homestead slow", HomesteadDifficulty,
			DifficultyInput{ParentDifficulty: parentDifficulty, ParentTimestamp: 100, Timestamp: 130, Number: 1},
			2048*1000 - 2*1000},
		{"homestead capped", HomesteadDifficulty,
			DifficultyInput{ParentDifficulty: parentDifficulty, ParentTimestamp: 100, Timestamp: 100000, Number: 1},
			2048*1000 - 99*1000},
		{"byzantium with ommers", ByzantiumDifficulty,
			DifficultyInput{ParentDifficulty: parentDifficulty, ParentTimestamp: 100, Timestamp: 108,
				ParentHasOmmers: true, Number: 1},
			2048*1000 + 2*1000},
		{"byzantium without ommers", ByzantiumDifficulty,
			DifficultyInput{ParentDifficulty: parentDifficulty, ParentTimestamp: 100, Timestamp: 108, Number: 1},
			2048*1000 + 1000},
		{"clamped to minimum", HomesteadDifficulty,
			DifficultyInput{ParentDifficulty: big.NewInt(131072), ParentTimestamp: 100, Timestamp: 200, Number: 1},
			131072},
		{"frontier bomb", FrontierDifficulty,
			DifficultyInput{ParentDifficulty: parentDifficulty, ParentTimestamp: 100, Timestamp: 112, Number: 300000},
			2048*1000 + 1000 + 2},
	}

	for _, test := range tests {
		input := test.input
		difficulty := test.calc(&input, minimum)
		if difficulty.Cmp(big.NewInt(test.expected)) != 0 {
			t.Errorf("%s: expected difficulty %d, got %s", test.name, test.expected, difficulty)
		}
	}
}

func TestLowDifficultyStaysAtMinimum(t *testing.T) {
	minimum := big.NewInt(16)
	input := &DifficultyInput{ParentDifficulty: big.NewInt(16), ParentTimestamp: 10, Timestamp: 11, Number: 1}
	for _, calc := range []DifficultyFunc{FrontierDifficulty, HomesteadDifficulty, ByzantiumDifficulty} {
		if difficulty := calc(input, minimum); difficulty.Cmp(minimum) != 0 {
			t.Fatalf("expected difficulty 16, got %s", difficulty)
		}
	}
}
