package testutils

import (
	"testing"

	"github.com/blockforge/forkd/domain/chainconfig"
	"github.com/blockforge/forkd/domain/consensus"
)

// ForAllNets runs the passed testFunc with all available networks.
// skipPow disables the proof of work check, which mainnet difficulty makes
// impractical to satisfy in tests.
func ForAllNets(t *testing.T, skipPow bool, testFunc func(*testing.T, *consensus.Config)) {
	allParams := []chainconfig.Params{
		chainconfig.MainnetParams,
		chainconfig.TestnetEarlyForkParams,
		chainconfig.SimnetParams,
		chainconfig.DevnetParams,
	}

	for _, params := range allParams {
		consensusConfig := consensus.Config{Params: params}
		t.Run(consensusConfig.Name, func(t *testing.T) {
			t.Parallel()
			consensusConfig.SkipProofOfWork = skipPow
			t.Logf("Running test for %s", consensusConfig.Name)
			testFunc(t, &consensusConfig)
		})
	}
}
