package consensus

import (
	"github.com/blockforge/forkd/domain/chainconfig"
)

// Config is a descriptor for the consensus of a single chain
type Config struct {
	chainconfig.Params

	// SkipProofOfWork disables the proof of work check. It is meant for
	// tests and for importing fixtures that were not mined.
	SkipProofOfWork bool
}
