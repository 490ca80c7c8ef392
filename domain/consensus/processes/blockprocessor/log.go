package blockprocessor

import (
	"github.com/blockforge/forkd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BPRC")
