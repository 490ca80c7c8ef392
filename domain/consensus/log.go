package consensus

import (
	"github.com/blockforge/forkd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("CNSS")
