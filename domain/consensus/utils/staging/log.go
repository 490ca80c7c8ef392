package staging

import (
	"github.com/blockforge/forkd/infrastructure/logger"
)

var utilLog = logger.RegisterSubSystem("UTIL")
