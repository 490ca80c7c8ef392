package main

import (
	"github.com/blockforge/forkd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("CHIM")
