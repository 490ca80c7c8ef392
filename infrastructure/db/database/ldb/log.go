package ldb

import "github.com/blockforge/forkd/infrastructure/logger"

var log = logger.RegisterSubSystem("LDB")
