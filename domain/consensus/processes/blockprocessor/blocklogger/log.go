// Copyright (c) 2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocklogger

import (
	"github.com/blockforge/forkd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BLKL")
