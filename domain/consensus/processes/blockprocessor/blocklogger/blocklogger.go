// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocklogger

import (
	"sync"
	"time"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

// logInterval is the minimum time between two progress messages
const logInterval = 10 * time.Second

// BlockLogger accumulates import statistics and periodically reports them
type BlockLogger struct {
	sync.Mutex
	receivedLogBlocks int64
	receivedLogTx     int64
	lastBlockLogTime  time.Time
	now               func() time.Time
}

// New returns a BlockLogger that starts counting now
func New() *BlockLogger {
	return &BlockLogger{
		lastBlockLogTime: time.Now(),
		now:              time.Now,
	}
}

// LogBlock logs the number of the newly imported block as an information
// message to show progress to the user. In order to prevent spam, it limits
// logging to one message every 10 seconds with duration and totals included.
func (bl *BlockLogger) LogBlock(block *externalapi.DomainBlock) {
	bl.Lock()
	defer bl.Unlock()

	bl.receivedLogBlocks++
	bl.receivedLogTx += int64(len(block.Transactions))

	now := bl.now()
	duration := now.Sub(bl.lastBlockLogTime)
	if duration < logInterval {
		return
	}

	// Truncate the duration to 10s of milliseconds.
	tDuration := duration.Round(10 * time.Millisecond)

	blockStr := "blocks"
	if bl.receivedLogBlocks == 1 {
		blockStr = "block"
	}
	txStr := "transactions"
	if bl.receivedLogTx == 1 {
		txStr = "transaction"
	}

	log.Infof("Imported %d %s in the last %s (%d %s, number %d, %s)",
		bl.receivedLogBlocks, blockStr, tDuration, bl.receivedLogTx, txStr,
		block.Header.Number, time.Unix(int64(block.Header.Timestamp), 0).UTC())

	bl.receivedLogBlocks = 0
	bl.receivedLogTx = 0
	bl.lastBlockLogTime = now
}
