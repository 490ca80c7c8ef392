package blocklogger

import (
	"testing"
	"time"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

func TestLogBlockResetsCountersAfterInterval(t *testing.T) {
	start := time.Unix(1000, 0)
	current := start
	bl := New()
	bl.lastBlockLogTime = start
	bl.now = func() time.Time { return current }

	block := &externalapi.DomainBlock{
		Header:       &externalapi.DomainBlockHeader{Number: 1},
		Transactions: []*externalapi.DomainTransaction{{}, {}},
	}

	bl.LogBlock(block)
	bl.LogBlock(block)
	if bl.receivedLogBlocks != 2 || bl.receivedLogTx != 4 {
		t.Fatalf("expected 2 blocks and 4 transactions to be pending, got %d and %d",
			bl.receivedLogBlocks, bl.receivedLogTx)
	}

	current = start.Add(logInterval)
	bl.LogBlock(block)
	if bl.receivedLogBlocks != 0 || bl.receivedLogTx != 0 {
		t.Fatalf("expected the counters to reset after reporting, got %d and %d",
			bl.receivedLogBlocks, bl.receivedLogTx)
	}
	if !bl.lastBlockLogTime.Equal(current) {
		t.Fatalf("expected the last log time to move to %s, got %s", current, bl.lastBlockLogTime)
	}
}
