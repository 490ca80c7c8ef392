package main

import (
	"bufio"
	"encoding/hex"
	"io"
	"strings"
	"time"

	"github.com/blockforge/forkd/domain/consensus"
	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

// maxLineSize bounds a single hex-encoded block
const maxLineSize = 32 * 1024 * 1024

// errInterrupted is returned when an import is stopped by an interrupt
var errInterrupted = errors.New("import interrupted")

// importResults houses the stats of a finished import
type importResults struct {
	blocksProcessed uint64
	accepted        uint64
	alreadyKnown    uint64
	rejected        uint64
	malformed       uint64
}

// blockImporter feeds the blocks of a block file, one hex-encoded block per
// line, into a consensus instance. Blocks that fail to decode or that break a
// rule are counted and skipped, any other failure ends the import.
type blockImporter struct {
	consensus consensus.Consensus
	interrupt <-chan struct{}

	progressInterval time.Duration
	lastProgressTime time.Time
	lastProgressSize uint64

	results importResults
}

func newBlockImporter(c consensus.Consensus, interrupt <-chan struct{}, progressSeconds int) *blockImporter {
	return &blockImporter{
		consensus:        c,
		interrupt:        interrupt,
		progressInterval: time.Duration(progressSeconds) * time.Second,
		lastProgressTime: time.Now(),
	}
}

// Import reads r to the end and returns the stats of the import.
func (bi *blockImporter) Import(r io.Reader) (*importResults, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		select {
		case <-bi.interrupt:
			return &bi.results, errInterrupted
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		err := bi.processLine(lineNumber, line)
		if err != nil {
			return &bi.results, err
		}
		bi.logProgress()
	}
	if err := scanner.Err(); err != nil {
		return &bi.results, errors.Wrapf(err, "error reading line %d", lineNumber+1)
	}
	return &bi.results, nil
}

func (bi *blockImporter) processLine(lineNumber int, line string) error {
	bi.results.blocksProcessed++

	blockBytes, err := hex.DecodeString(strings.TrimPrefix(line, "0x"))
	if err != nil {
		log.Warnf("Line %d is not valid hex: %s", lineNumber, err)
		bi.results.malformed++
		return nil
	}

	block, err := serialization.DecodeBlock(blockBytes)
	if err != nil {
		if serialization.IsDecodingError(err) || serialization.IsDeserializationError(err) {
			log.Warnf("Line %d does not hold a well-formed block: %s", lineNumber, err)
			bi.results.malformed++
			return nil
		}
		return err
	}

	result, err := bi.consensus.ImportBlock(block)
	if err != nil {
		if kind, ok := ruleerrors.KindOf(err); ok {
			log.Infof("Rejected block at line %d (%s): %s", lineNumber, kind, err)
			bi.results.rejected++
			return nil
		}
		return errors.Wrapf(err, "failed importing block at line %d", lineNumber)
	}

	switch result.Status {
	case externalapi.ImportAlreadyKnown:
		log.Debugf("Block %s at line %d is already known", result.Hash, lineNumber)
		bi.results.alreadyKnown++
	case externalapi.ImportAccepted:
		log.Debugf("Accepted block %s #%d (canonical: %t)", result.Hash, block.Header.Number, result.IsCanonical)
		if result.IsHeadChanged && len(result.ChainChanges.Removed) > 0 {
			log.Infof("Reorganized %d blocks off the canonical chain", len(result.ChainChanges.Removed))
		}
		bi.results.accepted++
	}
	return nil
}

func (bi *blockImporter) logProgress() {
	if bi.progressInterval == 0 {
		return
	}
	now := time.Now()
	duration := now.Sub(bi.lastProgressTime)
	if duration < bi.progressInterval {
		return
	}

	processed := bi.results.blocksProcessed - bi.lastProgressSize
	durationMillis := int64(duration / time.Millisecond)
	log.Infof("Processed %d blocks in the last %.2fs (%d accepted, %d rejected so far)",
		processed, float64(durationMillis)/1000, bi.results.accepted, bi.results.rejected)

	bi.lastProgressTime = now
	bi.lastProgressSize = bi.results.blocksProcessed
}
