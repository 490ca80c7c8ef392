package blockvalidator

import (
	"bytes"
	"math/big"

	"github.com/blockforge/forkd/domain/chainconfig"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/blockforge/forkd/domain/consensus/utils/consensushashing"
	"github.com/blockforge/forkd/domain/consensus/utils/pow"
	"github.com/blockforge/forkd/infrastructure/logger"
	"github.com/pkg/errors"
)

// ValidateBlockInContext validates a block against its parent and the
// ancestors its ommers refer to. The checks run in order and the first
// failure is returned: linkage, timestamp and difficulty, proof of work,
// the DAO extra-data marker, ommers and finally the gas limit.
func (v *blockValidator) ValidateBlockInContext(stagingArea *model.StagingArea, block *externalapi.DomainBlock) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateBlockInContext")
	defer onEnd()

	header := block.Header
	parentExists, err := v.blockInfoStore.HasBlockInfo(v.databaseContext, stagingArea, &header.ParentHash)
	if err != nil {
		return err
	}
	if !parentExists {
		return errors.Wrapf(ruleerrors.ErrMissingParent, "block %d has unknown parent %s",
			header.Number, &header.ParentHash)
	}
	parentHeader, err := v.blockHeaderStore.BlockHeader(v.databaseContext, stagingArea, &header.ParentHash)
	if err != nil {
		return err
	}

	rules := v.rulesFor(header.Number)
	err = v.validateHeaderAgainstParent(header, parentHeader, rules)
	if err != nil {
		return err
	}

	err = v.validateOmmers(stagingArea, block, rules)
	if err != nil {
		return err
	}

	return v.checkGasLimit(header, parentHeader, rules)
}

// ValidateHeaderAgainstParent runs every header check that only needs the
// header's parent, the gas limit check included
func (v *blockValidator) ValidateHeaderAgainstParent(header, parentHeader *externalapi.DomainBlockHeader) error {
	rules := v.rulesFor(header.Number)

	err := v.validateHeaderInIsolation(header, rules)
	if err != nil {
		return err
	}

	err = v.validateHeaderAgainstParent(header, parentHeader, rules)
	if err != nil {
		return err
	}

	return v.checkGasLimit(header, parentHeader, rules)
}

func (v *blockValidator) validateHeaderAgainstParent(header, parentHeader *externalapi.DomainBlockHeader,
	rules *chainconfig.RuleSet) error {

	err := v.checkParentLinkage(header, parentHeader)
	if err != nil {
		return err
	}

	err = v.checkTimestampAndDifficulty(header, parentHeader, rules)
	if err != nil {
		return err
	}

	err = v.checkProofOfWork(header)
	if err != nil {
		return err
	}

	return v.checkDAOExtraData(header, rules)
}

func (v *blockValidator) checkParentLinkage(header, parentHeader *externalapi.DomainBlockHeader) error {
	parentHash := consensushashing.HeaderHash(parentHeader)
	if !header.ParentHash.Equal(parentHash) {
		return errors.Wrapf(ruleerrors.ErrParentHashMismatch, "block %d refers to parent %s, "+
			"but its parent hashes to %s", header.Number, &header.ParentHash, parentHash)
	}

	if header.Number != parentHeader.Number+1 {
		return errors.Wrapf(ruleerrors.ErrInvalidBlockNumber, "block declares number %d, but its "+
			"parent is block %d", header.Number, parentHeader.Number)
	}
	return nil
}

func (v *blockValidator) checkTimestampAndDifficulty(header, parentHeader *externalapi.DomainBlockHeader,
	rules *chainconfig.RuleSet) error {

	if header.Timestamp <= parentHeader.Timestamp {
		return errors.Wrapf(ruleerrors.ErrTimestampNotIncreasing, "block %d has timestamp %d, "+
			"not later than its parent's %d", header.Number, header.Timestamp, parentHeader.Timestamp)
	}

	expectedDifficulty := rules.CalcDifficulty(&chainconfig.DifficultyInput{
		ParentDifficulty: parentHeader.Difficulty,
		ParentTimestamp:  parentHeader.Timestamp,
		ParentHasOmmers:  !parentHeader.OmmersHash.Equal(consensushashing.EmptyOmmersHash),
		Number:           header.Number,
		Timestamp:        header.Timestamp,
	}, rules.MinimumDifficulty)
	if header.Difficulty.Cmp(expectedDifficulty) != 0 {
		return errors.Wrapf(ruleerrors.ErrUnexpectedDifficulty, "block %d has difficulty %s, "+
			"expected %s under %s", header.Number, header.Difficulty, expectedDifficulty, rules.Name)
	}
	return nil
}

func (v *blockValidator) checkProofOfWork(header *externalapi.DomainBlockHeader) error {
	if v.skipPoW {
		return nil
	}
	return pow.CheckProofOfWork(header)
}

func (v *blockValidator) checkDAOExtraData(header *externalapi.DomainBlockHeader, rules *chainconfig.RuleSet) error {
	if rules.DAOFork == nil || !rules.DAOFork.RequiresExtraData(header.Number) {
		return nil
	}
	if !bytes.Equal(header.ExtraData, rules.DAOFork.ExtraData) {
		return errors.Wrapf(ruleerrors.ErrBadDAOExtraData, "block %d has extra data %x, blocks "+
			"%d to %d must carry %x", header.Number, header.ExtraData, rules.DAOFork.Block,
			rules.DAOFork.Block+rules.DAOFork.ExtraDataRange-1, rules.DAOFork.ExtraData)
	}
	return nil
}

// checkGasLimit checks that the gas limit moved by less than
// parentGasLimit/GasLimitBoundDivisor and stays above the minimum
func (v *blockValidator) checkGasLimit(header, parentHeader *externalapi.DomainBlockHeader,
	rules *chainconfig.RuleSet) error {

	difference := new(big.Int).SetUint64(header.GasLimit)
	difference.Sub(difference, new(big.Int).SetUint64(parentHeader.GasLimit))
	difference.Abs(difference)

	bound := new(big.Int).SetUint64(parentHeader.GasLimit / rules.GasLimitBoundDivisor)
	if difference.Cmp(bound) >= 0 {
		return errors.Wrapf(ruleerrors.ErrInvalidGasLimit, "block %d gas limit %d moved by %s from "+
			"its parent's %d, the bound is %s", header.Number, header.GasLimit, difference,
			parentHeader.GasLimit, bound)
	}

	if header.GasLimit < rules.MinGasLimit {
		return errors.Wrapf(ruleerrors.ErrGasLimitTooLow, "block %d gas limit %d is below the "+
			"minimum %d", header.Number, header.GasLimit, rules.MinGasLimit)
	}
	return nil
}
