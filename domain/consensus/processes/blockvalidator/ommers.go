package blockvalidator

import (
	"github.com/blockforge/forkd/domain/chainconfig"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/blockforge/forkd/domain/consensus/utils/consensushashing"
	"github.com/blockforge/forkd/domain/consensus/utils/hashset"
	"github.com/pkg/errors"
)

func (v *blockValidator) validateOmmers(stagingArea *model.StagingArea, block *externalapi.DomainBlock,
	rules *chainconfig.RuleSet) error {

	header := block.Header
	if len(block.Ommers) > rules.Ommers.MaxOmmers {
		return errors.Wrapf(ruleerrors.ErrTooManyOmmers, "block %d has %d ommers, the maximum under %s is %d",
			header.Number, len(block.Ommers), rules.Name, rules.Ommers.MaxOmmers)
	}
	if len(block.Ommers) == 0 {
		return nil
	}

	ancestors, alreadyIncluded, err := v.ommerWindow(stagingArea, header, rules.Ommers.MaxDepth)
	if err != nil {
		return err
	}

	blockHash := consensushashing.HeaderHash(header)
	seen := hashset.New()
	for i, ommer := range block.Ommers {
		ommerHash := consensushashing.HeaderHash(ommer)
		if seen.Contains(ommerHash) {
			return errors.Wrapf(ruleerrors.ErrDuplicateOmmer, "block %d lists ommer %s twice",
				header.Number, ommerHash)
		}
		seen.Add(ommerHash)

		if _, isAncestor := ancestors[*ommerHash]; isAncestor || ommerHash.Equal(blockHash) {
			return errors.Wrapf(ruleerrors.ErrOmmerIsAncestor, "ommer %s of block %d is one of its ancestors",
				ommerHash, header.Number)
		}

		if alreadyIncluded.Contains(ommerHash) {
			return errors.Wrapf(ruleerrors.ErrOmmerAlreadyIncluded, "ommer %s of block %d was already "+
				"included by one of its ancestors", ommerHash, header.Number)
		}

		ommerParent, ok := ancestors[ommer.ParentHash]
		if !ok || ommer.ParentHash.Equal(&header.ParentHash) {
			return errors.Wrapf(ruleerrors.ErrOmmerOutOfWindow, "ommer %s of block %d has parent %s, "+
				"which is not an ancestor between 2 and %d generations back", ommerHash, header.Number,
				&ommer.ParentHash, rules.Ommers.MaxDepth+1)
		}

		err := v.ValidateHeaderAgainstParent(ommer, ommerParent)
		if err != nil {
			return errors.Wrapf(ruleerrors.ErrInvalidOmmerHeader, "ommer #%d (%s) of block %d: %s",
				i, ommerHash, header.Number, err)
		}
	}

	return nil
}

// ommerWindow returns the last maxDepth+1 ancestors of header, starting at
// its parent, along with every ommer those ancestors included
func (v *blockValidator) ommerWindow(stagingArea *model.StagingArea, header *externalapi.DomainBlockHeader,
	maxDepth uint64) (map[externalapi.DomainHash]*externalapi.DomainBlockHeader, hashset.HashSet, error) {

	ancestors := make(map[externalapi.DomainHash]*externalapi.DomainBlockHeader)
	alreadyIncluded := hashset.New()

	current := &header.ParentHash
	for generation := uint64(1); generation <= maxDepth+1; generation++ {
		ancestor, err := v.blockStore.Block(v.databaseContext, stagingArea, current)
		if err != nil {
			return nil, nil, err
		}
		ancestors[*current] = ancestor.Header
		for _, ommer := range ancestor.Ommers {
			alreadyIncluded.Add(consensushashing.HeaderHash(ommer))
		}

		if ancestor.Header.Number == 0 {
			break
		}
		current = &ancestor.Header.ParentHash
	}

	return ancestors, alreadyIncluded, nil
}
