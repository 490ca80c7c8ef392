package consensusstatemanager

import (
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

// headStateReader reads the account state at the canonical head, including
// whatever the staging area already holds
type headStateReader struct {
	databaseContext model.DBReader
	stagingArea     *model.StagingArea
	accountStore    model.AccountStore
}

func (r *headStateReader) Account(address externalapi.DomainAddress) (*externalapi.Account, bool, error) {
	return r.accountStore.Account(r.databaseContext, r.stagingArea, address)
}

// overlayStateReader reads the state of a non-head block: the addresses the
// path from the head touched are served from the overlay, where a nil entry
// means the account does not exist, and every other address from the head.
type overlayStateReader struct {
	overlay map[externalapi.DomainAddress]*externalapi.Account
	head    model.AccountReader
}

func (r *overlayStateReader) Account(address externalapi.DomainAddress) (*externalapi.Account, bool, error) {
	account, ok := r.overlay[address]
	if !ok {
		return r.head.Account(address)
	}
	if account == nil {
		return nil, false, nil
	}
	return account.Clone(), true, nil
}

// StateAt returns a reader over the account state right after blockHash.
// For the canonical head this is the account store itself. For any other
// block the diffs from the head down to the common ancestor are reverted,
// and the diffs from there up to the block are applied.
func (csm *consensusStateManager) StateAt(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (model.AccountReader, error) {

	head := &headStateReader{
		databaseContext: csm.databaseContext,
		stagingArea:     stagingArea,
		accountStore:    csm.accountStore,
	}

	headHash, _, err := csm.canonicalChainStore.Head(csm.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}
	if headHash.Equal(blockHash) {
		return head, nil
	}

	commonAncestor, err := csm.chainTraversalManager.LowestCommonAncestor(stagingArea, headHash, blockHash)
	if err != nil {
		return nil, err
	}

	overlay := make(map[externalapi.DomainAddress]*externalapi.Account)

	// Going down, the lowest block that touched an address holds its
	// state at the common ancestor, so later writes win
	headPath, err := csm.chainTraversalManager.PathFrom(stagingArea, commonAncestor, headHash)
	if err != nil {
		return nil, err
	}
	for i := len(headPath) - 1; i >= 0; i-- {
		accountDiff, err := csm.accountDiffStore.AccountDiff(csm.databaseContext, stagingArea, headPath[i])
		if err != nil {
			return nil, err
		}
		for address, change := range accountDiff {
			overlay[address] = change.Before
		}
	}

	blockPath, err := csm.chainTraversalManager.PathFrom(stagingArea, commonAncestor, blockHash)
	if err != nil {
		return nil, err
	}
	for _, pathBlockHash := range blockPath {
		accountDiff, err := csm.accountDiffStore.AccountDiff(csm.databaseContext, stagingArea, pathBlockHash)
		if err != nil {
			return nil, err
		}
		for address, change := range accountDiff {
			overlay[address] = change.After
		}
	}

	log.Tracef("Reconstructed the state of %s through %s: reverted %d blocks and applied %d",
		blockHash, commonAncestor, len(headPath), len(blockPath))

	return &overlayStateReader{overlay: overlay, head: head}, nil
}
