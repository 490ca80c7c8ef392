package externalapi

// ImportStatus is the outcome of a successful block import.
type ImportStatus byte

const (
	// ImportAccepted indicates the block was validated, executed and stored.
	ImportAccepted ImportStatus = iota

	// ImportAlreadyKnown indicates the block was already stored. Nothing changed.
	ImportAlreadyKnown
)

func (status ImportStatus) String() string {
	if status == ImportAlreadyKnown {
		return "AlreadyKnown"
	}
	return "Accepted"
}

// BlockInsertionResult is auxiliary data returned from ImportBlock
type BlockInsertionResult struct {
	Hash          *DomainHash
	Status        ImportStatus
	IsCanonical   bool
	IsHeadChanged bool
	ChainChanges  *CanonicalChainChanges
}

// CanonicalChainChanges is the set of changes made to the canonical chain
// by a single import. Removed is ordered from the old head downwards and
// Added from the fork point upwards.
type CanonicalChainChanges struct {
	Added   []*DomainHash
	Removed []*DomainHash
}
