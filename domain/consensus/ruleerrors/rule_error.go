package ruleerrors

import (
	"fmt"
	"strings"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// ErrorKind classifies a RuleError by the stage of block import that
// produced it.
type ErrorKind byte

const (
	// KindStructural is a malformed or out-of-bounds field that can be
	// detected without looking at any other block.
	KindStructural ErrorKind = iota + 1

	// KindLinkage is a block that does not attach to its declared parent.
	KindLinkage

	// KindConsensusRule is a violation of a rule-set policy: difficulty,
	// timestamp, gas limit, ommers or a post-execution header commitment.
	KindConsensusRule

	// KindTransactionValidation is a transaction that can not be applied:
	// bad signature, bad nonce or insufficient balance.
	KindTransactionValidation

	// KindStateMismatch is a computed state that differs from an expected one.
	KindStateMismatch
)

var errorKindStrings = map[ErrorKind]string{
	KindStructural:            "StructuralError",
	KindLinkage:               "LinkageError",
	KindConsensusRule:         "ConsensusRuleError",
	KindTransactionValidation: "TransactionValidationError",
	KindStateMismatch:         "StateMismatchError",
}

func (kind ErrorKind) String() string {
	if s, ok := errorKindStrings[kind]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", byte(kind))
}

// These constants are used to identify a specific RuleError.
var (
	// ErrGasUsedExceedsGasLimit indicates a header whose gas used is greater
	// than its gas limit.
	ErrGasUsedExceedsGasLimit = newRuleError("ErrGasUsedExceedsGasLimit", KindStructural)

	// ErrExtraDataTooLong indicates a header whose extra data is longer than
	// the rule set allows.
	ErrExtraDataTooLong = newRuleError("ErrExtraDataTooLong", KindStructural)

	// ErrMissingHeader indicates a block without a header.
	ErrMissingHeader = newRuleError("ErrMissingHeader", KindStructural)

	// ErrInvalidProofLength indicates a merkle proof whose length does not
	// match the depth of the tree it is checked against.
	ErrInvalidProofLength = newRuleError("ErrInvalidProofLength", KindStructural)

	// ErrMissingDifficulty indicates a header with a zero difficulty.
	ErrMissingDifficulty = newRuleError("ErrMissingDifficulty", KindStructural)

	// ErrGasLimitTooHigh indicates a gas limit outside of the signed 64 bit range.
	ErrGasLimitTooHigh = newRuleError("ErrGasLimitTooHigh", KindStructural)

	// ErrBadOmmersHash indicates the ommers hash does not commit to the
	// block's ommer headers.
	ErrBadOmmersHash = newRuleError("ErrBadOmmersHash", KindStructural)

	// ErrBadTransactionRoot indicates the transaction root does not commit
	// to the block's transactions.
	ErrBadTransactionRoot = newRuleError("ErrBadTransactionRoot", KindStructural)

	// ErrMissingParent indicates the block's parent is not known.
	ErrMissingParent = newRuleError("ErrMissingParent", KindLinkage)

	// ErrParentHashMismatch indicates a header checked against a parent
	// other than the one it names.
	ErrParentHashMismatch = newRuleError("ErrParentHashMismatch", KindLinkage)

	// ErrInvalidBlockNumber indicates a block number that is not exactly one
	// more than its parent's.
	ErrInvalidBlockNumber = newRuleError("ErrInvalidBlockNumber", KindLinkage)

	// ErrTimestampNotIncreasing indicates a timestamp that is not greater
	// than the parent's.
	ErrTimestampNotIncreasing = newRuleError("ErrTimestampNotIncreasing", KindConsensusRule)

	// ErrUnexpectedDifficulty indicates a difficulty that differs from the one
	// the active rule set calculates.
	ErrUnexpectedDifficulty = newRuleError("ErrUnexpectedDifficulty", KindConsensusRule)

	// ErrInvalidMixHash indicates a mix hash that does not match the seal and nonce.
	ErrInvalidMixHash = newRuleError("ErrInvalidMixHash", KindConsensusRule)

	// ErrInsufficientProofOfWork indicates a proof of work value above the
	// target implied by the difficulty.
	ErrInsufficientProofOfWork = newRuleError("ErrInsufficientProofOfWork", KindConsensusRule)

	// ErrTooManyOmmers indicates a block with more ommers than allowed.
	ErrTooManyOmmers = newRuleError("ErrTooManyOmmers", KindConsensusRule)

	// ErrDuplicateOmmer indicates the same ommer referenced twice in one block.
	ErrDuplicateOmmer = newRuleError("ErrDuplicateOmmer", KindConsensusRule)

	// ErrOmmerIsAncestor indicates an ommer that is an ancestor of the block.
	ErrOmmerIsAncestor = newRuleError("ErrOmmerIsAncestor", KindConsensusRule)

	// ErrOmmerAlreadyIncluded indicates an ommer that an ancestor within the
	// depth window already references.
	ErrOmmerAlreadyIncluded = newRuleError("ErrOmmerAlreadyIncluded", KindConsensusRule)

	// ErrOmmerOutOfWindow indicates an ommer whose parent is not an ancestor
	// within the allowed depth.
	ErrOmmerOutOfWindow = newRuleError("ErrOmmerOutOfWindow", KindConsensusRule)

	// ErrInvalidOmmerHeader indicates an ommer header that fails header
	// validation against its own parent.
	ErrInvalidOmmerHeader = newRuleError("ErrInvalidOmmerHeader", KindConsensusRule)

	// ErrInvalidGasLimit indicates a gas limit that moved too far from the
	// parent's gas limit.
	ErrInvalidGasLimit = newRuleError("ErrInvalidGasLimit", KindConsensusRule)

	// ErrGasLimitTooLow indicates a gas limit below the rule set's minimum.
	ErrGasLimitTooLow = newRuleError("ErrGasLimitTooLow", KindConsensusRule)

	// ErrBadDAOExtraData indicates a block in the DAO fork window without the
	// fork marker in its extra data.
	ErrBadDAOExtraData = newRuleError("ErrBadDAOExtraData", KindConsensusRule)

	// ErrInvalidGasUsed indicates the header's gas used differs from the gas
	// consumed by executing the block.
	ErrInvalidGasUsed = newRuleError("ErrInvalidGasUsed", KindConsensusRule)

	// ErrBadStateRoot indicates the header's state root differs from the
	// root of the state computed by executing the block.
	ErrBadStateRoot = newRuleError("ErrBadStateRoot", KindConsensusRule)

	// ErrBadReceiptRoot indicates the header's receipt root differs from the
	// root of the computed receipts.
	ErrBadReceiptRoot = newRuleError("ErrBadReceiptRoot", KindConsensusRule)

	// ErrBadLogsBloom indicates the header's bloom differs from the union of
	// the computed receipt blooms.
	ErrBadLogsBloom = newRuleError("ErrBadLogsBloom", KindConsensusRule)

	// ErrInvalidPublicKey indicates a transaction public key that can not be parsed.
	ErrInvalidPublicKey = newRuleError("ErrInvalidPublicKey", KindTransactionValidation)

	// ErrInvalidSignature indicates a transaction signature that does not
	// verify against the transaction's public key.
	ErrInvalidSignature = newRuleError("ErrInvalidSignature", KindTransactionValidation)

	// ErrInvalidNonce indicates a transaction nonce that differs from the
	// sender's account nonce.
	ErrInvalidNonce = newRuleError("ErrInvalidNonce", KindTransactionValidation)

	// ErrNonceOverflow indicates a sender whose nonce can not be incremented.
	ErrNonceOverflow = newRuleError("ErrNonceOverflow", KindTransactionValidation)

	// ErrInsufficientFunds indicates a sender that can not pay the upfront
	// gas cost plus the transferred value.
	ErrInsufficientFunds = newRuleError("ErrInsufficientFunds", KindTransactionValidation)

	// ErrIntrinsicGas indicates a transaction gas limit below its intrinsic gas.
	ErrIntrinsicGas = newRuleError("ErrIntrinsicGas", KindTransactionValidation)

	// ErrBlockGasLimitReached indicates a transaction whose gas limit does not
	// fit in the gas remaining in the block.
	ErrBlockGasLimitReached = newRuleError("ErrBlockGasLimitReached", KindTransactionValidation)

	// ErrNegativeValue indicates a transaction with a negative value or gas price.
	ErrNegativeValue = newRuleError("ErrNegativeValue", KindTransactionValidation)
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block or transaction failed due to one of the many validation
// rules. The caller can use type assertions to determine if a failure was
// specifically due to a rule violation.
type RuleError struct {
	message string
	kind    ErrorKind
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

// Kind returns the classification of the rule error
func (e RuleError) Kind() ErrorKind {
	return e.kind
}

func newRuleError(message string, kind ErrorKind) RuleError {
	return RuleError{message: message, kind: kind, inner: nil}
}

// IsRuleError returns whether err is, or wraps, a RuleError
func IsRuleError(err error) bool {
	var ruleError RuleError
	return errors.As(err, &ruleError)
}

// KindOf returns the kind of the outermost RuleError in err's chain, and
// false if err is not a rule error
func KindOf(err error) (ErrorKind, bool) {
	var ruleError RuleError
	if !errors.As(err, &ruleError) {
		return 0, false
	}
	return ruleError.kind, true
}

// ErrInvalidTransaction identifies the transaction that made a block fail
// transaction validation. It unwraps to the rule that was violated.
type ErrInvalidTransaction struct {
	Index         int
	TransactionID *externalapi.DomainHash
	Err           error
}

func (e ErrInvalidTransaction) Error() string {
	return fmt.Sprintf("transaction #%d (%s): %s", e.Index, e.TransactionID, e.Err)
}

// Unwrap satisfies the errors.Unwrap interface
func (e ErrInvalidTransaction) Unwrap() error {
	return e.Err
}

// NewErrInvalidTransaction creates a new ErrInvalidTransaction error wrapped in a RuleError
func NewErrInvalidTransaction(index int, transactionID *externalapi.DomainHash, err error) error {
	return errors.WithStack(RuleError{
		message: "ErrInvalidTransaction",
		kind:    KindTransactionValidation,
		inner:   ErrInvalidTransaction{Index: index, TransactionID: transactionID, Err: err},
	})
}

// AccountMismatch describes a single difference between an expected and an
// actual account.
type AccountMismatch struct {
	Address  externalapi.DomainAddress
	Field    string
	Expected string
	Actual   string
}

func (mismatch AccountMismatch) String() string {
	return fmt.Sprintf("%s %s: expected %s, got %s",
		mismatch.Address, mismatch.Field, mismatch.Expected, mismatch.Actual)
}

// ErrStateMismatch lists every difference found while verifying a state
type ErrStateMismatch struct {
	Mismatches []AccountMismatch
}

func (e ErrStateMismatch) Error() string {
	descriptions := make([]string, len(e.Mismatches))
	for i, mismatch := range e.Mismatches {
		descriptions[i] = mismatch.String()
	}
	return fmt.Sprintf("%d mismatches: [%s]", len(e.Mismatches), strings.Join(descriptions, "; "))
}

// NewErrStateMismatch creates a new ErrStateMismatch error wrapped in a RuleError
func NewErrStateMismatch(mismatches []AccountMismatch) error {
	return errors.WithStack(RuleError{
		message: "ErrStateMismatch",
		kind:    KindStateMismatch,
		inner:   ErrStateMismatch{Mismatches: mismatches},
	})
}
