package model

import "github.com/blockforge/forkd/domain/consensus/model/externalapi"

// StateVerifier compares an account state against an expected snapshot
type StateVerifier interface {
	VerifyState(expected map[externalapi.DomainAddress]*externalapi.Account, actual AccountReader) error
}
