package pow

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

func testHeader() *externalapi.DomainBlockHeader {
	return &externalapi.DomainBlockHeader{
		ParentHash: *externalapi.NewZeroHash(),
		Difficulty: big.NewInt(8),
		Number:     1,
		GasLimit:   5000,
		Timestamp:  10,
	}
}

func solve(header *externalapi.DomainBlockHeader) {
	rd := rand.New(rand.NewSource(0))
	for {
		header.Nonce = rd.Uint64()
		mix := CalculateMixHash(header)
		if CheckMix(mix, header.Difficulty) {
			header.MixHash = *mix
			return
		}
	}
}

func TestCheckProofOfWork(t *testing.T) {
	header := testHeader()
	solve(header)
	err := CheckProofOfWork(header)
	if err != nil {
		t.Fatalf("CheckProofOfWork: %+v", err)
	}

	wrongMix := header.Clone()
	wrongMix.MixHash = *externalapi.NewZeroHash()
	err = CheckProofOfWork(wrongMix)
	if !errors.Is(err, ruleerrors.ErrInvalidMixHash) {
		t.Fatalf("expected ErrInvalidMixHash, got %+v", err)
	}

	missingDifficulty := header.Clone()
	missingDifficulty.Difficulty = big.NewInt(0)
	err = CheckProofOfWork(missingDifficulty)
	if !errors.Is(err, ruleerrors.ErrMissingDifficulty) {
		t.Fatalf("expected ErrMissingDifficulty, got %+v", err)
	}
}

func TestCheckProofOfWorkInsufficient(t *testing.T) {
	header := testHeader()
	// Search for a nonce whose mix fails the difficulty and seal it honestly.
	header.Difficulty = big.NewInt(1 << 20)
	for nonce := uint64(0); ; nonce++ {
		header.Nonce = nonce
		mix := CalculateMixHash(header)
		if !CheckMix(mix, header.Difficulty) {
			header.MixHash = *mix
			break
		}
	}
	err := CheckProofOfWork(header)
	if !errors.Is(err, ruleerrors.ErrInsufficientProofOfWork) {
		t.Fatalf("expected ErrInsufficientProofOfWork, got %+v", err)
	}
}

func TestTargetOfDifficultyOne(t *testing.T) {
	if !CheckMix(externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	}), big.NewInt(1)) {
		t.Fatalf("every mix should satisfy difficulty 1")
	}
}
