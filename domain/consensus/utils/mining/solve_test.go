package mining

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/utils/pow"
)

func TestSolveBlock(t *testing.T) {
	block := &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			ParentHash: *externalapi.NewZeroHash(),
			Difficulty: big.NewInt(64),
			Number:     7,
			GasLimit:   5000,
			Timestamp:  70,
		},
	}
	SolveBlock(block, rand.New(rand.NewSource(7)))

	err := pow.CheckProofOfWork(block.Header)
	if err != nil {
		t.Fatalf("solved block failed the proof of work check: %+v", err)
	}
}
