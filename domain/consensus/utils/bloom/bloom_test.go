package bloom

import (
	"testing"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

func TestLogsBloom(t *testing.T) {
	topic := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1, 2, 3})
	log := &externalapi.Log{Address: externalapi.DomainAddress{0xaa}, Topics: []*externalapi.DomainHash{topic}}
	bloom := LogsBloom([]*externalapi.Log{log})

	if !Test(&bloom, log.Address[:]) {
		t.Fatalf("bloom does not contain the log address")
	}
	if !Test(&bloom, topic.ByteSlice()) {
		t.Fatalf("bloom does not contain the log topic")
	}

	setBits := 0
	for _, b := range bloom {
		for ; b != 0; b &= b - 1 {
			setBits++
		}
	}
	if setBits == 0 || setBits > 2*bitsPerItem {
		t.Fatalf("expected between 1 and %d set bits, got %d", 2*bitsPerItem, setBits)
	}

	empty := LogsBloom(nil)
	if empty != (externalapi.Bloom{}) {
		t.Fatalf("expected the bloom of no logs to be empty")
	}
}

func TestReceiptsBloom(t *testing.T) {
	first := &externalapi.DomainReceipt{}
	Add(&first.Bloom, []byte("first"))
	second := &externalapi.DomainReceipt{}
	Add(&second.Bloom, []byte("second"))

	union := ReceiptsBloom([]*externalapi.DomainReceipt{first, second})
	if !Test(&union, []byte("first")) || !Test(&union, []byte("second")) {
		t.Fatalf("union bloom is missing an item")
	}
}
