package hashes

import "testing"

func TestWritersAreDomainSeparated(t *testing.T) {
	constructors := map[string]func() HashWriter{
		"block":        NewBlockHashWriter,
		"seal":         NewSealHashWriter,
		"pow":          NewPoWHashWriter,
		"ommers":       NewOmmersHashWriter,
		"transaction":  NewTransactionIDWriter,
		"signing":      NewTransactionSigningHashWriter,
		"receipt":      NewReceiptHashWriter,
		"merkle":       NewMerkleBranchHashWriter,
		"address":      NewAddressHashWriter,
		"contract":     NewContractAddressHashWriter,
		"bloom":        NewBloomHashWriter,
		"deposit tree": NewDepositTreeHashWriter,
		"deposit leaf": NewDepositLeafHashWriter,
	}

	seen := make(map[string]string)
	for name, constructor := range constructors {
		writer := constructor()
		writer.InfallibleWrite([]byte("same input"))
		hash := writer.Finalize().String()
		if other, ok := seen[hash]; ok {
			t.Fatalf("%s and %s writers produced the same hash", name, other)
		}
		seen[hash] = name

		again := constructor()
		again.InfallibleWrite([]byte("same input"))
		if again.Finalize().String() != hash {
			t.Fatalf("%s writer is not deterministic", name)
		}
	}
}
