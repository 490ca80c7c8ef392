package externalapi

// BloomSize is the size of a logs bloom filter in bytes.
const BloomSize = 256

// Bloom is a 2048-bit bloom filter over log addresses and topics.
type Bloom [BloomSize]byte

// Or sets every bit that is set in other.
func (bloom *Bloom) Or(other *Bloom) {
	for i := range bloom {
		bloom[i] |= other[i]
	}
}
