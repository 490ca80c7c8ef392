package externalapi

import "bytes"

// ReceiptStatus is the execution outcome of a transaction.
type ReceiptStatus byte

const (
	// ReceiptStatusFailed marks a transaction that reverted during execution.
	// It still consumed gas.
	ReceiptStatusFailed ReceiptStatus = iota

	// ReceiptStatusSuccessful marks a transaction whose effects were applied.
	ReceiptStatusSuccessful
)

func (status ReceiptStatus) String() string {
	if status == ReceiptStatusSuccessful {
		return "Successful"
	}
	return "Failed"
}

// Log is an event emitted while executing a transaction.
type Log struct {
	Address DomainAddress
	Topics  []*DomainHash
	Data    []byte
}

// Clone returns a clone of Log
func (log *Log) Clone() *Log {
	data := make([]byte, len(log.Data))
	copy(data, log.Data)
	return &Log{
		Address: log.Address,
		Topics:  CloneHashes(log.Topics),
		Data:    data,
	}
}

// Equal returns whether log equals to other
func (log *Log) Equal(other *Log) bool {
	if log == nil || other == nil {
		return log == other
	}
	return log.Address == other.Address &&
		HashesEqual(log.Topics, other.Topics) &&
		bytes.Equal(log.Data, other.Data)
}

// DomainReceipt summarizes the execution of a single transaction.
type DomainReceipt struct {
	Status            ReceiptStatus
	GasUsed           uint64
	CumulativeGasUsed uint64
	Bloom             Bloom
	Logs              []*Log
}

// Clone returns a clone of DomainReceipt
func (receipt *DomainReceipt) Clone() *DomainReceipt {
	logs := make([]*Log, len(receipt.Logs))
	for i, log := range receipt.Logs {
		logs[i] = log.Clone()
	}
	return &DomainReceipt{
		Status:            receipt.Status,
		GasUsed:           receipt.GasUsed,
		CumulativeGasUsed: receipt.CumulativeGasUsed,
		Bloom:             receipt.Bloom,
		Logs:              logs,
	}
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = DomainReceipt{ReceiptStatusFailed, 0, 0, Bloom{}, []*Log{}}

// Equal returns whether receipt equals to other
func (receipt *DomainReceipt) Equal(other *DomainReceipt) bool {
	if receipt == nil || other == nil {
		return receipt == other
	}
	if receipt.Status != other.Status ||
		receipt.GasUsed != other.GasUsed ||
		receipt.CumulativeGasUsed != other.CumulativeGasUsed ||
		receipt.Bloom != other.Bloom ||
		len(receipt.Logs) != len(other.Logs) {
		return false
	}
	for i, log := range receipt.Logs {
		if !log.Equal(other.Logs[i]) {
			return false
		}
	}
	return true
}
