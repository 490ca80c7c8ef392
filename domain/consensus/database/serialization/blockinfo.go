package serialization

import (
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	blockInfoFieldNumber protowire.Number = iota + 1
	blockInfoFieldTotalDifficulty
	blockInfoFieldStatus
)

// EncodeBlockInfo returns the stored form of a block's chain metadata
func EncodeBlockInfo(info *externalapi.BlockInfo) []byte {
	b := appendVarintField(nil, blockInfoFieldNumber, info.Number)
	b = appendBigIntField(b, blockInfoFieldTotalDifficulty, info.TotalDifficulty)
	return appendVarintField(b, blockInfoFieldStatus, uint64(info.Status))
}

// DecodeBlockInfo decodes a block's chain metadata
func DecodeBlockInfo(infoBytes []byte) (*externalapi.BlockInfo, error) {
	d := newDecoder("block info", infoBytes)
	info := &externalapi.BlockInfo{Exists: true}

	var err error
	info.Number, err = d.uint64(blockInfoFieldNumber)
	if err != nil {
		return nil, err
	}
	info.TotalDifficulty, err = d.bigInt(blockInfoFieldTotalDifficulty)
	if err != nil {
		return nil, err
	}
	status, err := d.uint64(blockInfoFieldStatus)
	if err != nil {
		return nil, err
	}
	if status > uint64(externalapi.StatusCanonical) {
		return nil, d.deserializationError("unknown block status %d", status)
	}
	info.Status = externalapi.BlockStatus(status)

	err = d.finish()
	if err != nil {
		return nil, err
	}
	return info, nil
}
