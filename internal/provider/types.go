package provider

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TransactionArgs 是 eth_sendTransaction / eth_call 的参数对象
// 数值字段都是 hex 字符串, 空字段不序列化
type TransactionArgs struct {
	From  string         `json:"from,omitempty"`
	To    string         `json:"to,omitempty"`
	Gas   string         `json:"gas,omitempty"`
	Value *hexutil.Big   `json:"value,omitempty"`
	Data  *hexutil.Bytes `json:"data,omitempty"`
}

// Receipt 只保留会话层关心的收据字段
type Receipt struct {
	TransactionHash string          `json:"transactionHash"`
	BlockNumber     *hexutil.Big    `json:"blockNumber"`
	Status          *hexutil.Uint64 `json:"status"`
}

// Succeeded reports a post-Byzantium success status (or a legacy receipt).
func (r *Receipt) Succeeded() bool {
	return r.Status == nil || uint64(*r.Status) == 1
}
