package event

// TransactionRecordedEvent 交易元数据已上链确认
// Topic: session_events_transaction (mq.topic)
type TransactionRecordedEvent struct {
	TxHash       string `json:"tx_hash"`       // addToBlockchain 交易
	TransferHash string `json:"transfer_hash"` // 原生转账交易
	From         string `json:"from"`
	To           string `json:"to"`
	AmountWei    string `json:"amount_wei"` // Decimal string
	Message      string `json:"message"`
	Keyword      string `json:"keyword"`
	Counter      uint64 `json:"counter"` // 确认后的合约计数
}
