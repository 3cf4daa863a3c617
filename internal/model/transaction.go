package model

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"wallet-session/pkg/units"
)

// DisplayTimeLayout 是交易记录时间戳的展示格式 (本地时区)
const DisplayTimeLayout = "1/2/2006, 3:04:05 PM"

// DraftTransaction 是交易表单的草稿, 金额是人类可读的 ether 单位
type DraftTransaction struct {
	AddressTo string `json:"addressTo"`
	Amount    string `json:"amount"`
	Keyword   string `json:"keyword"`
	Message   string `json:"message"`
}

// Form field names accepted by the field setter.
const (
	FieldAddressTo = "addressTo"
	FieldAmount    = "amount"
	FieldKeyword   = "keyword"
	FieldMessage   = "message"
)

// IsFormField reports whether field names one of the draft fields.
func IsFormField(field string) bool {
	switch field {
	case FieldAddressTo, FieldAmount, FieldKeyword, FieldMessage:
		return true
	}
	return false
}

// With returns a copy of d with one named field replaced.
func (d DraftTransaction) With(field, value string) (DraftTransaction, bool) {
	switch field {
	case FieldAddressTo:
		d.AddressTo = value
	case FieldAmount:
		d.Amount = value
	case FieldKeyword:
		d.Keyword = value
	case FieldMessage:
		d.Message = value
	default:
		return d, false
	}
	return d, true
}

// Transfer 是合约 getAllTransactions() 返回的原始记录
// 字段顺序和类型必须与合约 TransferStruct 完全一致 (ABI 解码依赖)
type Transfer struct {
	Sender    common.Address
	Receiver  common.Address
	Amount    *big.Int // wei
	Message   string
	Timestamp *big.Int // 秒
	Keyword   string
}

// TransactionRecord 是给界面展示用的交易记录
type TransactionRecord struct {
	AddressTo   string          `json:"addressTo"`
	AddressFrom string          `json:"addressFrom"`
	Timestamp   string          `json:"timestamp"`
	Message     string          `json:"message"`
	Keyword     string          `json:"keyword"`
	Amount      decimal.Decimal `json:"amount"`
}

// maxDisplaySeconds 是能按 DisplayTimeLayout 展示的最大时间戳 (9999-12-31 UTC)
var maxDisplaySeconds = big.NewInt(time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC).Unix())

// MarshalJSON writes Amount as a JSON number instead of decimal's quoted string.
func (r TransactionRecord) MarshalJSON() ([]byte, error) {
	type plain TransactionRecord
	return json.Marshal(struct {
		plain
		Amount json.Number `json:"amount"`
	}{plain(r), json.Number(r.Amount.String())})
}

// NewTransactionRecord projects a raw on-chain transfer into display form:
// seconds become a local date-time string, wei become ether.
func NewTransactionRecord(t Transfer) TransactionRecord {
	return TransactionRecord{
		AddressTo:   t.Receiver.Hex(),
		AddressFrom: t.Sender.Hex(),
		Timestamp:   FormatTimestamp(t.Timestamp),
		Message:     t.Message,
		Keyword:     t.Keyword,
		Amount:      units.FormatEther(t.Amount),
	}
}

// FormatTimestamp renders on-chain seconds in local time. A missing, negative
// or out-of-range uint256 value renders as "" rather than a wrapped date.
func FormatTimestamp(seconds *big.Int) string {
	if seconds == nil || seconds.Sign() < 0 || seconds.Cmp(maxDisplaySeconds) > 0 {
		return ""
	}
	return time.UnixMilli(seconds.Int64() * 1000).Local().Format(DisplayTimeLayout)
}
