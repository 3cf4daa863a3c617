package model

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftWith(t *testing.T) {
	d := DraftTransaction{AddressTo: "0xDEF", Amount: "1", Keyword: "k", Message: "m"}

	got, ok := d.With(FieldAmount, "2.5")
	assert.True(t, ok)
	assert.Equal(t, DraftTransaction{AddressTo: "0xDEF", Amount: "2.5", Keyword: "k", Message: "m"}, got)
	// 原值不变
	assert.Equal(t, "1", d.Amount)

	_, ok = d.With("gas", "1")
	assert.False(t, ok)
}

func TestNewTransactionRecord(t *testing.T) {
	wei, _ := new(big.Int).SetString("250000000000000000", 10)
	raw := Transfer{
		Sender:    common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		Receiver:  common.HexToAddress("0x00000000000000000000000000000000000000bb"),
		Amount:    wei,
		Message:   "gm",
		Timestamp: big.NewInt(1700000000),
		Keyword:   "wave",
	}

	rec := NewTransactionRecord(raw)

	assert.Equal(t, raw.Sender.Hex(), rec.AddressFrom)
	assert.Equal(t, raw.Receiver.Hex(), rec.AddressTo)
	assert.Equal(t, "gm", rec.Message)
	assert.Equal(t, "wave", rec.Keyword)
	assert.True(t, rec.Amount.Equal(decimal.RequireFromString("0.25")))
	assert.Equal(t, time.Unix(1700000000, 0).Local().Format(DisplayTimeLayout), rec.Timestamp)
}

func TestFormatTimestampRange(t *testing.T) {
	huge, _ := new(big.Int).SetString("100000000000000000000", 10) // 1e20
	tests := []struct {
		name    string
		seconds *big.Int
		want    string
	}{
		{"Epoch", big.NewInt(0), time.Unix(0, 0).Local().Format(DisplayTimeLayout)},
		{"Normal", big.NewInt(1700000000), time.Unix(1700000000, 0).Local().Format(DisplayTimeLayout)},
		{"Last display second", maxDisplaySeconds, time.Unix(maxDisplaySeconds.Int64(), 0).Local().Format(DisplayTimeLayout)},
		{"Nil", nil, ""},
		{"Negative", big.NewInt(-1), ""},
		{"Overflows milliseconds", new(big.Int).Lsh(big.NewInt(1), 62), ""},
		{"Beyond int64", huge, ""},
		{"Max uint256", new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimestamp(tt.seconds))
		})
	}
}

func TestTransactionRecordJSONAmountIsNumber(t *testing.T) {
	rec := TransactionRecord{AddressTo: "0xbb", Timestamp: "t", Amount: decimal.RequireFromString("1.5")}

	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"addressTo":"0xbb","addressFrom":"","timestamp":"t","message":"","keyword":"","amount":1.5}`, string(raw))

	var back TransactionRecord
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.Amount.Equal(rec.Amount))

	small, err := json.Marshal(TransactionRecord{Amount: decimal.NewFromBigInt(big.NewInt(3), -18)})
	require.NoError(t, err)
	assert.Contains(t, string(small), `"amount":0.000000000000000003`)
}
