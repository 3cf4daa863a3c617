package contract_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-session/internal/contract"
	"wallet-session/internal/model"
	"wallet-session/internal/provider"
	"wallet-session/internal/provider/providertest"
	"wallet-session/pkg/errno"
)

var (
	contractAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	sender       = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	receiver     = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

func TestABIHasContractMethods(t *testing.T) {
	parsed := contract.ABI()
	for _, name := range []string{contract.MethodAddToBlockchain, contract.MethodGetAllTransactions, contract.MethodGetTransactionCounter} {
		_, ok := parsed.Methods[name]
		assert.True(t, ok, "missing method %s", name)
	}
	_, ok := parsed.Events["Transfer"]
	assert.True(t, ok)
}

func TestABIMethodByID(t *testing.T) {
	parsed := contract.ABI()
	data, err := parsed.Pack(contract.MethodAddToBlockchain, receiver, big.NewInt(1), "m", "k")
	require.NoError(t, err)

	method, err := contract.ABI().MethodById(data[:4])
	require.NoError(t, err)
	assert.Equal(t, contract.MethodAddToBlockchain, method.Name)
	assert.Same(t, parsed, contract.ABI())
}

func TestTransactionCounter(t *testing.T) {
	w := providertest.New(contractAddr)
	w.Transfers = make([]model.Transfer, 3)

	h := contract.New(w, contractAddr, common.Address{}, time.Millisecond)
	count, err := h.TransactionCounter(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestAllTransactions(t *testing.T) {
	w := providertest.New(contractAddr)
	w.Transfers = []model.Transfer{
		{Sender: sender, Receiver: receiver, Amount: big.NewInt(1000), Message: "a", Timestamp: big.NewInt(1), Keyword: "x"},
		{Sender: receiver, Receiver: sender, Amount: big.NewInt(2000), Message: "b", Timestamp: big.NewInt(2), Keyword: "y"},
	}

	h := contract.New(w, contractAddr, sender, time.Millisecond)
	got, err := h.AllTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, sender, got[0].Sender)
	assert.Equal(t, receiver, got[0].Receiver)
	assert.Equal(t, int64(1000), got[0].Amount.Int64())
	assert.Equal(t, "a", got[0].Message)
	assert.Equal(t, int64(1), got[0].Timestamp.Int64())
	assert.Equal(t, "x", got[0].Keyword)
	assert.Equal(t, "y", got[1].Keyword)
}

func TestCallWithoutContractCode(t *testing.T) {
	w := providertest.New(contractAddr)
	other := common.HexToAddress("0x0000000000000000000000000000000000000001")

	_, err := contract.New(w, other, sender, time.Millisecond).TransactionCounter(context.Background())
	assert.ErrorIs(t, err, errno.ErrProvider)
}

func TestAddToBlockchainAndWait(t *testing.T) {
	w := providertest.New(contractAddr)
	w.PendingPolls = 2

	h := contract.New(w, contractAddr, sender, time.Millisecond)
	pending, err := h.AddToBlockchain(context.Background(), receiver, big.NewInt(42), "hello", "wave")
	require.NoError(t, err)
	assert.NotEqual(t, common.Hash{}, pending.Hash)

	receipt, err := pending.Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, receipt.Succeeded())
	// 两次 null 收据 + 一次成功
	assert.Equal(t, 3, w.CountCalls(provider.MethodTransactionReceipt))

	require.Len(t, w.Transfers, 1)
	assert.Equal(t, sender, w.Transfers[0].Sender)
	assert.Equal(t, receiver, w.Transfers[0].Receiver)
	assert.Equal(t, int64(42), w.Transfers[0].Amount.Int64())
	assert.Equal(t, "hello", w.Transfers[0].Message)
	assert.Equal(t, "wave", w.Transfers[0].Keyword)
}

func TestWaitReverted(t *testing.T) {
	w := providertest.New(contractAddr)
	w.RevertRecords = true

	h := contract.New(w, contractAddr, sender, time.Millisecond)
	pending, err := h.AddToBlockchain(context.Background(), receiver, big.NewInt(1), "m", "k")
	require.NoError(t, err)

	_, err = pending.Wait(context.Background())
	assert.ErrorIs(t, err, errno.ErrContractRevert)
	assert.Empty(t, w.Transfers)
}

func TestWaitStopsOnContextCancel(t *testing.T) {
	w := providertest.New(contractAddr)
	w.PendingPolls = 1 << 30

	h := contract.New(w, contractAddr, sender, time.Millisecond)
	pending, err := h.AddToBlockchain(context.Background(), receiver, big.NewInt(1), "m", "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = pending.Wait(ctx)
	assert.ErrorIs(t, err, errno.ErrNetwork)
}
