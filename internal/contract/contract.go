package contract

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"wallet-session/internal/model"
	"wallet-session/internal/provider"
	"wallet-session/pkg/errno"
)

// DefaultPollInterval 是等待交易收据时的轮询间隔
const DefaultPollInterval = time.Second

// Handle 绑定 Provider + 签名账户 + 合约地址 + ABI
// 每次操作都重新创建，不跨调用缓存
type Handle struct {
	provider     provider.Provider
	address      common.Address
	from         common.Address
	abi          abi.ABI
	pollInterval time.Duration
}

// New binds the Transactions contract at address. from is the signing
// account used for writes; it may be zero for read-only handles.
func New(p provider.Provider, address, from common.Address, pollInterval time.Duration) *Handle {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Handle{
		provider:     p,
		address:      address,
		from:         from,
		abi:          parsedABI,
		pollInterval: pollInterval,
	}
}

// Address returns the bound contract address.
func (h *Handle) Address() common.Address {
	return h.address
}

// TransactionCounter 读取合约里的全局交易计数
func (h *Handle) TransactionCounter(ctx context.Context) (uint64, error) {
	out, err := h.call(ctx, MethodGetTransactionCounter)
	if err != nil {
		return 0, err
	}

	count := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	if !count.IsUint64() {
		return 0, errno.New(errno.ErrProvider, MethodGetTransactionCounter, fmt.Errorf("counter %s overflows uint64", count))
	}
	return count.Uint64(), nil
}

// AllTransactions 读取合约中记录的全部交易
func (h *Handle) AllTransactions(ctx context.Context) ([]model.Transfer, error) {
	out, err := h.call(ctx, MethodGetAllTransactions)
	if err != nil {
		return nil, err
	}

	transfers := *abi.ConvertType(out[0], new([]model.Transfer)).(*[]model.Transfer)
	return transfers, nil
}

// AddToBlockchain 调用合约写入交易元数据 (receiver, amount, message, keyword)
// 返回一个待确认交易，调用方用 Wait 等待上链
func (h *Handle) AddToBlockchain(ctx context.Context, receiver common.Address, amount *big.Int, message, keyword string) (*PendingTransaction, error) {
	data, err := h.abi.Pack(MethodAddToBlockchain, receiver, amount, message, keyword)
	if err != nil {
		return nil, errno.New(errno.ErrInvalidAmount, MethodAddToBlockchain, err)
	}

	input := hexutil.Bytes(data)
	hash, err := provider.SendTransaction(ctx, h.provider, provider.TransactionArgs{
		From: h.from.Hex(),
		To:   h.address.Hex(),
		Data: &input,
	})
	if err != nil {
		return nil, err
	}

	return &PendingTransaction{
		Hash:         common.HexToHash(hash),
		provider:     h.provider,
		pollInterval: h.pollInterval,
	}, nil
}

// call 执行只读调用 (eth_call) 并按 ABI 解码返回值
func (h *Handle) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := h.abi.Pack(method, args...)
	if err != nil {
		return nil, errno.New(errno.ErrProvider, method, err)
	}

	input := hexutil.Bytes(data)
	msg := provider.TransactionArgs{To: h.address.Hex(), Data: &input}
	if h.from != (common.Address{}) {
		msg.From = h.from.Hex()
	}

	var result hexutil.Bytes
	if err := h.provider.CallContext(ctx, &result, provider.MethodCall, msg, "latest"); err != nil {
		return nil, provider.Classify(method, err)
	}
	if len(result) == 0 {
		// 地址上没有合约代码时节点返回 0x
		return nil, errno.New(errno.ErrProvider, method, fmt.Errorf("no contract code at %s", h.address.Hex()))
	}

	out, err := h.abi.Unpack(method, result)
	if err != nil {
		return nil, errno.New(errno.ErrProvider, method, fmt.Errorf("decode output: %w", err))
	}
	return out, nil
}
