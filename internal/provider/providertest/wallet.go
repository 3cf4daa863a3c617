// Package providertest provides an in-memory wallet provider that fronts a
// simulated Transactions contract. It is meant for tests.
package providertest

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"wallet-session/internal/contract"
	"wallet-session/internal/model"
	"wallet-session/internal/provider"
)

// Call is one recorded provider request.
type Call struct {
	Method string
	Args   []interface{}
}

// RPCError mimics a JSON-RPC error object returned by a wallet.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string  { return e.Message }
func (e *RPCError) ErrorCode() int { return e.Code }

// ValueTransfer is a plain eth_sendTransaction without calldata.
type ValueTransfer struct {
	From  string
	To    string
	Gas   string
	Value *big.Int
}

// Wallet 模拟一个注入的钱包 + 已部署的 Transactions 合约
type Wallet struct {
	mu sync.Mutex

	// Authorized 是 eth_accounts 返回的账户
	Authorized []string
	// Grantable 是用户在 eth_requestAccounts 弹窗里同意授权的账户
	Grantable []string

	Contract  common.Address
	Transfers []model.Transfer
	// PendingPolls 是收据返回 null 的次数，之后才算打包
	PendingPolls int
	// RevertRecords 让 addToBlockchain 的收据 status = 0
	RevertRecords bool
	// Errors 按方法名注入错误
	Errors map[string]error
	// OnCall 在每次请求进入时调用 (锁外)
	OnCall func(method string)
	Now    func() time.Time

	calls          []Call
	valueTransfers []ValueTransfer
	receipts       map[string]*receiptState
	nonce          uint64
}

type receiptState struct {
	pollsLeft int
	status    uint64
}

// New returns a wallet for the contract at address with no authorized accounts.
func New(address common.Address) *Wallet {
	return &Wallet{
		Contract: address,
		Errors:   map[string]error{},
		Now:      time.Now,
		receipts: map[string]*receiptState{},
	}
}

// Calls returns a copy of every request seen so far.
func (w *Wallet) Calls() []Call {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Call(nil), w.calls...)
}

// Methods returns the method names of every request seen so far.
func (w *Wallet) Methods() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	methods := make([]string, 0, len(w.calls))
	for _, c := range w.calls {
		methods = append(methods, c.Method)
	}
	return methods
}

// ValueTransfers returns the plain value transfers requested so far.
func (w *Wallet) ValueTransfers() []ValueTransfer {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]ValueTransfer(nil), w.valueTransfers...)
}

// CountCalls counts requests for method, or for eth_call to a contract method
// when method is a contract method name.
func (w *Wallet) CountCalls(method string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, c := range w.calls {
		if c.Method == method {
			n++
			continue
		}
		if c.Method == provider.MethodCall && contractMethod(c.Args) == method {
			n++
		}
	}
	return n
}

func (w *Wallet) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if w.OnCall != nil {
		w.OnCall(method)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.calls = append(w.calls, Call{Method: method, Args: args})
	if err, ok := w.Errors[method]; ok && err != nil {
		return err
	}
	if name := contractMethod(args); method == provider.MethodCall && name != "" {
		if err, ok := w.Errors[name]; ok && err != nil {
			return err
		}
	}

	var (
		out interface{}
		err error
	)
	switch method {
	case provider.MethodAccounts:
		out = w.Authorized
	case provider.MethodRequestAccounts:
		w.Authorized = append([]string(nil), w.Grantable...)
		out = w.Authorized
	case provider.MethodSendTransaction:
		out, err = w.sendTransaction(args)
	case provider.MethodCall:
		out, err = w.call(args)
	case provider.MethodTransactionReceipt:
		out, err = w.receipt(args)
	default:
		return &RPCError{Code: provider.CodeMethodNotFound, Message: "the method " + method + " does not exist/is not available"}
	}
	if err != nil {
		return err
	}
	return assign(result, out)
}

func (w *Wallet) sendTransaction(args []interface{}) (interface{}, error) {
	tx, err := txArgs(args)
	if err != nil {
		return nil, err
	}

	w.nonce++
	hash := fmt.Sprintf("0x%064x", w.nonce)
	state := &receiptState{pollsLeft: w.PendingPolls, status: 1}
	w.receipts[hash] = state

	if tx.Data == nil || len(*tx.Data) == 0 {
		var value *big.Int
		if tx.Value != nil {
			value = tx.Value.ToInt()
		}
		w.valueTransfers = append(w.valueTransfers, ValueTransfer{From: tx.From, To: tx.To, Gas: tx.Gas, Value: value})
		return hash, nil
	}

	data := *tx.Data
	if len(data) < 4 {
		return nil, &RPCError{Code: 3, Message: "execution reverted"}
	}
	method, err := contract.ABI().MethodById(data[:4])
	if err != nil || method.Name != contract.MethodAddToBlockchain {
		return nil, &RPCError{Code: 3, Message: "execution reverted"}
	}
	in, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, &RPCError{Code: -32602, Message: err.Error()}
	}

	if w.RevertRecords {
		state.status = 0
		return hash, nil
	}
	w.Transfers = append(w.Transfers, model.Transfer{
		Sender:    common.HexToAddress(tx.From),
		Receiver:  in[0].(common.Address),
		Amount:    in[1].(*big.Int),
		Message:   in[2].(string),
		Timestamp: big.NewInt(w.Now().Unix()),
		Keyword:   in[3].(string),
	})
	return hash, nil
}

func (w *Wallet) call(args []interface{}) (interface{}, error) {
	tx, err := txArgs(args)
	if err != nil {
		return nil, err
	}
	if common.HexToAddress(tx.To) != w.Contract {
		return hexutil.Bytes{}, nil
	}
	if tx.Data == nil || len(*tx.Data) < 4 {
		return nil, &RPCError{Code: 3, Message: "execution reverted"}
	}

	method, err := contract.ABI().MethodById((*tx.Data)[:4])
	if err != nil {
		return nil, &RPCError{Code: 3, Message: "execution reverted"}
	}

	var packed []byte
	switch method.Name {
	case contract.MethodGetTransactionCounter:
		packed, err = method.Outputs.Pack(big.NewInt(int64(len(w.Transfers))))
	case contract.MethodGetAllTransactions:
		packed, err = method.Outputs.Pack(w.Transfers)
	default:
		return nil, &RPCError{Code: 3, Message: "execution reverted"}
	}
	if err != nil {
		return nil, err
	}
	return hexutil.Bytes(packed), nil
}

func (w *Wallet) receipt(args []interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, &RPCError{Code: -32602, Message: "missing hash"}
	}
	hash, _ := args[0].(string)
	state, ok := w.receipts[hash]
	if !ok {
		return nil, nil
	}
	if state.pollsLeft > 0 {
		state.pollsLeft--
		return nil, nil
	}

	status := hexutil.Uint64(state.status)
	return &provider.Receipt{
		TransactionHash: hash,
		BlockNumber:     (*hexutil.Big)(big.NewInt(1)),
		Status:          &status,
	}, nil
}

// contractMethod 从 eth_call 参数里解出合约方法名
func contractMethod(args []interface{}) string {
	tx, err := txArgs(args)
	if err != nil || tx.Data == nil || len(*tx.Data) < 4 {
		return ""
	}
	method, err := contract.ABI().MethodById((*tx.Data)[:4])
	if err != nil {
		return ""
	}
	return method.Name
}

func txArgs(args []interface{}) (provider.TransactionArgs, error) {
	var tx provider.TransactionArgs
	if len(args) == 0 {
		return tx, &RPCError{Code: -32602, Message: "missing transaction object"}
	}
	if err := assign(&tx, args[0]); err != nil {
		return tx, err
	}
	return tx, nil
}

// assign 通过 JSON 往返赋值，和真实 RPC 客户端的解码行为一致
func assign(result interface{}, value interface{}) error {
	if result == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, result)
}
