package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"

	"wallet-session/pkg/errno"
)

// Provider 是注入进会话层的钱包 Provider 能力 (EIP-1193 的 request)
// *rpc.Client 直接满足这个接口; 测试里用假实现替换
type Provider interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// Wallet / node JSON-RPC methods used by the session.
const (
	MethodAccounts           = "eth_accounts"
	MethodRequestAccounts    = "eth_requestAccounts"
	MethodSendTransaction    = "eth_sendTransaction"
	MethodCall               = "eth_call"
	MethodTransactionReceipt = "eth_getTransactionReceipt"
)

// JSON-RPC / EIP-1193 error codes
const (
	CodeUserRejected    = 4001
	CodeUnauthorized    = 4100
	CodeMethodNotFound  = -32601
	CodeExecutionRevert = 3
)

// Dial 连接钱包节点; rawURL 为空时返回 (nil, nil)，表示环境里没有 Provider
func Dial(ctx context.Context, rawURL string) (*rpc.Client, error) {
	if rawURL == "" {
		return nil, nil
	}
	client, err := rpc.DialContext(ctx, rawURL)
	if err != nil {
		return nil, errno.New(errno.ErrNetwork, "dial "+rawURL, err)
	}
	return client, nil
}

// Classify maps a provider failure onto an error code, keeping the cause.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var wrapped *errno.Error
	if errors.As(err, &wrapped) {
		return err
	}

	return errno.New(codeFor(err), op, err)
}

func codeFor(err error) errno.Errno {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errno.ErrNetwork
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case CodeUserRejected, CodeUnauthorized:
			return errno.ErrUserRejected
		case CodeExecutionRevert:
			return errno.ErrContractRevert
		}
		if strings.Contains(strings.ToLower(rpcErr.Error()), "revert") {
			return errno.ErrContractRevert
		}
		return errno.ErrProvider
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return errno.ErrNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return errno.ErrNetwork
	}

	return errno.ErrProvider
}

// IsMethodNotFound reports whether the provider does not implement the method.
func IsMethodNotFound(err error) bool {
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr) && rpcErr.ErrorCode() == CodeMethodNotFound
}

// Accounts 静默查询已授权账户 (不会弹窗)
func Accounts(ctx context.Context, p Provider) ([]string, error) {
	var accounts []string
	if err := p.CallContext(ctx, &accounts, MethodAccounts); err != nil {
		return nil, Classify(MethodAccounts, err)
	}
	return accounts, nil
}

// RequestAccounts 请求授权 (可能弹窗让用户确认)
// 普通节点不实现 eth_requestAccounts，这时退回 eth_accounts
func RequestAccounts(ctx context.Context, p Provider) ([]string, error) {
	var accounts []string
	err := p.CallContext(ctx, &accounts, MethodRequestAccounts)
	if IsMethodNotFound(err) {
		return Accounts(ctx, p)
	}
	if err != nil {
		return nil, Classify(MethodRequestAccounts, err)
	}
	return accounts, nil
}

// SendTransaction asks the wallet to sign and broadcast tx, returning its hash.
func SendTransaction(ctx context.Context, p Provider, tx TransactionArgs) (string, error) {
	var hash string
	if err := p.CallContext(ctx, &hash, MethodSendTransaction, tx); err != nil {
		return "", Classify(MethodSendTransaction, err)
	}
	if hash == "" {
		return "", errno.New(errno.ErrProvider, MethodSendTransaction, fmt.Errorf("empty transaction hash"))
	}
	return hash, nil
}
