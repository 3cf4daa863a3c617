package contract

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"wallet-session/internal/provider"
	"wallet-session/pkg/errno"
)

// PendingTransaction 是已广播但尚未确认的交易
type PendingTransaction struct {
	Hash common.Hash

	provider     provider.Provider
	pollInterval time.Duration
}

// Wait 轮询收据直到交易被打包; 只停止等待，不会取消已广播的交易
func (p *PendingTransaction) Wait(ctx context.Context) (*provider.Receipt, error) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		var receipt *provider.Receipt
		err := p.provider.CallContext(ctx, &receipt, provider.MethodTransactionReceipt, p.Hash.Hex())
		if err != nil {
			return nil, provider.Classify(provider.MethodTransactionReceipt, err)
		}

		// 没打包时节点返回 null
		if receipt != nil && receipt.BlockNumber != nil {
			if !receipt.Succeeded() {
				return receipt, errno.New(errno.ErrContractRevert, "wait "+p.Hash.Hex(), fmt.Errorf("receipt status 0"))
			}
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, provider.Classify("wait "+p.Hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
