package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"wallet-session/internal/model"
	"wallet-session/pkg/config"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "发送转账并在合约里记录留言",
	Long: `先发送一笔原生转账 (gas 固定)，再调用 addToBlockchain 记录
收款人、金额、留言和关键字，等待确认后输出新的交易计数。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")
		amount, _ := cmd.Flags().GetString("amount")
		message, _ := cmd.Flags().GetString("message")
		keyword, _ := cmd.Flags().GetString("keyword")
		m := rt.Manager

		// 1. 确认账户: 先静默检查, 没有再请求授权
		ctx := cmd.Context()
		if err := m.CheckIfWalletIsConnected(ctx); err != nil {
			return err
		}
		if m.Snapshot().ConnectedAccount == "" {
			if err := m.ConnectWallet(ctx); err != nil {
				return err
			}
		}

		// 2. 填表单
		m.SetFormData(model.DraftTransaction{AddressTo: to, Amount: amount, Keyword: keyword, Message: message})

		// 3. 发送并等待确认
		timeout := config.Global.Wallet.ConfirmTimeout
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}
		sendCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		fmt.Printf("正在发送 %s ETH -> %s ...\n", amount, to)
		if err := m.SendTransaction(sendCtx); err != nil {
			fmt.Printf("❌ 发送失败\n")
			return err
		}

		snap := m.Snapshot()
		fmt.Printf("✅ 交易已确认!\n")
		if snap.TransactionCount != nil {
			fmt.Printf("Transaction count: %d\n", *snap.TransactionCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().String("to", "", "收款地址")
	sendCmd.Flags().String("amount", "", "金额 (ETH)")
	sendCmd.Flags().String("message", "", "留言")
	sendCmd.Flags().String("keyword", "", "关键字")
	_ = sendCmd.MarkFlagRequired("to")
	_ = sendCmd.MarkFlagRequired("amount")
}
