package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wallet-session/internal/bootstrap"
	"wallet-session/internal/session"
	"wallet-session/pkg/config"
	"wallet-session/pkg/logger"
)

// rt 由 PersistentPreRunE 按配置构建, 所有子命令共用
var rt *bootstrap.Runtime

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "session-cli",
	Short: "钱包会话命令行工具",
	Long: `通过 JSON-RPC 钱包 Provider 连接账户、发送带留言的转账，
并读取 Transactions 合约里的全部交易记录。配置读取 config.yaml 和环境变量。`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if rpc, _ := cmd.Flags().GetString("rpc"); rpc != "" {
			cfg.Wallet.RpcUrl = rpc
		}
		if addr, _ := cmd.Flags().GetString("contract"); addr != "" {
			cfg.Wallet.ContractAddress = addr
		}
		config.Global = cfg

		logger.Init(cfg.App.Env)
		notifier := session.NotifierFunc(func(ctx context.Context, message string) {
			fmt.Fprintln(os.Stderr, "⚠️ ", message)
		})
		rt, err = bootstrap.New(cmd.Context(), cfg, notifier)
		return err
	},
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if rt != nil {
		rt.Close()
	}
	logger.Sync()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("rpc", "", "钱包 JSON-RPC 地址 (覆盖 wallet.rpc_url)")
	rootCmd.PersistentFlags().String("contract", "", "Transactions 合约地址 (覆盖 wallet.contract_address)")
}
