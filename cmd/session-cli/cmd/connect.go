package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "请求钱包授权账户",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.Manager.ConnectWallet(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("✅ Connected account: %s\n", rt.Manager.Snapshot().ConnectedAccount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
