package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "检查已授权的账户 (不弹窗)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.Manager.CheckIfWalletIsConnected(cmd.Context()); err != nil {
			return err
		}

		account := rt.Manager.Snapshot().ConnectedAccount
		if account == "" {
			fmt.Println("No authorized account found")
			return nil
		}
		fmt.Printf("Connected account: %s\n", account)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}
