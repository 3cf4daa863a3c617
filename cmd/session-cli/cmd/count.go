package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "读取合约交易计数并写入本地存储",
	RunE: func(cmd *cobra.Command, args []string) error {
		m := rt.Manager
		if err := m.CheckIfTransactionExist(cmd.Context()); err != nil {
			return err
		}

		count, err := m.CachedCounter(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Transaction count: %d\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
}
