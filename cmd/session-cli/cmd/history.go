package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "列出合约里的全部交易",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		m := rt.Manager

		if err := m.GetAllTransactions(cmd.Context()); err != nil {
			return err
		}
		txs := m.Snapshot().Transactions

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(txs)
		}

		if len(txs) == 0 {
			fmt.Println("No transactions yet")
			return nil
		}
		for i, tx := range txs {
			fmt.Printf("#%d  %s  %s -> %s  %s ETH\n", i+1, tx.Timestamp, tx.AddressFrom, tx.AddressTo, tx.Amount.String())
			if tx.Message != "" || tx.Keyword != "" {
				fmt.Printf("     message: %s  keyword: %s\n", tx.Message, tx.Keyword)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Bool("json", false, "以 JSON 输出")
}
