package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"wallet-session/internal/event"
	"wallet-session/internal/service/mq"
	"wallet-session/pkg/config"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "订阅已确认交易事件 (mq.type = redis | kafka)",
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetString("group")
		name, _ := cmd.Flags().GetString("name")

		consumer, err := rt.NewConsumer(config.Global, group, name)
		if err != nil {
			return err
		}
		defer consumer.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Listening on %s ...\n", config.Global.MQ.Topic)
		return consumer.Subscribe(ctx, config.Global.MQ.Topic, func(msg *mq.Message) error {
			var evt event.TransactionRecordedEvent
			if err := json.Unmarshal(msg.Payload, &evt); err != nil {
				// 坏消息直接确认, 不重复投递
				fmt.Fprintf(os.Stderr, "skip malformed event %s: %v\n", msg.ID, err)
				return nil
			}
			fmt.Printf("[%d] %s -> %s  %s wei  %q (%s)  tx=%s\n",
				evt.Counter, evt.From, evt.To, evt.AmountWei, evt.Message, evt.Keyword, evt.TxHash)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().String("group", "session_cli", "消费者组")
	eventsCmd.Flags().String("name", "cli-0", "消费者名称")
}
