package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"labelspool/internal/ipc"
	"labelspool/internal/textutil"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently printed orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.History(limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(resp.Orders) == 0 {
					fmt.Fprintln(out, "No orders printed yet")
					return nil
				}
				rows := make([][]string, 0, len(resp.Orders))
				for _, rec := range resp.Orders {
					rows = append(rows, []string{rec.OrderID, rec.PrintedAt})
				}
				writeTable(out, []string{"Order", "Printed At"}, rows)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of entries to show")
	return cmd
}

func newQueueCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show labels deferred by quiet hours",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Queue()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(resp.Labels) == 0 {
					fmt.Fprintln(out, "Deferral queue is empty")
					return nil
				}
				rows := make([][]string, 0, len(resp.Labels))
				for _, lbl := range resp.Labels {
					rows = append(rows, []string{
						fmt.Sprintf("%d", lbl.ID),
						lbl.OrderID,
						lbl.Customer,
						textutil.DisplayTitle(lbl.Platform),
						textutil.DisplayCourier(lbl.Courier),
						lbl.CreatedAt,
					})
				}
				writeTable(out,
					[]string{"ID", "Order", "Customer", "Platform", "Courier", "Queued At"},
					rows,
					0,
				)
				return nil
			})
		},
	}
}
