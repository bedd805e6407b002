package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"labelspool/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and agent status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Running:       %s\n", yesNo(status.Running))
				fmt.Fprintf(out, "Quiet hours:   %s\n", yesNo(status.Blocked))
				fmt.Fprintf(out, "Ticks:         %d\n", status.Ticks)
				if status.LastTickAt != "" {
					fmt.Fprintf(out, "Last tick:     %s\n", status.LastTickAt)
				}
				if status.LastError != "" {
					fmt.Fprintf(out, "Last error:    %s\n", status.LastError)
				}
				fmt.Fprintf(out, "Database:      %s\n", status.DatabasePath)
				fmt.Fprintf(out, "Lock file:     %s\n", status.LockPath)
				fmt.Fprintf(out, "PID:           %d\n", status.PID)
				return nil
			})
		},
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the polling agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stop()
				if err != nil {
					return err
				}
				if resp.Stopped {
					fmt.Fprintln(cmd.OutOrStdout(), "Agent stopped")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Stop request sent")
				}
				return nil
			})
		},
	}
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Re-send the notification for the last observed order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TestNotification()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
				if !resp.Sent {
					return fmt.Errorf("notification not sent")
				}
				return nil
			})
		},
	}
}

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show state database diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				health, err := client.DatabaseHealth()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database:        %s\n", health.DBPath)
				fmt.Fprintf(out, "Exists:          %s\n", yesNo(health.DatabaseExists))
				fmt.Fprintf(out, "Readable:        %s\n", yesNo(health.DatabaseReadable))
				fmt.Fprintf(out, "Integrity:       %s\n", yesNo(health.IntegrityCheck))
				fmt.Fprintf(out, "Processed:       %d\n", health.ProcessedRecords)
				fmt.Fprintf(out, "Deferred:        %d\n", health.DeferredLabels)
				if len(health.MissingTables) > 0 {
					fmt.Fprintf(out, "Missing tables:  %v\n", health.MissingTables)
				}
				if health.Error != "" {
					fmt.Fprintf(out, "Error:           %s\n", health.Error)
				}
				return nil
			})
		},
	}
}
