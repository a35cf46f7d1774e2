package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func dumpCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Export every expense as a JSON snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			snapshot, err := a.svc.Dump(cmd.Context())
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), snapshot)
				return nil
			}
			if err := os.WriteFile(out, []byte(snapshot), 0o644); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			a.logger.Info("Snapshot written", "path", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Write the snapshot to a file instead of stdout")
	return cmd
}

func restoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <snapshot.json>",
		Short: "Replace every expense with the contents of a JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			snapshot, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			if err := a.svc.Restore(cmd.Context(), string(snapshot)); err != nil {
				return err
			}
			a.logger.Info("Snapshot restored", "path", args[0])
			return nil
		},
	}
}
