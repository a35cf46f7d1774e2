package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func rateCommand() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "rate <from> <to>",
		Short: "Resolve a currency conversion factor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if date == "" {
				date = time.Now().UTC().Format("2006-01-02")
			}
			factor, err := a.resolver.Resolve(cmd.Context(), args[0], args[1], date)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s @ %s: %g\n", args[0], args[1], date, factor)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "ISO date of the rate (default today)")
	return cmd
}
