package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/DavidAtikpo/irata-sub002/internal/modules/duedate"
)

func newStateCommand() *cobra.Command {
	var today string

	cmd := &cobra.Command{
		Use:   "state <due-date>",
		Short: "Derive the equipment state from a next-inspection date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := timeNow()
			if today != "" {
				t, ok := duedate.Parse(today)
				if !ok {
					return fmt.Errorf("unreadable --today %q", today)
				}
				now = t
			}
			fmt.Fprintln(cmd.OutOrStdout(), duedate.Derive(args[0], now))
			return nil
		},
	}
	cmd.Flags().StringVar(&today, "today", "", "Reference day instead of the current date")
	return cmd
}

var timeNow = time.Now
