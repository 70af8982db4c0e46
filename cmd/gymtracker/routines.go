package main

import (
	"fmt"

	"github.com/2beens/gymtracker/internal/fitness"

	"github.com/spf13/cobra"
)

func routinesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routines",
		Short: "Print the routines every new account starts with",
		RunE: func(cmd *cobra.Command, _ []string) error {
			routines, err := fitness.DefaultRoutines()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range routines {
				fmt.Fprintln(out, r.Name)
				for _, ex := range r.Exercises {
					fmt.Fprintf(out, "  - %s (%s)\n", ex.Name, ex.Muscle)
				}
			}
			return nil
		},
	}
}
