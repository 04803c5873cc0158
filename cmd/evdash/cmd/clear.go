package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all vehicles from the database",
	Long: `Remove all rows from the vehicles table. The schema persists, so
subsequent loads work without re-initializing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Clear(); err != nil {
			return err
		}

		fmt.Println("All vehicles removed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
