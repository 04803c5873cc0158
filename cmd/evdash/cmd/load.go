package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load <file.csv>",
	Short: "Load a vehicle CSV into the database",
	Long: `Load a CSV of vehicle specifications. The first row must be a
header naming the vehicle columns; column order is insignificant.

Loads are additive - no deduplication or upsert. Rows missing brand,
model, segment or car_body_type are dropped; unparsable numeric values
become missing. Only a structurally unreadable file is an error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		inserted, err := s.LoadCSV(args[0])
		if err != nil {
			return err
		}

		total, err := s.Count()
		if err != nil {
			return fmt.Errorf("count vehicles: %w", err)
		}

		if inserted == 0 {
			fmt.Println("No valid rows found in input.")
		} else {
			fmt.Printf("Inserted %d vehicles.\n", inserted)
		}
		fmt.Printf("Total vehicles: %d\n", total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
