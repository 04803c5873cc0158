package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var distinctCmd = &cobra.Command{
	Use:   "distinct <column>",
	Short: "List the distinct values of a column",
	Long: `List the sorted distinct non-null values of a vehicles column,
e.g. 'evdash distinct brand' or 'evdash distinct car_body_type'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		values, err := s.DistinctValues(args[0])
		if err != nil {
			return err
		}

		for _, v := range values {
			fmt.Println(v)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(distinctCmd)
}
