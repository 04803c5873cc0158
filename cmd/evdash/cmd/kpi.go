package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/evlens/evdash/internal/filter"
	"github.com/evlens/evdash/internal/kpi"
)

var (
	kpiBrands    []string
	kpiSegments  []string
	kpiBodyTypes []string
)

var kpiCmd = &cobra.Command{
	Use:   "kpi <range|acceleration|battery|bodytype>",
	Short: "Compute one of the four aggregate views",
	Long: `Compute a KPI over the (optionally filtered) vehicle table:

  range         average range (km) per segment, best first
  acceleration  average 0-100 km/h time per brand, fastest first
  battery       battery capacity vs. efficiency scatter points
  bodytype      vehicle count and share per body type

Filters are repeatable, e.g.:
  evdash kpi range --brand Tesla --brand BMW --segment "C - Medium"`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"range", "acceleration", "battery", "bodytype"},
	RunE: func(cmd *cobra.Command, args []string) error {
		set := filter.Normalize(filter.Set{
			filter.FieldBrand:    kpiBrands,
			filter.FieldSegment:  kpiSegments,
			filter.FieldBodyType: kpiBodyTypes,
		})

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		fmt.Printf("Filters: %s\n\n", filter.Summarize(set))

		ctx := cmd.Context()
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		defer tw.Flush()

		switch args[0] {
		case "range":
			results, err := kpi.RangeBySegment(ctx, s, set)
			if err != nil {
				return err
			}
			fmt.Fprintln(tw, "SEGMENT\tAVG RANGE (KM)")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%.1f\n", r.Segment, r.AverageRangeKM)
			}
		case "acceleration":
			results, err := kpi.AccelerationByBrand(ctx, s, set)
			if err != nil {
				return err
			}
			fmt.Fprintln(tw, "BRAND\tAVG 0-100 (S)")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%.2f\n", r.Brand, r.AverageAccelerationS)
			}
		case "battery":
			results, err := kpi.BatteryVsEfficiency(ctx, s, set)
			if err != nil {
				return err
			}
			fmt.Fprintln(tw, "BRAND\tMODEL\tSEGMENT\tBATTERY (KWH)\tEFFICIENCY (WH/KM)")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%.1f\n",
					r.Brand, r.Model, r.Segment, r.BatteryCapacityKWH, r.EfficiencyWhPerKM)
			}
		case "bodytype":
			results, err := kpi.BodyTypeDistribution(ctx, s, set)
			if err != nil {
				return err
			}
			fmt.Fprintln(tw, "BODY TYPE\tCOUNT\tSHARE")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%d\t%.2f%%\n", r.CarBodyType, r.Count, r.Percentage)
			}
		default:
			return fmt.Errorf("unknown kpi %q (want range, acceleration, battery or bodytype)", args[0])
		}

		return nil
	},
}

func init() {
	kpiCmd.Flags().StringArrayVar(&kpiBrands, "brand", nil, "restrict to brand (repeatable)")
	kpiCmd.Flags().StringArrayVar(&kpiSegments, "segment", nil, "restrict to segment (repeatable)")
	kpiCmd.Flags().StringArrayVar(&kpiBodyTypes, "body-type", nil, "restrict to body type (repeatable)")
	rootCmd.AddCommand(kpiCmd)
}
