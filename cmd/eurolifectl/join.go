package main

import (
	"github.com/spf13/cobra"

	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
)

type joinOutput struct {
	Cleaning struct {
		Satisfaction domain.CleanReport `json:"satisfaction" yaml:"satisfaction"`
		Income       domain.CleanReport `json:"income" yaml:"income"`
	} `json:"cleaning" yaml:"cleaning"`
	Dataset domain.CombinedDataset `json:"dataset" yaml:"dataset"`
}

func newJoinCmd(g *globals) *cobra.Command {
	var (
		satisfaction string
		income       string
		standardize  bool
		years        []int
	)
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join the satisfaction and income tables and print the combined dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sat, inc, err := g.loadTables(cmd.Context(), satisfaction, income)
			if err != nil {
				return err
			}

			var out joinOutput
			sat, out.Cleaning.Satisfaction = domain.Clean(sat, domain.CleanOptions{
				StandardizeCodes: standardize,
				TargetYears:      years,
				Range:            domain.SatisfactionRange,
			})
			inc, out.Cleaning.Income = domain.Clean(inc, domain.CleanOptions{
				StandardizeCodes: standardize,
				TargetYears:      years,
				Range:            domain.IncomeRange,
			})
			out.Dataset = domain.Join(sat, inc)
			return g.write(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&satisfaction, "satisfaction", "", "life satisfaction source (path or URL)")
	cmd.Flags().StringVar(&income, "income", "", "median income source (path or URL)")
	cmd.Flags().BoolVar(&standardize, "standardize", true, "rewrite EL to GR and UK to GB before joining")
	cmd.Flags().IntSliceVar(&years, "years", nil, "keep only these years")
	_ = cmd.MarkFlagRequired("satisfaction")
	_ = cmd.MarkFlagRequired("income")
	return cmd
}
