package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
)

var errInconsistent = errors.New("consistency check failed")

type validateOutput struct {
	Passed       bool                     `json:"passed" yaml:"passed"`
	MinCountries int                      `json:"min_countries" yaml:"min_countries"`
	MinYears     int                      `json:"min_years" yaml:"min_years"`
	Report       domain.ConsistencyReport `json:"report" yaml:"report"`
}

func newValidateCmd(g *globals) *cobra.Command {
	var (
		satisfaction string
		income       string
		minCountries int
		minYears     int
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that the two tables cover enough common countries and years",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sat, inc, err := g.loadTables(cmd.Context(), satisfaction, income)
			if err != nil {
				return err
			}
			report := domain.ValidateConsistency(sat, inc)
			out := validateOutput{
				Passed:       report.Passes(minCountries, minYears),
				MinCountries: minCountries,
				MinYears:     minYears,
				Report:       report,
			}
			if err := g.write(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if !out.Passed {
				return errInconsistent
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&satisfaction, "satisfaction", "", "life satisfaction source (path or URL)")
	cmd.Flags().StringVar(&income, "income", "", "median income source (path or URL)")
	cmd.Flags().IntVar(&minCountries, "min-countries", 20, "minimum number of common countries")
	cmd.Flags().IntVar(&minYears, "min-years", 3, "minimum number of common years")
	_ = cmd.MarkFlagRequired("satisfaction")
	_ = cmd.MarkFlagRequired("income")
	return cmd
}
