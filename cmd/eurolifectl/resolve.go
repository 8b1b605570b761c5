package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
)

func newResolveCmd(g *globals) *cobra.Command {
	var (
		ids     []string
		aliases string
	)
	cmd := &cobra.Command{
		Use:   "resolve CODE",
		Short: "Resolve a boundary code against a set of statistical identifiers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := domain.DefaultAliasTable()
			if aliases != "" {
				data, err := g.fetcher().Fetch(cmd.Context(), aliases)
				if err != nil {
					return fmt.Errorf("alias table: %w", err)
				}
				if table, err = domain.LoadAliasTable(bytes.NewReader(data)); err != nil {
					return err
				}
			}

			id, kind := domain.NewResolver(table).ResolveKind(args[0], domain.NewIdentifierSet(ids...))
			if kind == domain.MatchNone {
				fmt.Fprintln(cmd.OutOrStdout(), "no match")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", id, kind)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "candidate identifiers, comma separated")
	cmd.Flags().StringVar(&aliases, "aliases", "", "alias table YAML path or URL (default: embedded table)")
	return cmd
}
