package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/okian/piste/internal/adapters/tabular"
	"github.com/okian/piste/internal/domain/numeric"
	"github.com/okian/piste/internal/reports"
)

func (c *CLI) talentCardsCommand() *cobra.Command {
	var (
		year   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:     "talentcards",
		Aliases: []string{"classify"},
		Short:   "List the talent cards of a year",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			var s *session
			s, err = c.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			var sum *reports.TalentCardSummary
			sum, err = reports.New(s.repo).TalentCards(cmd.Context(), year)
			if err != nil {
				return errors.Wrapf(err, "failed to list talent cards for %d", year)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), sum)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "LAST\tFIRST\tAGE\tCATEGORY\tTOTAL\tMIN REGIO\tMIN NATIONAL\tCARD")
			for _, r := range sum.Rows {
				total := "-"
				if r.Total != nil {
					total = numeric.Format(*r.Total)
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
					r.LastName, r.FirstName, r.Age, r.Category, total, r.MinRegio, r.MinNation, r.TalentCard)
			}
			_ = tw.Flush()
			fmt.Fprintf(cmd.OutOrStdout(), "National %d, Regional %d, noCard %d\n",
				sum.Counts["National"], sum.Counts["Regional"], sum.Counts["noCard"])
			return nil
		},
	}
	cmd.Flags().IntVarP(&year, "year", "y", 0, "piste year")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func (c *CLI) selectionsCommand() *cobra.Command {
	var (
		year int
		flag string
	)
	cmd := &cobra.Command{
		Use:   "selections",
		Short: "List the athletes selected for a team or championship",
		Long: `List the competition results of a year that carry a selection flag,
and the athletes behind them. Flags: nationalteam, regionalteam, jem, em, wm.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			var s *session
			s, err = c.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			var list *reports.SelectionList
			list, err = reports.New(s.repo).Selections(cmd.Context(), year, flag)
			if err != nil {
				return errors.Wrapf(err, "failed to list %s selections", flag)
			}
			return writeJSON(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().IntVarP(&year, "year", "y", 0, "piste year")
	cmd.Flags().StringVarP(&flag, "flag", "f", reports.Flags[0], "selection flag")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func (c *CLI) compareCommand() *cobra.Command {
	var q reports.CompareQuery
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare an athlete's results to a big competition",
		Long: `Relate every result of an athlete in a year to the points per rank of a
big competition, as a percentage of the reference points.

Example:
  pistectl compare --first Anna --last Muster --competition "Junior Worlds" --big-year 2024 --year 2025`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			var s *session
			s, err = c.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			var rows []reports.Comparison
			rows, err = reports.New(s.repo).Compare(cmd.Context(), q)
			if err != nil {
				return errors.Wrap(err, "failed to compare")
			}
			return writeJSON(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().StringVar(&q.FirstName, "first", "", "first name")
	cmd.Flags().StringVar(&q.LastName, "last", "", "last name")
	cmd.Flags().StringVar(&q.Competition, "competition", "", "big competition")
	cmd.Flags().IntVar(&q.BigYear, "big-year", 0, "year of the big competition")
	cmd.Flags().IntVarP(&q.Year, "year", "y", 0, "year of the athlete's results")
	return cmd
}

func (c *CLI) exportCommand() *cobra.Command {
	var (
		year   int
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export KIND",
		Short: "Export soc values or athletes as CSV or XLSX",
		Long: `Export a table. Kinds: soc, athletes. Without --out the table is
written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var f tabular.Format
			f, err = tabular.ParseFormat(format)
			if err != nil {
				return err
			}

			var s *session
			s, err = c.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			var tbl *reports.Table
			tbl, err = reports.New(s.repo).Export(cmd.Context(), args[0], year)
			if err != nil {
				return errors.Wrapf(err, "failed to export %s", args[0])
			}

			w := cmd.OutOrStdout()
			if out != "" {
				file, ferr := os.Create(out)
				if ferr != nil {
					return errors.Wrap(ferr, "failed to create output")
				}
				defer func() {
					if cerr := file.Close(); err == nil {
						err = errors.Wrap(cerr, "failed to close output")
					}
				}()
				w = file
			}
			return errors.Wrap(tabular.Write(w, f, tbl.Columns, tbl.Rows), "failed to write table")
		},
	}
	cmd.Flags().IntVarP(&year, "year", "y", 0, "piste year (soc only, 0 for all)")
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}
