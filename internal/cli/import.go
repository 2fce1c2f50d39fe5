package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/okian/piste/internal/adapters/tabular"
	"github.com/okian/piste/internal/importer"
)

func (c *CLI) importCommand() *cobra.Command {
	var (
		kind   string
		format string
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a CSV or XLSX file",
		Long: `Import a CSV or XLSX file into one of the data tables. The first row
names the columns. Rows that cannot be stored are listed with their reason.

Kinds: athletes, pisteresults, compresults, training, environment, bigresults.

Example:
  pistectl import --kind athletes athletes.csv
  pistectl import --kind pisteresults results-2025.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var k importer.Kind
			k, err = importer.ParseKind(kind)
			if err != nil {
				return err
			}
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(args[0]), ".")
			}
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

			file, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "failed to open input")
			}
			defer func() { _ = file.Close() }()

			rows, err := tabular.Read(file, f)
			if err != nil {
				return errors.Wrapf(err, "failed to read %s", args[0])
			}
			res, err := importer.New(s.repo, importer.WithLogger(s.log)).Import(cmd.Context(), k, rows)
			if err != nil {
				return errors.Wrapf(err, "failed to import %s", k)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: stored %d, skipped %d\n", res.Kind, res.Stored, len(res.Skipped))
			if c.verbose {
				for _, sk := range res.Skipped {
					fmt.Fprintf(out, "  row %d %s: %s\n", sk.Row, sk.Key, sk.Reason)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "table to import into")
	cmd.Flags().StringVar(&format, "format", "", "csv or xlsx (default from the file extension)")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func (c *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-athlete ID",
		Short: "Delete an athlete and their piste results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var s *session
			s, err = c.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			var n int
			n, err = importer.New(s.repo, importer.WithLogger(s.log)).DeleteAthlete(cmd.Context(), args[0])
			if err != nil {
				return errors.Wrapf(err, "failed to delete athlete %s", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted athlete %s and %d piste results\n", args[0], n)
			return nil
		},
	}
}
