package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	app "github.com/okian/piste/internal/app"
	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/pipeline"
)

func (c *CLI) runCommand() *cobra.Command {
	var (
		stage   string
		year    int
		newOnly bool
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a pipeline stage and wait for it",
		Long: `Run one stage of the pipeline, or all of them in order with --stage full.
Stages: piste, competitions, refpoints, soc, full.

Rows that fail are reported and the run continues past them. The command
fails only when a stage cannot run at all.

Example:
  pistectl run --stage full --year 2025
  pistectl run --stage competitions --new-only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			st := model.Stage(stage)
			if !st.Valid() {
				return errors.Wrapf(pipeline.ErrUnknownStage, "stage %q", stage)
			}

			var s *session
			s, err = c.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			opts := append(app.RunnerOptions(s.cfg), pipeline.WithLogger(s.log))
			var rep *pipeline.Report
			rep, err = pipeline.NewRunner(s.repo, opts...).Run(cmd.Context(), model.RunRequest{
				Stage:   st,
				Year:    year,
				NewOnly: newOnly,
			})
			if rep != nil {
				if asJSON {
					if werr := writeJSON(cmd.OutOrStdout(), rep); werr != nil {
						return werr
					}
				} else {
					printReport(cmd, rep, c.verbose)
				}
			}
			return errors.Wrapf(err, "%s run failed", st)
		},
	}
	cmd.Flags().StringVarP(&stage, "stage", "s", string(model.StageFull), "stage to run")
	cmd.Flags().IntVarP(&year, "year", "y", 0, "piste year")
	cmd.Flags().BoolVar(&newOnly, "new-only", false, "competitions stage: only rows without points")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run report as JSON")
	return cmd
}

func printReport(cmd *cobra.Command, rep *pipeline.Report, verbose bool) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tPROCESSED\tWRITTEN\tSKIPPED\tFAILED")
	for _, st := range rep.Steps {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", st.Stage, st.Processed, st.Written, st.Skipped, len(st.Failures))
	}
	_ = tw.Flush()

	if !verbose {
		return
	}
	for _, st := range rep.Steps {
		for _, f := range st.Failures {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", st.Stage, f.Key, f.Error)
		}
	}
}
