package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/simulate"
	"github.com/okian/scorebook/pkg/logger"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	LogLevel string
	Format   string // "json" | "text"
}

var validFormats = []string{"text", "json"} //nolint:gochecknoglobals // flag values

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "scorebook-sim",
		Short: "Play simulated tournaments against a scorebook server",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			if err := logger.Init(); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return logger.SetLevelString(opts.LogLevel)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newRunCommand(opts))
	return cmd
}

type runOptions struct {
	*rootOptions
	URL     string
	Name    string
	Teams   []string
	Policy  string
	Seed    uint64
	Overs   int
	Wickets int
	Timeout time.Duration
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Create a tournament, play every match and verify the standings",
		Long: `Create a tournament through the HTTP API, play every scheduled match with
seeded random deliveries and compare the server's points table with one
computed locally from the results.

Example:
  scorebook-sim run --url http://localhost:8080 --teams Lions,Tigers,Bears
  scorebook-sim run --policy Knockout --teams A,B,C,D,E --seed 7 --overs 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.URL, "url", "http://localhost:8080", "scorebook API base URL")
	cmd.Flags().StringVar(&opts.Name, "name", "Simulated Cup", "tournament name")
	cmd.Flags().StringSliceVar(&opts.Teams, "teams", []string{"Lions", "Tigers", "Bears", "Wolves"}, "team names")
	cmd.Flags().StringVar(&opts.Policy, "policy", string(model.RoundRobin), "schedule policy (RoundRobin|Knockout)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&opts.Overs, "overs", 20, "overs per innings")
	cmd.Flags().IntVar(&opts.Wickets, "wickets", 10, "wickets per innings")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "per request timeout")

	return cmd
}

func runSimulation(cmd *cobra.Command, opts *runOptions) error {
	runner, err := simulate.NewRunner(simulate.Config{
		BaseURL: opts.URL,
		Name:    opts.Name,
		Teams:   opts.Teams,
		Policy:  model.SchedulePolicy(opts.Policy),
		Seed:    opts.Seed,
		Overs:   opts.Overs,
		Wickets: opts.Wickets,
		Client:  &http.Client{Timeout: opts.Timeout},
	})
	if err != nil {
		return err
	}

	rep, runErr := runner.Run(cmd.Context())
	if rep.TournamentID != "" {
		if err := printReport(cmd, opts.Format, rep); err != nil {
			return err
		}
	}
	return runErr
}

func printReport(cmd *cobra.Command, format string, rep simulate.Report) error {
	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	fmt.Fprintf(out, "tournament %s: %d/%d matches played, %d deliveries\n",
		rep.TournamentID, rep.Played, rep.Scheduled, rep.Events)
	if len(rep.Unpaired) > 0 {
		fmt.Fprintf(out, "unpaired: %s\n", strings.Join(rep.Unpaired, ", "))
	}
	for _, r := range rep.Results {
		fmt.Fprintf(out, "  %s %d/%d v %s %d/%d -> %s\n",
			r.TeamA, r.FirstInnings.Runs, r.FirstInnings.Wickets,
			r.TeamB, r.SecondInnings.Runs, r.SecondInnings.Wickets, r.Winner)
	}
	fmt.Fprintf(out, "%-12s %3s %3s %3s %3s %4s\n", "team", "P", "W", "L", "T", "Pts")
	for _, row := range rep.Standings {
		fmt.Fprintf(out, "%-12s %3d %3d %3d %3d %4d\n", row.Team, row.Played, row.Won, row.Lost, row.Tied, row.Points)
	}
	return nil
}

func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}
