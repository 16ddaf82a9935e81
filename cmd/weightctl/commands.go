package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/2beens/weightstats/internal"
	"github.com/2beens/weightstats/internal/config"
	"github.com/2beens/weightstats/internal/logging"
	"github.com/2beens/weightstats/internal/weight"
	"github.com/2beens/weightstats/internal/weight/handler"
	"github.com/2beens/weightstats/internal/weight/service"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	env        string
	backend    string
	storePath  string
	codec      string
	language   string
	timezone   string
	logLevel   string
}

// storeConfig builds the config the CLI runs with: the TOML file when given,
// defaults otherwise, with flags on top.
func (o *rootOptions) storeConfig() (*config.Config, error) {
	cfg := config.Defaults()
	if o.configPath != "" {
		loaded, err := config.Load(o.env, o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if o.backend != "" {
		cfg.StoreBackend = config.StoreBackend(o.backend)
	}
	if o.storePath != "" {
		switch cfg.StoreBackend {
		case config.StoreSQLite:
			cfg.SQLiteStore = o.storePath
		default:
			cfg.FileStore = o.storePath
		}
	}
	if o.codec != "" {
		cfg.StoreCodec = o.codec
	}
	if o.language != "" {
		cfg.Language = o.language
	}
	if o.timezone != "" {
		cfg.Timezone = o.timezone
	}

	switch cfg.StoreBackend {
	case config.StoreFile, config.StoreSQLite, config.StoreMemory:
	default:
		return nil, fmt.Errorf("weightctl works on local stores only (file, sqlite), got %s", cfg.StoreBackend)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (o *rootOptions) openService(ctx context.Context) (*service.Service, func() error, error) {
	cfg, err := o.storeConfig()
	if err != nil {
		return nil, nil, err
	}
	return internal.NewWeightService(ctx, cfg, internal.StoreDeps{}, nil, nil)
}

// withService opens the store for the duration of a single command.
func (o *rootOptions) withService(cmd *cobra.Command, run func(ctx context.Context, svc *service.Service) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, closeStore, err := o.openService(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()
	return run(ctx, svc)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "weightctl",
		Short:         "Track body weight and project when the goal is reached",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// stdout is reserved for command output
			logging.Setup(logging.LoggerSetupParams{
				LogLevel: opts.logLevel,
				Stdout:   os.Stderr,
			})
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "optional TOML config file")
	flags.StringVar(&opts.env, "env", "development", "config section [dev | development | prod | production]")
	flags.StringVar(&opts.backend, "backend", "", "store backend: file|sqlite (defaults to file)")
	flags.StringVar(&opts.storePath, "store", "", "path of the store file")
	flags.StringVar(&opts.codec, "codec", "", "store codec: json|yaml")
	flags.StringVar(&opts.language, "lang", "", "language for dates and numbers, e.g. pt-BR, en-US")
	flags.StringVar(&opts.timezone, "tz", "", "timezone used to group entries into weeks and months")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		newAddCmd(opts),
		newEditCmd(opts),
		newRemoveCmd(opts),
		newListCmd(opts),
		newChartCmd(opts),
		newProjectionCmd(opts),
	)
	return root
}

func parseObservation(date, weightArg string) (weight.Observation, error) {
	parsedDate, err := handler.ParseDate(date)
	if err != nil {
		return weight.Observation{}, err
	}
	w, err := parseWeight(weightArg)
	if err != nil {
		return weight.Observation{}, err
	}
	obs := weight.Observation{Date: parsedDate, Weight: w}
	return obs, obs.Validate()
}

// parseWeight accepts both decimal separators, "95.5" and "95,5".
func parseWeight(raw string) (float64, error) {
	w, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(raw), ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid weight %q", weight.ErrInvalidObservation, raw)
	}
	return w, nil
}

func parseIndex(raw string) (int, error) {
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid index: %s", raw)
	}
	return index, nil
}

// parseTarget resolves the --target flag: empty means the configured default, "none" unsets it.
func parseTarget(raw string, defaultTarget *float64) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultTarget, nil
	}
	if strings.EqualFold(raw, handler.NoTarget) {
		return nil, nil
	}
	target, err := parseWeight(raw)
	if err != nil || !weight.ValidWeight(target) {
		return nil, fmt.Errorf("invalid target: %s", raw)
	}
	return &target, nil
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <date> <weight>",
		Short: "Record a weight, date as yyyy-mm-dd or RFC 3339",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			obs, err := parseObservation(args[0], args[1])
			if err != nil {
				return err
			}
			return opts.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				if err := svc.Add(ctx, obs); err != nil {
					return err
				}
				b := svc.Builder()
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(
					fmt.Sprintf("added %s  %s", b.FormatDate(obs.Date), b.FormatWeight(obs.Weight)),
				))
				return nil
			})
		},
	}
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <index> <date> <weight>",
		Short: "Replace the entry at the given index",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			obs, err := parseObservation(args[1], args[2])
			if err != nil {
				return err
			}
			return opts.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				if err := svc.Update(ctx, index, obs); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf("updated entry %d", index)))
				return nil
			})
		},
	}
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <index>",
		Aliases: []string{"remove"},
		Short:   "Remove the entry at the given index",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			return opts.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				if err := svc.Remove(ctx, index); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf("removed entry %d", index)))
				return nil
			})
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var granularity string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries, optionally one per week or month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := weight.ParseGranularity(granularity)
			if err != nil {
				return err
			}
			return opts.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				entries, err := svc.List(ctx)
				if err != nil {
					return err
				}
				if g != weight.GranularityAll {
					entries = aggregateEntries(entries, g)
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), renderEntries(svc.Builder(), entries))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&granularity, "granularity", "all", "all|weekly|monthly")
	return cmd
}

// aggregateEntries keeps the entries that survive aggregation, most recent
// first, with their store indexes.
func aggregateEntries(entries []service.Entry, g weight.Granularity) []service.Entry {
	obs := make([]weight.Observation, len(entries))
	for i, e := range entries {
		obs[i] = weight.Observation{Date: e.Date, Weight: e.Weight}
	}
	view := weight.Aggregate(obs, g)

	kept := make([]service.Entry, 0, len(view))
	used := make(map[int]bool, len(view))
	for _, o := range view {
		for _, e := range entries {
			if !used[e.Index] && e.Date.Equal(o.Date) && e.Weight == o.Weight {
				used[e.Index] = true
				kept = append(kept, e)
				break
			}
		}
	}
	return kept
}

func newChartCmd(opts *rootOptions) *cobra.Command {
	var granularity, target string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Print the chart series: history, projection and goal lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := weight.ParseGranularity(granularity)
			if err != nil {
				return err
			}
			return opts.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				t, err := parseTarget(target, svc.DefaultTarget())
				if err != nil {
					return err
				}
				chart, err := svc.Chart(ctx, service.ChartParams{Granularity: g, Target: t})
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(chart)
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), renderChart(svc.Builder(), chart))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&granularity, "granularity", "all", "all|weekly|monthly")
	cmd.Flags().StringVar(&target, "target", "", "goal weight in kg, \"none\" to unset (defaults to the configured goal)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the chart as JSON")
	return cmd
}

func newProjectionCmd(opts *rootOptions) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "projection",
		Short: "Project the date the goal weight is reached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				t, err := parseTarget(target, svc.DefaultTarget())
				if err != nil {
					return err
				}
				if t == nil {
					return fmt.Errorf("no target weight, use --target")
				}
				projection, err := svc.Projection(ctx, *t)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), renderProjection(svc.Builder(), projection))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "goal weight in kg (defaults to the configured goal)")
	return cmd
}
