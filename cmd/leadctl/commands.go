package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"lead_portal_backend/internal/leads"
	"lead_portal_backend/internal/leads/scoring"
	"lead_portal_backend/platform/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// scoreOutput is one line of `leadctl score` output.
type scoreOutput struct {
	ID              string                   `json:"id"`
	LeadScore       *int                     `json:"lead_score,omitempty"`
	Classification  string                   `json:"classification,omitempty"`
	Breakdown       *scoring.Result          `json:"breakdown,omitempty"`
	Recommendations []scoring.Recommendation `json:"recommendations,omitempty"`
	Error           string                   `json:"error,omitempty"`
}

type rootOptions struct {
	weightsFile string
	regions     []string
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "leadctl",
		Short:         "Offline lead scoring tools",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&opts.weightsFile, "weights", cfg.GetScoringWeightsFile(), "YAML weight table layered over the defaults")
	rootCmd.PersistentFlags().StringSliceVar(&opts.regions, "regions", cfg.GetScoringTargetRegions(), "target regions, replacing those in the weight file")

	rootCmd.AddCommand(scoreCmd(cfg, opts))
	rootCmd.AddCommand(weightsCmd(cfg, opts))
	return rootCmd
}

func buildEngine(cfg *config.Config, opts *rootOptions, extra ...scoring.Option) (*scoring.Engine, error) {
	local := *cfg
	local.ScoringWeightsFile = opts.weightsFile
	local.ScoringTargetRegions = opts.regions

	engine, err := leads.NewEngine(&local)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return engine, nil
	}
	return scoring.NewEngine(engine.Weights(), append([]scoring.Option{scoring.WithBatchWorkers(local.GetScoringBatchWorkers())}, extra...)...), nil
}

func scoreCmd(cfg *config.Config, opts *rootOptions) *cobra.Command {
	var (
		at        string
		recommend bool
	)

	cmd := &cobra.Command{
		Use:   "score [file]",
		Short: "Score a JSON array of leads read from file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var engineOpts []scoring.Option
			if at != "" {
				ts, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				engineOpts = append(engineOpts, scoring.WithClock(scoring.FixedClock{At: ts.UTC()}))
			}

			engine, err := buildEngine(cfg, opts, engineOpts...)
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			leadsIn, err := readLeads(in)
			if err != nil {
				return err
			}
			return writeScores(cmd, engine, leadsIn, recommend)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "evaluate as of this RFC3339 instant instead of now")
	cmd.Flags().BoolVar(&recommend, "recommend", false, "include improvement recommendations")
	return cmd
}

func readLeads(r io.Reader) ([]scoring.Lead, error) {
	var leadsIn []scoring.Lead
	if err := json.NewDecoder(r).Decode(&leadsIn); err != nil {
		return nil, fmt.Errorf("decode leads: %w", err)
	}
	return leadsIn, nil
}

func writeScores(cmd *cobra.Command, engine *scoring.Engine, leadsIn []scoring.Lead, recommend bool) error {
	items := engine.BatchScore(cmd.Context(), leadsIn)
	enc := json.NewEncoder(cmd.OutOrStdout())

	for i, item := range items {
		out := scoreOutput{ID: item.LeadID.String()}
		if item.OK() {
			score := item.Scored.Score
			breakdown := item.Scored.Metadata.Breakdown
			out.LeadScore = &score
			out.Classification = string(item.Scored.Metadata.Classification)
			out.Breakdown = &breakdown
			if recommend {
				out.Recommendations = engine.Recommend(leadsIn[i])
			}
		} else {
			out.Error = item.Err.Error()
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}

	if failed := scoring.CountFailures(items); failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d leads could not be scored\n", failed, len(items))
	}
	return nil
}

func weightsCmd(cfg *config.Config, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "weights",
		Short: "Print the effective weight table as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := buildEngine(cfg, opts)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(engine.Weights().Config()); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
