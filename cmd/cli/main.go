package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"geoverify/app"
	"geoverify/domain/claim"
	"geoverify/internal"
	"geoverify/internal/adjudication"
	"geoverify/internal/config"
	"geoverify/internal/container"
	"geoverify/internal/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "geoverify-cli",
		Short:         "Validate geoengineering claims and run adversarial critiques",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newValidateCmd(),
		newCritiqueCmd(),
		newAdjudicateCmd(),
		newParamsCmd(),
		newSessionsCmd(),
	)
	return rootCmd
}

// withContainer loads configuration from the environment and runs fn
// against a fully wired container
func withContainer(ctx context.Context, fn func(c *container.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := internal.NewStderrLogger(cfg.Log.Level)

	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())
	return fn(c)
}

func newValidateCmd() *cobra.Command {
	var claimFile, datasetFile, evidenceFile, layersFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the full validation pipeline on one claim",
		Long: `Run evidence building, plausibility scoring, compliance and adjudication
on a claim read from JSON.

A dataset (xlsx or csv with a "value" column and optional "noise" column)
replaces the claim's real_dataset. Supplied evidence sections take precedence
over computed ones. External layers are a JSON object of layer name to
{"verdict", "confidence", "details"}.

Example: geoverify-cli validate --claim claim.json --dataset glens.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req app.ClaimRequest
			if err := readJSON(claimFile, &req.Claim); err != nil {
				return err
			}
			if evidenceFile != "" {
				req.Evidence = &claim.EvidenceBundle{}
				if err := readJSON(evidenceFile, req.Evidence); err != nil {
					return err
				}
			}
			if layersFile != "" {
				if err := readJSON(layersFile, &req.ExternalLayers); err != nil {
					return err
				}
			}

			return withContainer(cmd.Context(), func(c *container.Container) error {
				if datasetFile != "" {
					ds, err := c.Datasets.Load(cmd.Context(), datasetFile)
					if err != nil {
						return err
					}
					req.Claim.RealDataset = ds
				}

				report, err := c.Claims.Validate(cmd.Context(), req)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), report)
			})
		},
	}

	cmd.Flags().StringVar(&claimFile, "claim", "", "Claim JSON file (required)")
	cmd.Flags().StringVar(&datasetFile, "dataset", "", "Observational dataset (.xlsx or .csv)")
	cmd.Flags().StringVar(&evidenceFile, "evidence", "", "Evidence bundle JSON file")
	cmd.Flags().StringVar(&layersFile, "layers", "", "External layer results JSON file")
	cmd.MarkFlagRequired("claim")
	return cmd
}

func newCritiqueCmd() *cobra.Command {
	var paperFile, domain string

	cmd := &cobra.Command{
		Use:   "critique",
		Short: "Run an adversarial critique session to completion",
		Long: `Start a critique session for a parsed paper and answer every prompt with
the configured critic.

The LLM critic is used when CRITIC_API_KEY is set; otherwise the offline
heuristic critic answers from the paper's plausibility risk.

Example: CRITIC_API_KEY=... geoverify-cli critique --paper paper.json --domain climate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var paper claim.ParsedPaper
			if err := readJSON(paperFile, &paper); err != nil {
				return err
			}

			return withContainer(cmd.Context(), func(c *container.Container) error {
				ctx := cmd.Context()
				assessment := c.Analyzer.AnalyzePaper(paper, nil)
				id, err := c.Critiques.StartSession(ctx, paper, domain, &assessment)
				if err != nil {
					return err
				}
				if _, err := c.Critiques.RunWithCritic(ctx, id, c.Critic); err != nil {
					return err
				}
				session, err := c.Critiques.GetSession(ctx, id)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), session)
			})
		},
	}

	cmd.Flags().StringVar(&paperFile, "paper", "", "Parsed paper JSON file (required)")
	cmd.Flags().StringVar(&domain, "domain", "climate", "Scientific domain of the paper")
	cmd.MarkFlagRequired("paper")
	return cmd
}

func newAdjudicateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "adjudicate [layers-file]",
		Short: "Combine independent layer verdicts into a consensus",
		Long: `Adjudicate a JSON object of layer name to {"verdict", "confidence", "details"}.
Layer types are inferred from names containing "external", "sakana" or "internal".

Example: geoverify-cli adjudicate layers.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var layers map[string]adjudication.LayerResult
			if err := readJSON(args[0], &layers); err != nil {
				return err
			}
			result, err := adjudication.NewAdjudicator(nil).Adjudicate(layers)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newParamsCmd() *cobra.Command {
	var domain string

	cmd := &cobra.Command{
		Use:   "params [name=value...]",
		Short: "Check physical parameters against domain range tables",
		Long: `Validate parameters against the domain's range tables and derived
consistency checks. RANGE_TABLES_FILE overrides the built-in tables.

Example: geoverify-cli params --domain climate temperature_change_k=-0.3 radiative_forcing_wm2=-2.1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args)
			if err != nil {
				return err
			}
			return withContainer(cmd.Context(), func(c *container.Container) error {
				result, err := c.Params.Validate(params, domain)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "climate", "Parameter domain")
	return cmd
}

func newSessionsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored critique sessions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				sessions, err := c.Critiques.ListSessions(cmd.Context(), limit)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				for _, s := range sessions {
					fmt.Fprintf(w, "%s  %-22s %5.1f  %s\n", s.ID, s.OverallResult, s.PlausibilityTrapScore, s.PaperTitle)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum sessions to list")
	return cmd
}

func parseParams(args []string) (map[string]float64, error) {
	params := make(map[string]float64, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("parameter %q must be name=value", arg))
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("parameter %s: %q is not a number", name, raw))
		}
		params[strings.TrimSpace(name)] = v
	}
	return params, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WithCode(errors.CodeInvalidInput, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.InvalidInput(fmt.Sprintf("%s: %v", path, err))
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
