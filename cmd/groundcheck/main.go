package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Harshitk-cp/groundcheck/internal/bootstrap"
	"github.com/Harshitk-cp/groundcheck/internal/buildconfig"
	"github.com/Harshitk-cp/groundcheck/internal/config"
	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/extract"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errNotPassed makes the process exit with status 1 without printing an
// error; the report has already been written.
var errNotPassed = errors.New("verification failed")

func main() {
	_ = config.Load()

	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errNotPassed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "groundcheck",
		Short: "Verify LLM output against stored memories",
		Long: `groundcheck extracts factual claims from generated text and checks
each one against a set of trust-scored memories. Claims without support
are reported as hallucinations and, in strict mode, removed or replaced.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newVerifyCmd(),
		newExtractCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "groundcheck version %s (%s)\n", buildconfig.Version(), buildconfig.Commit())
		},
	}
}

type contradictionOutput struct {
	Slot             string   `json:"slot"`
	Values           []string `json:"values"`
	MostTrustedValue string   `json:"most_trusted_value"`
}

type verifyOutput struct {
	Passed         bool                  `json:"passed"`
	Confidence     float64               `json:"confidence"`
	Hallucinations []string              `json:"hallucinations"`
	Corrected      *string               `json:"corrected"`
	FactsExtracted *domain.Facts         `json:"facts_extracted"`
	FactsSupported *domain.Facts         `json:"facts_supported"`
	Contradictions []contradictionOutput `json:"contradictions"`
	LatencyMS      float64               `json:"latency_ms"`
	MemoriesCount  int                   `json:"memories_count"`
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify TEXT",
		Short: "Verify text against a memories file",
		Example: `  groundcheck verify "You work at Microsoft" -m memories.json
  groundcheck verify "You live in Seattle" -m facts.json --mode permissive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("memories")
			modeFlag, _ := cmd.Flags().GetString("mode")

			mode := domain.Mode(strings.ToLower(modeFlag))
			if !domain.ValidMode(string(mode)) {
				return fmt.Errorf("invalid mode %q: must be strict or permissive", modeFlag)
			}

			memories, err := loadMemoriesFile(path)
			if err != nil {
				return err
			}

			verifier, _, err := bootstrap.NewVerifier(zap.NewNop())
			if err != nil {
				return err
			}

			start := time.Now()
			report := verifier.Verify(cmd.Context(), args[0], memories, mode)
			out := newVerifyOutput(report, time.Since(start), len(memories))

			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if !report.Passed {
				return errNotPassed
			}
			return nil
		},
	}
	cmd.Flags().StringP("memories", "m", "", "JSON file with memories to verify against")
	cmd.Flags().String("mode", string(domain.ModeStrict), "Verification mode: strict or permissive")
	_ = cmd.MarkFlagRequired("memories")
	return cmd
}

func newVerifyOutput(r *domain.VerificationReport, latency time.Duration, memoriesCount int) verifyOutput {
	out := verifyOutput{
		Passed:         r.Passed,
		Confidence:     r.Confidence,
		Hallucinations: r.Hallucinations,
		Corrected:      r.Corrected,
		FactsExtracted: r.FactsExtracted,
		FactsSupported: r.FactsSupported,
		Contradictions: make([]contradictionOutput, 0, len(r.ContradictionDetails)),
		LatencyMS:      float64(latency.Microseconds()) / 1000,
		MemoriesCount:  memoriesCount,
	}
	for i := range r.ContradictionDetails {
		c := &r.ContradictionDetails[i]
		out.Contradictions = append(out.Contradictions, contradictionOutput{
			Slot:             c.Slot,
			Values:           c.Values,
			MostTrustedValue: c.MostTrustedValue(),
		})
	}
	return out
}

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract TEXT",
		Short: "Print the facts extracted from text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			withKnowledge, _ := cmd.Flags().GetBool("knowledge")
			if !withKnowledge {
				return writeJSON(cmd.OutOrStdout(), extract.Extract(args[0]))
			}

			verifier, _, err := bootstrap.NewVerifier(zap.NewNop())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), verifier.Explain(args[0]))
		},
	}
	cmd.Flags().Bool("knowledge", false, "Include taxonomy and ontology inferences")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
