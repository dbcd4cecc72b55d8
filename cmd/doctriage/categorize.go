package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/doctriage/doctriage/internal/config"
	"github.com/doctriage/doctriage/internal/engine"
	"github.com/doctriage/doctriage/pkg/models"
)

var categorizeJSON bool

var categorizeCmd = &cobra.Command{
	Use:   "categorize <file>...",
	Short: "Classify one or more documents",
	Long: `Classify local documents into the business taxonomy.

Examples:
  doctriage categorize ./contract.pdf
  doctriage categorize ./inbox/*.pdf --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCategorize,
}

func init() {
	categorizeCmd.Flags().BoolVar(&categorizeJSON, "json", false, "Output results as JSON")
}

func runCategorize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	st, err := buildStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	interactive := isatty.IsTerminal(os.Stderr.Fd()) && !categorizeJSON
	var spin *spinner.Spinner
	if interactive {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = " classifying..."
		spin.Start()
	}

	items := st.engine.ProcessBatch(ctx, args)

	if spin != nil {
		spin.Stop()
	}

	if categorizeJSON {
		return outputBatchJSON(os.Stdout, items)
	}

	failed := 0
	for _, item := range items {
		if item.Err != nil {
			failed++
			red := color.New(color.FgRed)
			_, _ = red.Fprintf(os.Stderr, "  %s: %v\n", item.Ref, item.Err)
			continue
		}
		printResult(os.Stderr, os.Stdout, item.Result)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(items))
	}
	return nil
}

type batchOutput struct {
	Ref    string         `json:"ref"`
	Error  string         `json:"error,omitempty"`
	Result *engine.Result `json:"result,omitempty"`
}

func outputBatchJSON(w io.Writer, items []engine.BatchItem) error {
	out := make([]batchOutput, len(items))
	for i, item := range items {
		out[i] = batchOutput{Ref: item.Ref, Result: item.Result}
		if item.Err != nil {
			out[i].Error = item.Err.Error()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printResult(stderr, stdout io.Writer, r *engine.Result) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	fmt.Fprintln(stderr)
	_, _ = dim.Fprintln(stderr, "  "+strings.Repeat("━", 50))
	printConfidenceBar(stderr, r.CalibratedConfidence, r.Disposition)
	fmt.Fprintln(stderr)

	_, _ = bold.Fprintf(stdout, "%s → %s\n", r.FileID, r.Attempt.Category)
	if r.Consensus != nil {
		_, _ = dim.Fprintf(stdout, "consensus of %d models\n", r.Consensus.Attempts)
	} else if r.Attempt.Stage == models.StageDetailed {
		_, _ = dim.Fprintln(stdout, "escalated to detailed analysis")
	}
	if r.Attempt.Reasoning != "" {
		fmt.Fprintln(stdout, r.Attempt.Reasoning)
	}
	if r.ReviewItem != nil {
		yellow := color.New(color.FgYellow)
		_, _ = yellow.Fprintf(stderr, "  Queued for review: %s\n", r.ReviewItem.ID)
	}
}

func printConfidenceBar(w io.Writer, confidence float64, dispo models.Disposition) {
	const barWidth = 24
	percent := int(confidence * 100)
	filled := percent * barWidth / 100
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}

	var barColor *color.Color
	switch dispo {
	case models.DispositionAccepted:
		barColor = color.New(color.FgGreen)
	case models.DispositionRejected:
		barColor = color.New(color.FgRed)
	default:
		barColor = color.New(color.FgYellow)
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(w, "  Confidence: %d%% ", percent)
	_, _ = barColor.Fprint(w, bar)
	dim := color.New(color.FgHiBlack)
	_, _ = dim.Fprintf(w, " (%s)\n", dispo)
}
