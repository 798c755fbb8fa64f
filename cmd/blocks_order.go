package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/botcanvas/blockcore/internal/loader"
	"github.com/botcanvas/blockcore/internal/resolver"
)

var orderJSON bool

var blocksOrderCmd = &cobra.Command{
	Use:   "blocks:order",
	Short: "Preview registration order without registering anything",
	Long: `Load every configured definition source and print the dependency-resolved
registration order. Nothing is registered and no cache is touched, so this
is safe to run against sources that are still being edited.

Source failures, unresolvable cycles and references to blocks outside the
batch are reported instead of an order.

Examples:
  blockcore blocks:order
  blockcore blocks:order --json | jq .order`,
	RunE: runBlocksOrder,
}

func init() {
	rootCmd.AddCommand(blocksOrderCmd)

	blocksOrderCmd.Flags().BoolVar(&orderJSON, "json", false, "print the resolution as JSON")
}

// orderPreview is the blocks:order payload: the order plus everything that
// would surface as a warning during a real initialization.
type orderPreview struct {
	Order        []string      `json:"order"`
	External     []externalRef `json:"external,omitempty"`
	Warnings     []string      `json:"warnings,omitempty"`
	SourceErrors []string      `json:"source_errors,omitempty"`
	Sources      int           `json:"sources"`
	Failed       int           `json:"failed"`
}

type externalRef struct {
	BlockID      string `json:"block_id"`
	DependencyID string `json:"dependency_id"`
}

func runBlocksOrder(_ *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sources := buildSources(cfg)
	batch := loader.New(loader.Config{Concurrency: cfg.Loader.Concurrency}).Load(ctx, sources)

	out := orderPreview{
		Order:    []string{},
		Warnings: batch.Warnings,
		Sources:  batch.Sources,
		Failed:   batch.Failed,
	}
	for _, record := range batch.Errors {
		out.SourceErrors = append(out.SourceErrors, record.Error())
	}

	if len(batch.Definitions) > 0 {
		res, err := resolver.New().Resolve(batch.Definitions)
		if err != nil {
			return fmt.Errorf("resolution failed: %w", err)
		}
		for _, def := range res.Order {
			out.Order = append(out.Order, def.ID)
		}
		out.Warnings = append(out.Warnings, res.Warnings...)
		for _, ext := range res.External {
			out.External = append(out.External, externalRef{
				BlockID:      ext.BlockID,
				DependencyID: ext.DependencyID,
			})
		}
	}

	if orderJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	printOrderPreview(os.Stdout, out)
	return nil
}

func printOrderPreview(w *os.File, out orderPreview) {
	for i, id := range out.Order {
		fmt.Fprintf(w, "%3d. %s\n", i+1, id)
	}
	if len(out.Order) == 0 {
		fmt.Fprintln(w, "no definitions loaded")
	}
	for _, ext := range out.External {
		fmt.Fprintf(w, "external: %s requires %s\n", ext.BlockID, ext.DependencyID)
	}
	for _, warning := range out.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	for _, srcErr := range out.SourceErrors {
		fmt.Fprintf(w, "source error: %s\n", srcErr)
	}
}
