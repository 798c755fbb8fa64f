package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/botcanvas/blockcore/internal/block"
	"github.com/botcanvas/blockcore/internal/registry"
)

var (
	listCategory     string
	listContext      string
	listTags         []string
	listSearch       string
	listEnabledOnly  bool
	listExperimental bool
)

var blocksListCmd = &cobra.Command{
	Use:   "blocks:list",
	Short: "List the registered block palette",
	Long: `Initialize the block subsystem and list the registered palette as JSON.

Use --category, --context, --tag and --search to narrow the listing.
Filters are AND-combined. Experimental blocks are hidden unless
--experimental is set.

Examples:
  # List every block
  blockcore blocks:list

  # Filter by category
  blockcore blocks:list --category message

  # Blocks usable on the rich message canvas
  blockcore blocks:list --context rich-message

  # Filter by multiple tags (AND logic - must match ALL)
  blockcore blocks:list -t media -t capture

  # Case-insensitive search over ids, names, descriptions and tags
  blockcore blocks:list --search webhook

  # Parse specific fields with jq
  blockcore blocks:list | jq '.[].id'
  blockcore blocks:list | jq '.[].category'`,
	RunE: runBlocksList,
}

func init() {
	blocksListCmd.Flags().StringVar(&listCategory, "category", "", "Filter by category (e.g., message)")
	blocksListCmd.Flags().StringVar(&listContext, "context", "", "Filter by canvas context (e.g., rich-message)")
	blocksListCmd.Flags().StringArrayVarP(&listTags, "tag", "t", nil, "Filter by tag (can be repeated, e.g., --tag media)")
	blocksListCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Search ids, names, descriptions and tags")
	blocksListCmd.Flags().BoolVar(&listEnabledOnly, "enabled-only", false, "Hide blocks disabled in the palette")
	blocksListCmd.Flags().BoolVar(&listExperimental, "experimental", false, "Include experimental blocks")
	rootCmd.AddCommand(blocksListCmd)
}

func runBlocksList(_ *cobra.Command, _ []string) error {
	query, err := buildQuery()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sys, err := buildSubsystem(cfg)
	if err != nil {
		return err
	}
	defer sys.Close(context.Background())

	if err := initializeOrFail(ctx, sys); err != nil {
		return err
	}

	defs := sys.reg.Filter(query)
	if defs == nil {
		// An empty palette still renders as a JSON array.
		defs = []block.Definition{}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(defs)
}

// buildQuery validates the listing flags and maps them to a registry query.
func buildQuery() (registry.Query, error) {
	query := registry.Query{
		Tags:                listTags,
		Search:              listSearch,
		EnabledOnly:         listEnabledOnly,
		IncludeExperimental: listExperimental,
	}
	if listCategory != "" {
		category := block.Category(listCategory)
		if !category.Valid() {
			return registry.Query{}, fmt.Errorf("unknown category %q (valid: %v)", listCategory, block.Categories())
		}
		query.Category = category
	}
	if listContext != "" {
		canvasCtx := block.CanvasContext(listContext)
		if !canvasCtx.Valid() {
			return registry.Query{}, fmt.Errorf("unknown canvas context %q (valid: %v)", listContext, block.CanvasContexts())
		}
		query.Context = canvasCtx
	}
	return query, nil
}

// initializeOrFail runs initialization and surfaces the fatal error when
// the subsystem ends in the error state.
func initializeOrFail(ctx context.Context, sys *subsystem) error {
	res, err := sys.orch.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("waiting for initialization: %w", err)
	}
	if !res.Success {
		if len(res.Errors) > 0 {
			return fmt.Errorf("initialization failed: %s", res.Errors[len(res.Errors)-1])
		}
		return fmt.Errorf("initialization failed after %d attempt(s)", res.Attempts)
	}
	return nil
}
