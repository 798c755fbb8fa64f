package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/botcanvas/blockcore/internal/block"
)

var blocksInfoCmd = &cobra.Command{
	Use:   "blocks:info <id>",
	Short: "Show a single block with its aliases and warnings",
	Long: `Initialize the block subsystem and print one block definition as JSON,
together with the legacy spellings that resolve to it and any warnings
recorded during its registration.

The id goes through the same lookup the canvas uses: exact match first,
then the legacy alias table, then a normalized form of the id.

Examples:
  blockcore blocks:info message.text

  # Legacy spellings resolve too
  blockcore blocks:info send_text`,
	Args: cobra.ExactArgs(1),
	RunE: runBlocksInfo,
}

func init() {
	rootCmd.AddCommand(blocksInfoCmd)
}

// blockInfo is the blocks:info payload: the definition plus lookup and
// registration context.
type blockInfo struct {
	block.Definition
	KnownAs  []string `json:"known_as,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func runBlocksInfo(_ *cobra.Command, args []string) error {
	id := strings.TrimSpace(args[0])
	if id == "" {
		return fmt.Errorf("block id must not be empty")
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

	def, ok := sys.reg.Get(id)
	if !ok {
		return fmt.Errorf("block %q is not registered", id)
	}

	info := blockInfo{
		Definition: def,
		KnownAs:    sys.reg.AliasesFor(def.ID),
		Warnings:   sys.reg.WarningsFor(def.ID),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
