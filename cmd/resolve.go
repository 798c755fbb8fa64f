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

	"github.com/botcanvas/blockcore/internal/alias"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Show how a block id resolves through the alias ladder",
	Long: `Initialize the block subsystem and report how the given id resolves:
the static legacy table verdict, whether a registered block answers to it,
and every spelling the resolved block is known by.

Useful when a canvas document carries historical block ids.

Examples:
  blockcore resolve message.text
  blockcore resolve send_text
  blockcore resolve webhook`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

// resolveReport is the resolve payload: one rung per lookup stage.
type resolveReport struct {
	Input      string   `json:"input"`
	Legacy     bool     `json:"legacy_spelling"`
	Canonical  string   `json:"canonical,omitempty"`
	Registered bool     `json:"registered"`
	ResolvedID string   `json:"resolved_id,omitempty"`
	KnownAs    []string `json:"known_as,omitempty"`
}

func runResolve(_ *cobra.Command, args []string) error {
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

	table := alias.Default()
	report := resolveReport{Input: id}
	if canonical, ok := table.Resolve(id); ok {
		report.Canonical = canonical
		report.Legacy = canonical != id
	}
	if def, ok := sys.reg.Get(id); ok {
		report.Registered = true
		report.ResolvedID = def.ID
		report.KnownAs = sys.reg.AliasesFor(def.ID)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
