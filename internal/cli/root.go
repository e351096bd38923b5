// Package cli implements the equipctl command line client.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/tphummel/equipment_tracker/internal/apiclient"
	"github.com/tphummel/equipment_tracker/internal/config"
	"github.com/tphummel/equipment_tracker/internal/inventory"
	"github.com/tphummel/equipment_tracker/internal/tracker"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Endpoint   string
	Token      string
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for equipctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "equipctl",
		Short: "Manage the equipment inventory",
		Long: `equipctl lists, adds, edits and deletes equipment records held by the
equipment tracker service.

The service URL and token come from --endpoint/--token, then the
EQUIPMENT_API_URL/EQUIPMENT_API_TOKEN environment variables, then the
--config file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Endpoint, "endpoint", "", "equipment service URL (default "+config.DefaultEndpoint+")")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "bearer token for the equipment service")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))

	return cmd
}

// newTracker builds the client state container from the resolved settings.
func (o *RootOptions) newTracker(cmd *cobra.Command) (*tracker.Tracker, error) {
	file, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	endpoint, token := config.Resolve(o.Endpoint, o.Token, os.Getenv(config.EnvEndpoint), os.Getenv(config.EnvToken), file)

	client, err := apiclient.NewClient(endpoint, apiclient.WithToken(token))
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd.ErrOrStderr(), o.Verbose)
	logger.Debug("using equipment service", "endpoint", client.BaseURL(), "token_set", token != "")

	storeOpts := []inventory.Option{inventory.WithLogger(logger)}
	if file.StaleGuard {
		storeOpts = append(storeOpts, inventory.WithStaleGuard())
	}
	state, err := file.ViewState()
	if err != nil {
		return nil, err
	}
	tr := tracker.New(inventory.New(client, storeOpts...), state)
	if o.Verbose {
		tr.Store().Subscribe(func(snap inventory.Snapshot) {
			logger.Debug("store state", snapshotAttrs(snap)...)
		})
	}
	return tr, nil
}

func snapshotAttrs(snap inventory.Snapshot) []any {
	attrs := []any{"records", len(snap.Records), "loading", snap.Loading}
	if snap.Err != nil {
		attrs = append(attrs, "error", snap.Err.Kind)
	}
	return attrs
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
