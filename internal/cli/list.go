package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tphummel/equipment_tracker/internal/models"
	"github.com/tphummel/equipment_tracker/internal/view"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	Search string
	Type   string
	Sort   string
	Desc   bool
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List equipment",
		Long: `List equipment, optionally filtered by a case-insensitive name search
and an equipment type, ordered by one column.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "only show names containing this text")
	cmd.Flags().StringVarP(&opts.Type, "type", "t", "", "only show this type (Machine|Vessel|Tank|Mixer)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort column (name|type|status|lastCleaned)")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "sort descending")

	return cmd
}

func runList(rootOpts *RootOptions, opts *ListOptions, cmd *cobra.Command) error {
	tr, err := rootOpts.newTracker(cmd)
	if err != nil {
		return err
	}

	typ, err := parseType(opts.Type)
	if err != nil {
		return err
	}
	state := tr.View()
	if opts.Sort != "" {
		key, err := view.ParseSortKey(opts.Sort)
		if err != nil {
			return err
		}
		state.SortKey, state.Direction = key, view.Ascending
	}
	if opts.Desc {
		state.Direction = view.Descending
	}
	tr.SetSearch(opts.Search)
	tr.SetTypeFilter(typ)
	tr.SetSort(state.SortKey, state.Direction)

	if _, err := await(cmd.Context(), tr.Load(cmd.Context())); err != nil {
		return err
	}
	return renderRecords(cmd.OutOrStdout(), rootOpts.Format, tr.Rows())
}

// parseType matches s case-insensitively against the equipment types. The
// empty string means any type.
func parseType(s string) (models.Type, error) {
	if s == "" {
		return "", nil
	}
	for _, t := range models.Types {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid type %q: must be one of %v", s, models.Types)
}
