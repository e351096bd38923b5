package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tphummel/equipment_tracker/internal/form"
	"github.com/tphummel/equipment_tracker/internal/models"
	"github.com/tphummel/equipment_tracker/internal/tracker"
)

// fieldFlags maps each editable field to its flag.
var fieldFlags = map[models.Field]string{
	models.FieldName:        "name",
	models.FieldType:        "type",
	models.FieldStatus:      "status",
	models.FieldLastCleaned: "last-cleaned",
}

// addFieldFlags registers one string flag per editable field on cmd.
func addFieldFlags(cmd *cobra.Command, values map[models.Field]*string) {
	for _, f := range models.Fields {
		v := new(string)
		values[f] = v
		cmd.Flags().StringVar(v, fieldFlags[f], "", fieldUsage(f))
	}
}

func fieldUsage(f models.Field) string {
	switch f {
	case models.FieldType:
		return "equipment type (Machine|Vessel|Tank|Mixer)"
	case models.FieldStatus:
		return `equipment status (Active|Inactive|"Under Maintenance")`
	case models.FieldLastCleaned:
		return "date last cleaned (YYYY-MM-DD)"
	}
	return "equipment name"
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	values := make(map[models.Field]*string)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add equipment",
		Long:  "Add an equipment record. Every field is required.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := rootOpts.newTracker(cmd)
			if err != nil {
				return err
			}
			c := tr.OpenCreate()
			for _, f := range models.Fields {
				c.SetField(f, canonical(f, *values[f]))
			}
			return submit(rootOpts, tr, cmd)
		},
	}
	addFieldFlags(cmd, values)

	return cmd
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	values := make(map[models.Field]*string)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit equipment",
		Long: `Edit an equipment record. Fields not given keep their current value;
the whole record is sent back to the service.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := rootOpts.newTracker(cmd)
			if err != nil {
				return err
			}
			if _, err := await(cmd.Context(), tr.Load(cmd.Context())); err != nil {
				return err
			}
			c, err := tr.OpenEdit(args[0])
			if err != nil {
				return err
			}
			for _, f := range models.Fields {
				if cmd.Flags().Changed(fieldFlags[f]) {
					c.SetField(f, canonical(f, *values[f]))
				}
			}
			return submit(rootOpts, tr, cmd)
		},
	}
	addFieldFlags(cmd, values)

	return cmd
}

// submit sends the open form and prints the stored record.
func submit(rootOpts *RootOptions, tr *tracker.Tracker, cmd *cobra.Command) error {
	p, err := tr.SubmitForm(cmd.Context())
	var fe form.FieldErrors
	if errors.As(err, &fe) {
		printFieldErrors(cmd.ErrOrStderr(), fe)
		return err
	}
	if err != nil {
		return err
	}
	r, err := await(cmd.Context(), p)
	if err != nil {
		return err
	}
	return renderRecord(cmd.OutOrStdout(), rootOpts.Format, *r.Record)
}

// canonical returns the enumerated spelling of a type or status entered in
// any case. Other values are returned unchanged.
func canonical(f models.Field, value string) string {
	switch f {
	case models.FieldType:
		for _, t := range models.Types {
			if strings.EqualFold(value, string(t)) {
				return string(t)
			}
		}
	case models.FieldStatus:
		for _, s := range models.Statuses {
			if strings.EqualFold(value, string(s)) {
				return string(s)
			}
		}
	}
	return value
}
