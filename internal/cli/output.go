package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/tphummel/equipment_tracker/internal/form"
	"github.com/tphummel/equipment_tracker/internal/inventory"
	"github.com/tphummel/equipment_tracker/internal/models"
)

const emptyMessage = "No equipment found."

var errSuperseded = errors.New("superseded by a newer request for the same equipment")

// renderRecords writes rows as a table or a JSON array.
func renderRecords(w io.Writer, format string, rows []models.Equipment) error {
	if format == "json" {
		if rows == nil {
			rows = []models.Equipment{}
		}
		return writeJSON(w, rows)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, emptyMessage)
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Type", "Status", "Last Cleaned"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.ID, r.Name, r.Type, r.Status, r.LastCleaned})
	}
	t.Render()
	return nil
}

// renderRecord writes a single record.
func renderRecord(w io.Writer, format string, rec models.Equipment) error {
	if format == "json" {
		return writeJSON(w, rec)
	}
	return renderRecords(w, format, []models.Equipment{rec})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// await blocks until p resolves and converts a failed outcome into an error
// carrying the user-facing message of its kind. A stale outcome was never
// applied and is an error too.
func await(ctx context.Context, p *inventory.Pending) (inventory.Result, error) {
	r, err := p.Wait(ctx)
	if err != nil {
		return r, err
	}
	if r.Err != nil {
		return r, fmt.Errorf("%s: %w", r.Err.Kind.Message(), r.Err)
	}
	if r.Stale {
		return r, errSuperseded
	}
	return r, nil
}

// printFieldErrors writes one line per failing field in form order.
func printFieldErrors(w io.Writer, fe form.FieldErrors) {
	for _, f := range fe.Fields() {
		fmt.Fprintf(w, "  %s: %s\n", f, fe[f])
	}
}
