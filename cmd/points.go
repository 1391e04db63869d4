package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/UnknownOlympus/waypoint/internal/export"
	"github.com/UnknownOlympus/waypoint/internal/models"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored points",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit ticket, order number, priority or reason of a point",
	Long: `Edit the operator fields of a stored point. Only the given flags change;
an empty --ticket or --order clears the field.

Examples:
  waypoint edit 0190f3c2-7d7e-7b2a-9d0e-4c1e2f3a4b5c --priority high --ticket T-1042`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored points",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	listCmd.Flags().StringP("format", "f", "table", "output format: table, json or geojson")

	addEditFlags(editCmd)

	clearCmd.Flags().Bool("yes", false, "do not ask for confirmation")
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "table", "json", "geojson":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	points := a.points.List(ctx)

	switch format {
	case "geojson":
		out, err := export.MarshalGeoJSON(points)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	case "json":
		out, err := json.MarshalIndent(points, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRIORITY\tTICKET\tORDER\tZRD\tLAT\tLON\tADDRESS")
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.6f\t%.6f\t%s\n",
			p.ID, p.Priority, p.Ticket, p.OrderNumber, p.ReferenceCode,
			p.Location.Latitude, p.Location.Longitude, p.SourceAddress)
	}

	return w.Flush()
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	edit, err := editFromFlags(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	updated, err := a.points.Edit(ctx, args[0], edit)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: priority=%s ticket=%q order=%q\n",
		updated.ID, updated.Priority, updated.Ticket, updated.OrderNumber)

	return nil
}

func addEditFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("ticket", "", "ticket number")
	f.String("order", "", "order number")
	f.String("priority", "", "priority: low, medium or high")
	f.String("reason", "", "reason for the work order")
}

// editFromFlags sets only the fields whose flags were given.
func editFromFlags(cmd *cobra.Command) (models.PointEdit, error) {
	var edit models.PointEdit
	flags := cmd.Flags()

	stringFlag := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		value, _ := flags.GetString(name)
		return &value
	}

	edit.Ticket = stringFlag("ticket")
	edit.OrderNumber = stringFlag("order")
	edit.ReasonText = stringFlag("reason")

	if raw := stringFlag("priority"); raw != nil {
		priority, err := models.ParsePriority(*raw)
		if err != nil {
			return models.PointEdit{}, err
		}
		edit.Priority = &priority
	}

	if edit == (models.PointEdit{}) {
		return edit, errors.New("nothing to edit: pass at least one of --ticket, --order, --priority, --reason")
	}

	return edit, nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	yes, _ := cmd.Flags().GetBool("yes")

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if !yes {
		count := len(a.points.List(ctx))
		fmt.Fprintf(cmd.OutOrStdout(), "Delete all %d points? [y/N] ", count)

		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if reply := strings.ToLower(strings.TrimSpace(answer)); reply != "y" && reply != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	if err = a.points.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "All points deleted.")

	return nil
}
