package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/DavidAtikpo/irata-sub002/internal/modules/checklist"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/duedate"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <record-id>",
		Short: "Show a stored record and its checklist tally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid record id %q: %w", args[0], err)
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			rec, err := client.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, rec)
			}

			rows := [][]string{
				{"Reference", rec.ReferenceInterne},
				{"Type", rec.EquipmentType},
				{"Batch", rec.BatchID},
				{"Serial", rec.NumeroSerie},
				{"Manufacturer", rec.Fabricant},
				{"Checked", rec.DateControle},
				{"Next inspection", rec.DateProchaineInspection},
				{"State", string(rec.Etat)},
			}
			if !rec.EtatOverride && rec.DateProchaineInspection != "" {
				rows = append(rows, []string{"Derived today", string(duedate.Derive(rec.DateProchaineInspection, timeNow()))})
			}
			if eqType, err := checklist.ParseEquipmentType(rec.EquipmentType); err == nil {
				tree := checklist.HydrateJSON([]byte(rec.InspectionData), checklist.MustTemplate(eqType))
				counts := tree.Count()
				rows = append(rows, []string{"Verdicts", fmt.Sprintf("V=%d NA=%d X=%d",
					counts[checklist.VerdictValid], counts[checklist.VerdictNotApplicable], counts[checklist.VerdictInvalid])})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw record")
	return cmd
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <record-id>",
		Short: "Download a record as an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid record id %q: %w", args[0], err)
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			data, err := client.Export(cmd.Context(), id)
			if err != nil {
				return err
			}
			if out == "" {
				out = id.String() + ".xlsx"
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output path (default <id>.xlsx)")
	return cmd
}
