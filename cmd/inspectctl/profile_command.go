package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
)

func newProfileCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Read and register equipment profiles behind profile QR codes",
	}
	cmd.AddCommand(newProfileGetCommand(ctx))
	cmd.AddCommand(newProfileRegisterCommand(ctx))
	return cmd
}

func newProfileGetCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <code>",
		Short: "Show the profile a /equipment/<code> link resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			p, err := client.LookupProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, p)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, profileRows(p)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw profile")
	return cmd
}

func newProfileRegisterCommand(ctx *commandContext) *cobra.Command {
	var p inspection.Profile

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register an equipment profile so its QR code can prefill records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Code = strings.TrimSpace(p.Code)
			if p.Code == "" {
				return errors.New("--code is required")
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			out, err := client.RegisterProfile(cmd.Context(), &p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", out.Code, out.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.Code, "code", "", "Profile code printed in the QR link")
	f.StringVar(&p.ReferenceInterne, "reference", "", "Internal reference")
	f.StringVar(&p.NumeroSerie, "serial", "", "Serial number")
	f.StringVar(&p.Fabricant, "manufacturer", "", "Manufacturer")
	f.StringVar(&p.Normes, "standards", "", "Applicable standards")
	f.StringVar(&p.DateControle, "checked", "", "Last check date (dd/mm/yyyy)")
	f.StringVar(&p.Signataire, "signatory", "", "Signatory")
	f.StringVar(&p.Produit, "product", "", "Product name")
	f.StringVar(&p.CertificateURL, "certificate-url", "", "Certificate PDF link")
	return cmd
}

func profileRows(p *inspection.Profile) [][]string {
	return [][]string{
		{"Code", p.Code},
		{"Reference", p.ReferenceInterne},
		{"Serial", p.NumeroSerie},
		{"Manufacturer", p.Fabricant},
		{"Standards", p.Normes},
		{"Checked", p.DateControle},
		{"Product", p.Produit},
		{"Certificate", p.CertificateURL},
	}
}
