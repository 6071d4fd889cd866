package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/DavidAtikpo/irata-sub002/internal/modules/qrcode"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

func newQRCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Build, render and decode record QR codes",
	}
	cmd.AddCommand(newQRURLCommand(ctx))
	cmd.AddCommand(newQRRenderCommand(ctx))
	cmd.AddCommand(newQRDecodeCommand(ctx))
	return cmd
}

func newQRURLCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "url <record-id> [reference]",
		Short: "Print the public URL a record's code points at",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid record id %q: %w", args[0], err)
			}
			ref := ""
			if len(args) == 2 {
				ref = args[1]
			}
			fmt.Fprintln(cmd.OutOrStdout(), qrcode.PublicURL(ctx.publicOrigin(), id, ref))
			return nil
		},
	}
}

func newQRRenderCommand(ctx *commandContext) *cobra.Command {
	var (
		out      string
		size     int
		fontPath string
	)

	cmd := &cobra.Command{
		Use:   "render <record-id> [reference]",
		Short: "Render the branded code of a record to a PNG file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid record id %q: %w", args[0], err)
			}
			ref := ""
			if len(args) == 2 {
				ref = args[1]
			}
			r, err := qrcode.NewRenderer(qrcode.RenderConfig{Size: size, FontPath: fontPath}, logger.Nop())
			if err != nil {
				return err
			}
			img := r.Render(qrcode.PublicURL(ctx.publicOrigin(), id, ref))
			if img.Degraded {
				fmt.Fprintf(cmd.ErrOrStderr(), "render failed, fallback: %s\n", img.URL)
				return fmt.Errorf("branded render unavailable")
			}
			if out == "" {
				out = id.String() + ".png"
			}
			if err := os.WriteFile(out, img.PNG, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", img.Content, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output PNG path (default <id>.png)")
	cmd.Flags().IntVar(&size, "size", 300, "Image size in pixels")
	cmd.Flags().StringVar(&fontPath, "font", "", "TrueType font for the wordmark")
	return cmd
}

func newQRDecodeCommand(ctx *commandContext) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "decode <image>",
		Short: "Decode a QR photo into a record patch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var res *qrcode.Result
			if local {
				// Offline decode cannot resolve equipment profiles.
				res, err = qrcode.NewDecoder(nil, logger.Nop()).DecodeImage(cmd.Context(), data)
			} else {
				client, cerr := ctx.client()
				if cerr != nil {
					return cerr
				}
				res, err = client.DecodeQR(cmd.Context(), filepath.Base(args[0]), data)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd, res)
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Decode without a server")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
