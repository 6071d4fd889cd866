package main

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/DavidAtikpo/irata-sub002/internal/clients/inspectionapi"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

// commandContext carries the persistent flags shared by every subcommand.
type commandContext struct {
	server  string
	origin  string
	timeout time.Duration
}

var errNoServer = errors.New("no server configured: pass --server or set INSPECTION_SERVER")

func (c *commandContext) client() (*inspectionapi.Client, error) {
	base := strings.TrimSpace(c.server)
	if base == "" {
		base = strings.TrimSpace(os.Getenv("INSPECTION_SERVER"))
	}
	if base == "" {
		return nil, errNoServer
	}
	return inspectionapi.New(base, c.timeout, logger.Nop()), nil
}

func (c *commandContext) publicOrigin() string {
	if o := strings.TrimSpace(c.origin); o != "" {
		return o
	}
	if o := strings.TrimSpace(os.Getenv("PUBLIC_ORIGIN")); o != "" {
		return o
	}
	return "http://localhost:5173"
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "inspectctl",
		Short:         "Inspect and operate equipment inspection records",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.server, "server", "", "Base URL of the inspection API")
	rootCmd.PersistentFlags().StringVar(&ctx.origin, "origin", "", "Public origin used in QR links")
	rootCmd.PersistentFlags().DurationVar(&ctx.timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(newFieldsCommand())
	rootCmd.AddCommand(newStateCommand())
	rootCmd.AddCommand(newQRCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newProfileCommand(ctx))

	return rootCmd
}
