// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/objects"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity, user GUID and metadata size of a fresh session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		c.greet()
		pterm.Info.WithWriter(c.out).Printfln("%d classes, %d microflows visible", len(c.objects.ListClasses()), len(c.flows.OperationIDs()))
		return nil
	},
}

var classesCmd = &cobra.Command{
	Use:     "classes",
	Aliases: []string{"list"},
	Short:   "List the object types declared in the session metadata",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		c.listClasses()
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <Type> [limit]",
	Short: "Retrieve up to limit objects of a type (default 10)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit := objects.DefaultLimit
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return mxerrors.New(mxerrors.Config, "limit must be a positive number")
			}
			limit = n
		}
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		return c.query(cmd.Context(), strings.TrimPrefix(args[0], "//"), limit)
	},
}

var idCmd = &cobra.Command{
	Use:   "id <guid>",
	Short: "Retrieve one object by guid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		return c.byID(cmd.Context(), args[0])
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Retrieve one object of every declared class",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		c.sample(cmd.Context())
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <guid> <attribute> <value...>",
	Short: "Commit a new value for one attribute of an object",
	Long: `The update command sends a commit action setting one attribute of one object.
Remaining arguments are joined with spaces to form the value. There is no
conflict detection: the last write wins.`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		return c.update(cmd.Context(), args[0], args[1], strings.Join(args[2:], " "))
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan <guid>",
	Short: "Retrieve an object as every known identity, then restore the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		return c.scan(cmd.Context(), args[0])
	},
}

var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "Invoke every microflow the session metadata exposes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		c.runFlows(cmd.Context())
		return nil
	},
}

var (
	monitorDest     string
	monitorInterval time.Duration
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Download every new System.FileDocument until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		cmd.SetContext(ctx)
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		return c.monitorFiles(ctx, monitorDest, monitorInterval)
	},
}

var sourceIPCmd = &cobra.Command{
	Use:   "source-ip",
	Short: "Show the public IP the target sees, through the configured proxy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, t, err := loadTarget()
		if err != nil {
			return err
		}
		c, err := newClient(t, nil, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		ip, err := c.sourceIP(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, ip)
		return nil
	},
}

func init() {
	monitorCmd.Flags().StringVar(&monitorDest, "dest", "", "Download directory (default: profile download_dir or the XDG data dir)")
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 0, "Poll interval (default: profile poll_interval or 2s)")
	rootCmd.AddCommand(whoamiCmd, classesCmd, getCmd, idCmd, sampleCmd, updateCmd, scanCmd, flowsCmd, monitorCmd, sourceIPCmd)
}
