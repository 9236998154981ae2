// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for mxprobe, a client for
// the XAS action protocol spoken by Mendix application runtimes. Commands
// are built with cobra; each one opens a session against the selected
// target, bootstraps an identity, and renders results with pterm.
package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"mxprobe/cli/internal/backend"
	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/httperrors"
	"mxprobe/cli/internal/logging"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	url           string
	proxy         string
	profile       string
	as            string
	headers       []string
	verbose       bool
	metricsListen string
}

var globals globalOptions

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mxprobe",
	Short: "Client for the XAS action protocol of Mendix runtimes",
	Long: `mxprobe talks to a Mendix application runtime the way its browser client does:
it logs in as an identity (or anonymously), reads the session metadata, and
retrieves, updates and lists the objects that identity can reach.

Targets are configured as profiles ('mxprobe profile set') or given ad hoc with
--url. Identity secrets live in the OS keychain ('mxprobe identity add').`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if globals.verbose {
			os.Setenv(logging.VerboseEnv, "1")
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		presentError(err)
		os.Exit(exitCode(err))
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&globals.url, "url", "", "Base URL of the target (overrides the profile)")
	f.StringVar(&globals.proxy, "proxy", "", "http(s) or socks5 proxy URL (overrides the profile)")
	f.StringVar(&globals.profile, "profile", "default", "Named target profile")
	f.StringVar(&globals.as, "as", "", "Log in as this known identity instead of anonymously")
	f.StringArrayVarP(&globals.headers, "header", "H", nil, "Captured request header 'Name: value' to bootstrap the session (repeatable)")
	f.BoolVar(&globals.verbose, "verbose", false, "Print [DEBUG] diagnostics to stderr")
	f.StringVar(&globals.metricsListen, "metrics-listen", "", "Expose Prometheus metrics on this address (e.g. :9464)")
}

func presentError(err error) {
	if se, ok := backend.AsStatusError(err); ok {
		fmt.Fprint(os.Stderr, logging.FormatActionError(se.Action, se.StatusCode, se.Body))
		return
	}
	if httperrors.Classify(err) != httperrors.CategoryUnrelated {
		host := httperrors.ExtractHostFromURL(globals.url)
		_ = httperrors.FormatNetworkError(os.Stderr, err, host, "talking to the target")
	}
	pterm.Error.WithWriter(os.Stderr).Println(logging.PresentError("", err))
}

func exitCode(err error) int {
	if mxerrors.KindOf(err) == mxerrors.Config {
		return 2
	}
	return 1
}
