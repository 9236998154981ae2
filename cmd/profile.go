// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"mxprobe/cli/internal/config"
	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/logging"
	"mxprobe/cli/internal/session"
)

type profileFlags struct {
	timeout      time.Duration
	downloadDir  string
	pollInterval time.Duration
	actionPath   string
	filePath     string
	cookies      []string
	clearHeaders bool
}

var profileSet profileFlags

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage named target profiles",
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update the profile selected by --profile",
	Long: `The profile set command stores the target settings given as flags under the
profile selected by --profile. --url, --proxy and -H are the global flags;
flags that are not given keep their stored value.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		name := profileName()
		t, _ := cfg.Target(name)
		if err := applyProfileFlags(cmd, &t, profileSet); err != nil {
			return err
		}
		cfg.SetTarget(name, t)
		if err := config.Save(cfg); err != nil {
			return err
		}
		pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Profile %s saved (%s)", name, t.URL)
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the selected profile, or every profile with --all",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if showAllProfiles {
			rows := pterm.TableData{{"Profile", "URL", "Identities"}}
			for _, n := range cfg.ProfileNames() {
				t, _ := cfg.Target(n)
				rows = append(rows, []string{n, t.URL, strings.Join(t.Identities, ",")})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).WithWriter(out).Render()
		}
		name := profileName()
		t, ok := cfg.Target(name)
		if !ok {
			return mxerrors.New(mxerrors.Config, "no profile named "+name)
		}
		fmt.Fprint(out, describeTarget(name, t))
		return nil
	},
}

var showAllProfiles bool

// applyProfileFlags copies the flags that were set on cmd into t.
func applyProfileFlags(cmd *cobra.Command, t *config.Target, f profileFlags) error {
	if globals.url != "" {
		u := session.NormalizeBaseURL(globals.url)
		if _, err := session.ValidateBaseURL(u); err != nil {
			return err
		}
		t.URL = u
	}
	if t.URL == "" {
		return mxerrors.New(mxerrors.Config, "a profile needs --url")
	}
	if globals.proxy != "" {
		t.Proxy = globals.proxy
	}
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		t.Timeout = f.timeout
	}
	if flags.Changed("download-dir") {
		t.DownloadDir = f.downloadDir
	}
	if flags.Changed("poll-interval") {
		t.PollInterval = f.pollInterval
	}
	if flags.Changed("action-path") {
		t.Endpoints.Action = f.actionPath
	}
	if flags.Changed("file-path") {
		t.Endpoints.File = f.filePath
	}
	if f.clearHeaders {
		t.Headers = nil
	}
	headers, err := parseHeaderFlags(globals.headers)
	if err != nil {
		return err
	}
	for k, v := range headers {
		if t.Headers == nil {
			t.Headers = map[string]string{}
		}
		t.Headers[k] = v
	}
	for _, c := range f.cookies {
		k, v, ok := strings.Cut(c, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return mxerrors.New(mxerrors.Config, "cookie must look like name=value")
		}
		if t.Cookies == nil {
			t.Cookies = map[string]string{}
		}
		t.Cookies[strings.TrimSpace(k)] = v
	}
	return nil
}

// describeTarget renders a profile with secrets in header and cookie values masked.
func describeTarget(name string, t config.Target) string {
	var b strings.Builder
	fmt.Fprintf(&b, "profile:       %s\n", name)
	fmt.Fprintf(&b, "url:           %s\n", t.URL)
	if t.Proxy != "" {
		fmt.Fprintf(&b, "proxy:         %s\n", logging.Mask(t.Proxy))
	}
	if t.Timeout > 0 {
		fmt.Fprintf(&b, "timeout:       %s\n", t.Timeout)
	}
	if t.PollInterval > 0 {
		fmt.Fprintf(&b, "poll interval: %s\n", t.PollInterval)
	}
	if t.DownloadDir != "" {
		fmt.Fprintf(&b, "download dir:  %s\n", t.DownloadDir)
	}
	ep := t.Endpoints.WithDefaults()
	fmt.Fprintf(&b, "endpoints:     %s %s\n", ep.Action, ep.File)
	if len(t.Identities) > 0 {
		fmt.Fprintf(&b, "identities:    %s\n", strings.Join(t.Identities, ", "))
	}
	writeSorted(&b, "header", t.Headers)
	writeSorted(&b, "cookie", t.Cookies)
	return b.String()
}

func writeSorted(b *strings.Builder, label string, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "%-14s %s\n", label+":", logging.Mask(k+": "+m[k]))
	}
}

func init() {
	f := profileSetCmd.Flags()
	f.DurationVar(&profileSet.timeout, "timeout", 0, "Per-request timeout (default 30s)")
	f.StringVar(&profileSet.downloadDir, "download-dir", "", "Destination of 'monitor'")
	f.DurationVar(&profileSet.pollInterval, "poll-interval", 0, "Pause between monitor polls (default 2s)")
	f.StringVar(&profileSet.actionPath, "action-path", "", "Action endpoint path (default /xas/)")
	f.StringVar(&profileSet.filePath, "file-path", "", "File endpoint path (default /file)")
	f.StringArrayVar(&profileSet.cookies, "cookie", nil, "Extra cookie name=value sent with every request (repeatable)")
	f.BoolVar(&profileSet.clearHeaders, "clear-headers", false, "Drop the stored captured headers before applying -H")
	profileShowCmd.Flags().BoolVar(&showAllProfiles, "all", false, "List every profile")
	profileCmd.AddCommand(profileSetCmd, profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}
