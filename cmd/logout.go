// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"mxprobe/cli/internal/auth"
	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/session"
)

var logoutAll bool

// logoutCmd forgets what the keychain holds for the target.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove captured headers (and with --all, identity secrets) for the target",
	Long: `The logout command removes the captured session headers stored for the
target host. With --all it also deletes the keychain secret of every identity
the profile knows. The profile file itself is left alone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, t, err := loadTarget()
		if err != nil {
			return err
		}
		u, err := session.ValidateBaseURL(t.URL)
		if err != nil {
			return err
		}
		km := openKeychain()
		if km == nil {
			return mxerrors.New(mxerrors.Config, "no keychain available on this host")
		}
		if logoutAll {
			err = km.ClearTarget(u.Host, t.Identities)
		} else {
			err = auth.ClearHeaders(km, u.Host)
		}
		if err != nil {
			return err
		}
		pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Removed stored credentials for %s", u.Host)
		return nil
	},
}

func init() {
	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "Also delete the secrets of the profile's identities")
	rootCmd.AddCommand(logoutCmd)
}
