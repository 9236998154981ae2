// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"mxprobe/cli/internal/config"
	"mxprobe/cli/internal/session"
	"mxprobe/cli/internal/terminal"
)

var identityCmd = &cobra.Command{
	Use:     "identity",
	Aliases: []string{"identities"},
	Short:   "Manage the known identities of the target",
	Long: `Known identities are the credentials 'scan' and 'login <name>' use. Names are
recorded on the profile; secrets go to the OS keychain under the target host.
On hosts without a keychain, point MXPROBE_IDENTITIES_FILE at a YAML file of
"name: secret" pairs instead.`,
}

var identityAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Store a secret for an identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, t, err := loadTarget()
		if err != nil {
			return err
		}
		u, err := session.ValidateBaseURL(t.URL)
		if err != nil {
			return err
		}
		store, err := newStore(u.Host, t, openKeychain())
		if err != nil {
			return err
		}
		secret, err := terminal.ReadSecret("Secret for " + args[0] + ": ")
		if err != nil {
			return err
		}
		if err := store.Add(args[0], secret); err != nil {
			return err
		}
		t.AddIdentity(args[0])
		if err := saveProfileTarget(cfg, t); err != nil {
			return err
		}
		pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Identity %s stored for %s", args[0], u.Host)
		return nil
	},
}

var identityRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Forget an identity and delete its secret",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, t, err := loadTarget()
		if err != nil {
			return err
		}
		u, err := session.ValidateBaseURL(t.URL)
		if err != nil {
			return err
		}
		store, err := newStore(u.Host, t, openKeychain())
		if err != nil {
			return err
		}
		if err := store.Remove(args[0]); err != nil {
			return err
		}
		t.RemoveIdentity(args[0])
		if err := saveProfileTarget(cfg, t); err != nil {
			return err
		}
		pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Identity %s removed", args[0])
		return nil
	},
}

var identityListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List known identities and where their secrets come from",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, t, err := loadTarget()
		if err != nil {
			return err
		}
		u, err := session.ValidateBaseURL(t.URL)
		if err != nil {
			return err
		}
		store, err := newStore(u.Host, t, openKeychain())
		if err != nil {
			return err
		}
		names := store.Names()
		if len(names) == 0 {
			pterm.Info.WithWriter(cmd.OutOrStdout()).Printfln("No identities known for %s", u.Host)
			return nil
		}
		rows := pterm.TableData{{"Identity", "Secret"}}
		for _, n := range names {
			rows = append(rows, []string{n, store.Source(n)})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).WithWriter(cmd.OutOrStdout()).Render()
	},
}

// saveProfileTarget writes t back under the selected profile. The URL and
// headers merged in from flags are not persisted by identity commands.
func saveProfileTarget(cfg config.Config, t config.Target) error {
	stored, ok := cfg.Target(profileName())
	if !ok {
		stored = config.Target{URL: t.URL}
	}
	stored.Identities = t.Identities
	cfg.SetTarget(profileName(), stored)
	return config.Save(cfg)
}

func init() {
	identityCmd.AddCommand(identityAddCmd, identityRemoveCmd, identityListCmd)
	rootCmd.AddCommand(identityCmd)
}
