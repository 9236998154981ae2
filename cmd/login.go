// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"mxprobe/cli/internal/auth"
	"mxprobe/cli/internal/config"
	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/session"
	"mxprobe/cli/internal/terminal"
)

var (
	loginSave        bool
	loginHeadersFile string
)

// loginCmd logs in as an identity, anonymously, or from captured browser headers.
var loginCmd = &cobra.Command{
	Use:   "login [identity]",
	Short: "Log in as an identity, anonymously, or from captured headers",
	Long: `The login command establishes a session on the target and prints who it is
logged in as.

With an identity name, the secret is taken from the keychain or the identities
file; when neither has it and stdin is a terminal, it is prompted for. --save
stores a prompted secret in the keychain and records the name on the profile.

Without a name, captured request headers (-H or --headers-file) bootstrap the
session without a login action; --save keeps them in the keychain so later
commands reuse the browser session. With neither, the session is anonymous.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, t, err := loadTarget()
		if err != nil {
			return err
		}
		if loginHeadersFile != "" {
			captured, err := readCapturedHeaders(cmd.InOrStdin(), loginHeadersFile)
			if err != nil {
				return err
			}
			if t.Headers == nil {
				t.Headers = map[string]string{}
			}
			for k, v := range captured {
				t.Headers[k] = v
			}
		}

		c, err := newClient(t, openKeychain(), cmd.OutOrStdout())
		if err != nil {
			return err
		}

		if len(args) == 0 {
			if len(t.Headers) > 0 {
				if err := c.auth.SetHeaders(ctx, t.Headers); err != nil {
					return err
				}
				if loginSave {
					if c.keys == nil {
						return mxerrors.New(mxerrors.Config, "no keychain available to save headers")
					}
					if err := auth.SaveHeaders(c.keys, c.sess.Host(), t.Headers); err != nil {
						return err
					}
					pterm.Success.WithWriter(c.out).Printfln("Saved %d captured headers for %s", len(t.Headers), c.sess.Host())
				}
			} else if err := c.auth.Login(ctx, nil); err != nil {
				return err
			}
			c.greet()
			return nil
		}

		name := args[0]
		id, err := c.store.Lookup(name)
		prompted := false
		if err != nil {
			if mxerrors.KindOf(err) != mxerrors.Config || !terminal.IsInteractive() {
				return err
			}
			secret, perr := terminal.ReadSecret("Secret for " + name + ": ")
			if perr != nil {
				return mxerrors.Wrap(mxerrors.Config, "read secret", perr)
			}
			id = session.Identity{Name: name, Secret: secret}
			prompted = true
		}
		if err := c.auth.Login(ctx, &id); err != nil {
			return err
		}
		if loginSave && prompted {
			if err := rememberIdentity(cfg, c, id); err != nil {
				return err
			}
			pterm.Success.WithWriter(c.out).Printfln("Saved identity %s for %s", name, c.sess.Host())
		}
		c.greet()
		return nil
	},
}

func init() {
	loginCmd.Flags().BoolVar(&loginSave, "save", false, "Keep the prompted secret or the captured headers in the keychain")
	loginCmd.Flags().StringVar(&loginHeadersFile, "headers-file", "", "File of headers copied from browser DevTools ('-' for stdin)")
	rootCmd.AddCommand(loginCmd)
}

func readCapturedHeaders(stdin io.Reader, path string) (map[string]string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, mxerrors.Wrap(mxerrors.Config, "read headers", err)
	}
	return auth.ParseCapturedHeaders(string(data)), nil
}

// rememberIdentity stores the secret in the keychain and the name on the profile.
func rememberIdentity(cfg config.Config, c *client, id session.Identity) error {
	if err := c.store.Add(id.Name, id.Secret); err != nil {
		return err
	}
	t := c.target
	t.URL = c.sess.BaseURL()
	t.AddIdentity(id.Name)
	return saveProfileTarget(cfg, t)
}

func profileName() string {
	if globals.profile == "" {
		return config.DefaultProfile
	}
	return globals.profile
}
