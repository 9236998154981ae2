// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"mxprobe/cli/internal/auth"
	"mxprobe/cli/internal/backend"
	"mxprobe/cli/internal/config"
	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/identity"
	"mxprobe/cli/internal/keychain"
	"mxprobe/cli/internal/logging"
	"mxprobe/cli/internal/metrics"
	"mxprobe/cli/internal/microflow"
	"mxprobe/cli/internal/objects"
	"mxprobe/cli/internal/session"
	"mxprobe/cli/internal/terminal"
)

// client is one live session against a target plus everything the
// commands need to drive it.
type client struct {
	target  config.Target
	sess    *session.Session
	api     *backend.HTTP
	auth    *auth.Service
	objects *objects.Accessor
	flows   *microflow.Invoker
	store   *identity.Store
	keys    *keychain.Manager
	metrics *metrics.Metrics
	out     io.Writer
	color   bool
	// echoURL answers with the caller's public IP.
	echoURL string
}

// parseHeaderFlags turns repeated "Name: value" flags into a map.
func parseHeaderFlags(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, mxerrors.New(mxerrors.Config, "header must look like 'Name: value', got "+logging.Mask(v))
		}
		out[name] = strings.TrimSpace(value)
	}
	return out, nil
}

// resolveTarget applies the flag overrides in opts over the selected profile.
func resolveTarget(cfg config.Config, opts globalOptions) (config.Target, error) {
	profile := opts.profile
	if profile == "" {
		profile = config.DefaultProfile
	}
	t, _ := cfg.Target(profile)
	if opts.url != "" {
		t.URL = opts.url
	}
	if opts.proxy != "" {
		t.Proxy = opts.proxy
	}
	t.URL = session.NormalizeBaseURL(t.URL)
	if t.URL == "" {
		return t, mxerrors.New(mxerrors.Config, "no target: pass --url or run 'mxprobe profile set --url ...' for profile "+profile)
	}

	flagHeaders, err := parseHeaderFlags(opts.headers)
	if err != nil {
		return t, err
	}
	if len(flagHeaders) > 0 {
		merged := make(map[string]string, len(t.Headers)+len(flagHeaders))
		for k, v := range t.Headers {
			merged[k] = v
		}
		for k, v := range flagHeaders {
			merged[k] = v
		}
		t.Headers = merged
	}
	return t, nil
}

// loadTarget reads the config file and resolves the target for the global flags.
func loadTarget() (config.Config, config.Target, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, config.Target{}, err
	}
	t, err := resolveTarget(cfg, globals)
	return cfg, t, err
}

// openKeychain returns the keychain manager, or nil when no backend is
// available on this host.
func openKeychain() *keychain.Manager {
	km, err := keychain.GetManager()
	if err != nil {
		logging.Logf("keychain", "unavailable: %v", err)
		return nil
	}
	return km
}

// newStore builds the known-identity store for host.
func newStore(host string, t config.Target, keys *keychain.Manager) (*identity.Store, error) {
	var secrets identity.SecretStore
	if keys != nil {
		secrets = keys
	}
	pairs, err := identity.LoadFile(os.Getenv(identity.FileEnv))
	if err != nil {
		return nil, err
	}
	return identity.NewStore(host, t.Identities, secrets).WithFile(pairs), nil
}

// newClient creates an unauthenticated client for t. keys may be nil.
func newClient(t config.Target, keys *keychain.Manager, out io.Writer) (*client, error) {
	sess, err := session.New(t.URL, session.Options{
		Proxy:   t.Proxy,
		Timeout: t.Timeout,
		Cookies: t.Cookies,
	})
	if err != nil {
		return nil, err
	}
	m := metrics.New()
	api, err := backend.New(sess, t.Endpoints, backend.WithMetrics(m))
	if err != nil {
		return nil, mxerrors.Wrap(mxerrors.Config, "build transport", err)
	}
	store, err := newStore(sess.Host(), t, keys)
	if err != nil {
		return nil, err
	}
	return &client{
		target:  t,
		sess:    sess,
		api:     api,
		auth:    auth.NewService(api, sess),
		objects: objects.NewAccessor(api, sess),
		flows:   microflow.NewInvoker(api, sess),
		store:   store,
		keys:    keys,
		metrics: m,
		out:     out,
		color:   terminal.IsTerminal(out),
		echoURL: backend.DefaultSourceIPURL,
	}, nil
}

// bootstrap establishes the first identity of the session: the --as
// identity when given, otherwise captured headers from the flags, the
// profile or the keychain, otherwise anonymous.
func (c *client) bootstrap(ctx context.Context, as string) error {
	if as != "" {
		id, err := c.store.Lookup(as)
		if err != nil {
			return err
		}
		return c.auth.Login(ctx, &id)
	}
	if len(c.target.Headers) > 0 {
		return c.auth.SetHeaders(ctx, c.target.Headers)
	}
	if c.keys != nil {
		stored, err := auth.LoadHeaders(c.keys, c.sess.Host())
		if err != nil {
			logging.Logf("auth", "stored headers unreadable: %v", err)
		} else if len(stored) > 0 {
			return c.auth.SetHeaders(ctx, stored)
		}
	}
	return c.auth.Login(ctx, nil)
}

// openClient resolves the target from config and flags, starts the metrics
// listener when requested, and bootstraps the session.
func openClient(cmd *cobra.Command) (*client, error) {
	_, t, err := loadTarget()
	if err != nil {
		return nil, err
	}
	c, err := newClient(t, openKeychain(), cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}
	if addr := globals.metricsListen; addr != "" {
		go func() {
			if err := c.metrics.Serve(cmd.Context(), addr); err != nil {
				pterm.Warning.Printfln("metrics listener on %s: %v", addr, err)
			}
		}()
	}
	if err := c.bootstrap(cmd.Context(), globals.as); err != nil {
		return nil, err
	}
	return c, nil
}

// greet prints who the session is logged in as.
func (c *client) greet() {
	st := c.auth.Current()
	if !st.LoggedIn() {
		pterm.Warning.WithWriter(c.out).Println("Not logged in")
		return
	}
	pterm.Info.WithWriter(c.out).Printfln("You are logged in as %s", st.DisplayName)
	if st.UserGUID != "" {
		pterm.Info.WithWriter(c.out).Printfln("Your GUID: %s", st.UserGUID)
	}
}
