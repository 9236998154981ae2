// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"

	"mxprobe/cli/internal/backend"
	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/identity"
	"mxprobe/cli/internal/logging"
	"mxprobe/cli/internal/monitor"
	"mxprobe/cli/internal/objects"
	"mxprobe/cli/internal/session"
	"mxprobe/cli/internal/terminal"
	"mxprobe/cli/internal/xas"
	"mxprobe/cli/internal/xdg"
)

func (c *client) render(objs []xas.Object) {
	if len(objs) == 0 {
		pterm.Info.WithWriter(c.out).Println("No objects returned")
		return
	}
	fmt.Fprintln(c.out, objects.Render(objs, objects.RenderOptions{Color: c.color}))
}

func (c *client) query(ctx context.Context, typeName string, limit int) error {
	objs, err := c.objects.RetrieveByQuery(ctx, typeName, limit)
	if err != nil {
		return err
	}
	c.render(objs)
	return nil
}

func (c *client) byID(ctx context.Context, guid string) error {
	objs, err := c.objects.RetrieveByID(ctx, guid)
	if err != nil {
		return err
	}
	c.render(objs)
	return nil
}

// sample prints one object of every class that returned any.
func (c *client) sample(ctx context.Context) {
	for _, r := range c.objects.Sample(ctx) {
		if r.Err != nil {
			c.warnSoft(r.Class, r.Err)
			continue
		}
		if len(r.Objects) > 0 {
			fmt.Fprintln(c.out, objects.Render(r.Objects, objects.RenderOptions{Color: c.color}))
		}
	}
}

func (c *client) listClasses() {
	for _, class := range c.objects.ListClasses() {
		fmt.Fprintln(c.out, xas.XPathForType(class))
	}
}

// update commits value to attr of guid. When the object is visible and the
// attribute is read-only for this identity a warning is printed first; the
// commit is sent regardless and the server decides.
func (c *client) update(ctx context.Context, guid, attr, value string) error {
	if current, err := c.objects.RetrieveByID(ctx, guid); err == nil && len(current) == 1 && !objects.Writable(current[0], attr) {
		pterm.Warning.WithWriter(c.out).Printfln("%s is not marked modifiable on %s for %s", attr, guid, c.sess.Identity())
	}
	objs, err := c.objects.Commit(ctx, guid, attr, value)
	if err != nil {
		return err
	}
	c.render(objs)
	return nil
}

// scan retrieves guid as every known identity and returns to the current one.
func (c *client) scan(ctx context.Context, guid string) error {
	known, err := c.store.Known()
	if err != nil {
		return err
	}
	if len(known) == 0 {
		return mxerrors.New(mxerrors.Config, "no known identities for "+c.sess.Host()+"; add one with 'mxprobe identity add'")
	}
	results, err := identity.NewSwitcher(c.auth, c.objects).Scan(ctx, guid, known)
	for _, r := range results {
		pterm.DefaultSection.WithWriter(c.out).WithLevel(2).Printfln("As %s", r.Identity)
		if r.Err != nil {
			pterm.Warning.WithWriter(c.out).Println(logging.PresentError("", r.Err))
			continue
		}
		c.render(r.Objects)
	}
	return err
}

// warnSoft reports a failure of one item in a batch that keeps going.
func (c *client) warnSoft(label string, err error) {
	logging.Logf("batch", "%s: %v", label, err)
	w := pterm.Warning.WithWriter(c.out)
	if se, ok := backend.AsStatusError(err); ok {
		w.Printfln("%s: HTTP %d", label, se.StatusCode)
		return
	}
	w.Printfln("%s: %s", label, logging.Mask(err.Error()))
}

// runFlows invokes every discovered operation and prints what each returned.
func (c *client) runFlows(ctx context.Context) {
	results := c.flows.DiscoverAndRun(ctx)
	if len(results) == 0 {
		pterm.Info.WithWriter(c.out).Println("No microflows exposed to this identity")
		return
	}
	for _, r := range results {
		switch {
		case r.Err != nil:
			c.warnSoft(r.OperationID, r.Err)
			if r.Description != "" {
				fmt.Fprintln(c.out, r.Description)
			}
		case r.Description != "":
			fmt.Fprintln(c.out, r.Description)
		default:
			if len(r.Objects) > 0 {
				fmt.Fprintln(c.out, objects.Render(r.Objects, objects.RenderOptions{Color: c.color}))
			}
		}
	}
}

// monitorFiles downloads new FileDocuments into dest until ctx is cancelled.
func (c *client) monitorFiles(ctx context.Context, dest string, interval time.Duration) error {
	if dest == "" {
		dest = c.target.DownloadDir
	}
	if dest == "" {
		d, err := xdg.DownloadsDir()
		if err != nil {
			wd, _ := os.Getwd()
			d = filepath.Join(wd, "downloads")
		}
		dest = d
	}
	if interval <= 0 {
		interval = c.target.PollInterval
	}

	renderer := monitor.NewRenderer(c.out)
	var spin *statusSpinner
	if terminal.IsTerminal(c.out) {
		spin = startStatusSpinner("Watching " + monitor.DefaultFileClass)
	}
	pterm.Info.WithWriter(c.out).Printfln("Monitoring files into %s (Ctrl+C to stop)", dest)

	mon := monitor.New(c.objects, c.api, monitor.Options{
		Destination: dest,
		Interval:    interval,
		Metrics:     c.metrics,
		Events: func(ev monitor.Event) {
			if ev.Type == monitor.EventPoll {
				spin.SetText(fmt.Sprintf("Watching %s: poll %d, %d known", monitor.DefaultFileClass, ev.Iteration, ev.Known))
			}
			spin.Above(func() { renderer.Render(ev) })
		},
	})
	err := mon.Run(ctx)
	spin.Stop()

	downloaded, failed := renderer.Totals()
	pterm.Info.WithWriter(c.out).Printfln("Stopping monitoring: %d downloaded, %d failed", downloaded, failed)
	return err
}

func (c *client) sourceIP(ctx context.Context) (string, error) {
	return c.api.SourceIP(ctx, c.echoURL)
}

// switchTo logs in as name, or anonymously when name is empty.
func (c *client) switchTo(ctx context.Context, name string) error {
	if name == "" || name == session.AnonymousName {
		return c.auth.Login(ctx, nil)
	}
	id, err := c.store.Lookup(name)
	if err != nil {
		return err
	}
	return c.auth.Login(ctx, &id)
}
