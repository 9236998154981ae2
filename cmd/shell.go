// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"mxprobe/cli/internal/backend"
	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/logging"
)

type shellOp int

const (
	opNone shellOp = iota
	opUnknown
	opHelp
	opQuery
	opByID
	opSample
	opList
	opSourceIP
	opMonitor
	opFlows
	opLogin
	opUpdate
	opScan
	opExit
)

// shellCommand is one parsed shell line.
type shellCommand struct {
	op       shellOp
	typeName string
	limit    int
	guid     string
	name     string
	attr     string
	value    string
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseShellLine maps a line to a command. Lines that look like a command
// but are malformed (an update without a numeric guid, for example) parse
// as opUnknown.
func parseShellLine(line string) shellCommand {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	switch {
	case line == "":
		return shellCommand{op: opNone}
	case strings.HasPrefix(line, "//"):
		cmd := shellCommand{op: opQuery, typeName: strings.TrimPrefix(fields[0], "//")}
		if len(fields) > 1 && isDigits(fields[1]) {
			cmd.limit, _ = strconv.Atoi(fields[1])
		}
		if cmd.typeName == "" {
			return shellCommand{op: opUnknown}
		}
		return cmd
	case isDigits(line):
		return shellCommand{op: opByID, guid: line}
	case line == "?":
		return shellCommand{op: opSample}
	case line == "list":
		return shellCommand{op: opList}
	case line == "help":
		return shellCommand{op: opHelp}
	case line == "show_source_ip":
		return shellCommand{op: opSourceIP}
	case line == "monitor_files":
		return shellCommand{op: opMonitor}
	case line == "flows":
		return shellCommand{op: opFlows}
	case line == "exit" || line == "quit":
		return shellCommand{op: opExit}
	case fields[0] == "login":
		cmd := shellCommand{op: opLogin}
		if len(fields) > 1 {
			cmd.name = fields[1]
		}
		return cmd
	case fields[0] == "update":
		if len(fields) < 4 || !isDigits(fields[1]) {
			return shellCommand{op: opUnknown}
		}
		// Keep the value's inner spacing: everything after the attribute name.
		rest := strings.TrimSpace(strings.TrimPrefix(line, "update"))
		rest = strings.TrimSpace(strings.TrimPrefix(rest, fields[1]))
		rest = strings.TrimSpace(strings.TrimPrefix(rest, fields[2]))
		return shellCommand{op: opUpdate, guid: fields[1], attr: fields[2], value: rest}
	case strings.HasPrefix(line, "@") && isDigits(line[1:]):
		return shellCommand{op: opScan, guid: line[1:]}
	}
	return shellCommand{op: opUnknown}
}

const shellHelp = `Commands:
  help                        print this menu
  //Type [limit]              retrieve up to limit (default 10) objects of Type
  <guid>                      retrieve one object by its numeric guid
  ?                           retrieve one object of every class
  list                        list every class
  update <guid> <attr> <val>  set an attribute of an object
  @<guid>                     retrieve an object as every known identity
  login [name]                log in as name, or anonymously
  flows                       invoke every exposed microflow
  show_source_ip              show the source IP the target sees
  monitor_files               download new FileDocuments until Ctrl+C
  exit                        leave the shell

Green attribute names are read-only, red ones are modifiable.
`

// exec runs one command. Errors of single commands are printed and the
// shell keeps going; only opExit stops it.
func (c *client) exec(ctx context.Context, cmd shellCommand) (stop bool) {
	var err error
	switch cmd.op {
	case opNone:
	case opExit:
		return true
	case opHelp:
		fmt.Fprint(c.out, shellHelp)
	case opQuery:
		err = c.query(ctx, cmd.typeName, cmd.limit)
	case opByID:
		err = c.byID(ctx, cmd.guid)
	case opSample:
		c.sample(ctx)
	case opList:
		c.listClasses()
	case opSourceIP:
		var ip string
		if ip, err = c.sourceIP(ctx); err == nil {
			fmt.Fprintln(c.out, ip)
		}
	case opMonitor:
		mctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT)
		err = c.monitorFiles(mctx, "", 0)
		cancel()
	case opFlows:
		c.runFlows(ctx)
	case opLogin:
		err = c.switchTo(ctx, cmd.name)
	case opUpdate:
		err = c.update(ctx, cmd.guid, cmd.attr, cmd.value)
	case opScan:
		err = c.scan(ctx, cmd.guid)
	default:
		pterm.Warning.WithWriter(c.out).Println("Unknown command; type 'help'")
	}
	if err != nil {
		c.report(err)
	}
	return false
}

func (c *client) report(err error) {
	if se, ok := backend.AsStatusError(err); ok {
		fmt.Fprint(c.out, logging.FormatActionError(se.Action, se.StatusCode, se.Body))
		return
	}
	p := pterm.Error.WithWriter(c.out)
	if mxerrors.Is(err, mxerrors.Fatal) {
		p.Println(logging.PresentError("session lost, use 'login' to start over", err))
		return
	}
	p.Println(logging.PresentError("", err))
}

// runShell reads lines from in until EOF or exit.
func (c *client) runShell(ctx context.Context, in io.Reader) {
	fmt.Fprint(c.out, shellHelp)
	fmt.Fprintf(c.out, "\nWelcome to the XAS client for %s\n", c.sess.BaseURL())
	if ip, err := c.sourceIP(ctx); err == nil {
		fmt.Fprintf(c.out, "You are using source IP: %s\n", ip)
	} else {
		logging.Logf("shell", "source IP lookup failed: %v", err)
	}
	fmt.Fprintln(c.out)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		if ctx.Err() != nil {
			break
		}
		c.greet()
		fmt.Fprint(c.out, pterm.FgBlue.Sprintf("[XAS %s@%s]: ", c.sess.Identity(), c.sess.BaseURL()))
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			break
		}
		if c.exec(ctx, parseShellLine(scanner.Text())) {
			break
		}
	}
	fmt.Fprintln(c.out, "kthxbye")
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session using the classic command grammar",
	Long: `The shell command keeps one session alive and reads commands line by line.
Type 'help' inside the shell for the grammar.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		c.runShell(cmd.Context(), cmd.InOrStdin())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
