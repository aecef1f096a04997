// Copyright 2016 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command pibridge runs call scripts against the registered extension
// modules, or offers an interactive prompt when no script is given.
//
//	pibridge [--config file] [--trace] [--no-color] [script ...]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"go.uber.org/zap"

	_ "github.com/pibridge/pibridge/ext/funcmapper"
	"github.com/pibridge/pibridge/runtime"
	"github.com/pibridge/pibridge/shell"
)

const (
	promptMain = ">>> "
	banner     = "pibridge interactive prompt. Type :quit to exit."
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	trace      bool
	noColor    bool
	scripts    []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("pibridge", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "yaml file with runtime settings")
	fs.BoolVar(&opts.trace, "trace", false, "log every call handled by the bridge")
	fs.BoolVar(&opts.noColor, "no-color", false, "never colour error output")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.scripts = fs.Args()
	return opts, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	cfg := pibridge.DefaultConfig()
	if opts.configPath != "" {
		if cfg, err = pibridge.LoadConfig(opts.configPath); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
	}
	logger := zap.NewNop()
	if opts.trace {
		cfg.TraceCalls = true
		if logger, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		defer logger.Sync() //nolint:errcheck
	}
	p := &printer{out: stderr, color: !opts.noColor && isTerminal(stderr)}
	in := shell.New(pibridge.NewRootFrameWith(cfg, logger), stdout)
	if len(opts.scripts) > 0 {
		for _, path := range opts.scripts {
			if err := runFile(in, path); err != nil {
				p.error(err)
				return 1
			}
		}
		return 0
	}
	if f, ok := stdin.(*os.File); ok && isTerminal(f) {
		in.Echo = true
		return repl(in, p, stdout)
	}
	src, err := io.ReadAll(stdin)
	if err != nil {
		p.error(err)
		return 1
	}
	if err := in.Exec(string(src)); err != nil {
		p.error(err)
		return 1
	}
	return 0
}

func runFile(in *shell.Interp, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := in.Exec(string(src)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func repl(in *shell.Interp, p *printer, stdout io.Writer) int {
	fmt.Fprintln(stdout, banner)
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	for {
		line, err := ln.Prompt(promptMain)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(stdout)
			return 0
		}
		if err != nil {
			p.error(err)
			return 1
		}
		code := strings.TrimSpace(line)
		switch code {
		case "":
			continue
		case ":quit":
			return 0
		case ":names":
			fmt.Fprintln(stdout, strings.Join(in.Names(), " "))
			ln.AppendHistory(code)
			continue
		}
		if err := in.Exec(code); err != nil {
			p.error(err)
		}
		ln.AppendHistory(code)
	}
}

// isTerminal reports whether w is a terminal.
func isTerminal(w interface{}) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type printer struct {
	out   io.Writer
	color bool
}

func (p *printer) error(err error) {
	msg := err.Error()
	if p.color {
		msg = "\x1b[31m" + msg + "\x1b[0m"
	}
	fmt.Fprintln(p.out, msg)
}
