package main

import (
	"os"

	"golang.org/x/term"

	"redisctl/internal/config"
	"redisctl/internal/connmgr"
	"redisctl/internal/output"
)

// runContext carries what every leaf command needs: the parsed global flags,
// the loaded config, and a connection manager built over it.
type runContext struct {
	Global globalFlags
	Config *config.Config
	Conn   *connmgr.Manager
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func newRunContext(g globalFlags) (*runContext, error) {
	cfg, err := loadConfig(g.ConfigFile)
	if err != nil {
		return nil, err
	}
	conn := connmgr.New(cfg).WithLogger(cliEventLogger{verbosity: g.Verbosity})
	return &runContext{Global: g, Config: cfg, Conn: conn}, nil
}

// render writes v to stdout through the output pipeline, resolving Auto
// format against whether stdout is a terminal and applying the -q/--query
// projection.
func (rc *runContext) render(v any) error {
	f := output.Resolve(rc.Global.Output, term.IsTerminal(int(os.Stdout.Fd())))
	return output.Render(os.Stdout, v, f, rc.Global.Query)
}

// quiet reports whether human progress text should be suppressed because the
// selected output format is machine-readable.
func (rc *runContext) quiet() bool {
	f := output.Resolve(rc.Global.Output, term.IsTerminal(int(os.Stdout.Fd())))
	return f == output.JSON || f == output.YAML
}
