package main

import (
	"context"
	"encoding/json"
	"flag"

	"redisctl/internal/connmgr"
	"redisctl/internal/errs"
	"redisctl/internal/output"
	"redisctl/internal/workflow"
)

// runWorkflowCommand implements the `workflow {list, run <name>}` subtree
// shared by `cloud workflow` and `enterprise workflow`, parameterized by
// which profile platform it resolves against.
func runWorkflowCommand(rc *runContext, args []string, profileFor func(*connmgr.Manager, string) (connmgr.RawHTTPClient, string, error)) error {
	if len(args) == 0 {
		return errs.New(errs.KindValidation, "usage: redisctl <cloud|enterprise> workflow <list|run> ...")
	}
	registry := workflow.Default()
	switch args[0] {
	case "list":
		names := registry.Names()
		rows := make([]any, 0, len(names))
		for _, n := range names {
			w, _ := registry.Get(n)
			rows = append(rows, map[string]any{"name": w.Name(), "description": w.Description()})
		}
		return rc.render(rows)
	case "run":
		return runWorkflowRun(rc, args[1:], registry, profileFor)
	default:
		return errs.New(errs.KindValidation, "unknown workflow subcommand: "+args[0])
	}
}

func runWorkflowRun(rc *runContext, args []string, registry *workflow.Registry, profileFor func(*connmgr.Manager, string) (connmgr.RawHTTPClient, string, error)) error {
	if len(args) == 0 {
		return errs.New(errs.KindValidation, "workflow run requires a name")
	}
	name := args[0]
	rest := args[1:]

	fs := flag.NewFlagSet("workflow run", flag.ExitOnError)
	argsJSON := fs.String("args", "{}", "JSON object of workflow arguments")
	if err := fs.Parse(rest); err != nil {
		return errs.Wrap(errs.KindValidation, "failed to parse flags", err)
	}

	w, ok := registry.Get(name)
	if !ok {
		return errs.New(errs.KindValidation, "unknown workflow: "+name)
	}

	var wargs map[string]any
	if err := json.Unmarshal([]byte(*argsJSON), &wargs); err != nil {
		return errs.Wrap(errs.KindValidation, "--args is not a valid JSON object", err)
	}

	// profileFor is only used to validate the profile resolves before the
	// workflow itself opens clients through wctx.Conn, keeping failures early
	// and the error message specific to the platform in play.
	if _, _, err := profileFor(rc.Conn, rc.Global.Profile); err != nil {
		return err
	}

	format := output.Resolve(rc.Global.Output, false)
	wctx := workflow.Context{
		Conn:         rc.Conn,
		ProfileName:  rc.Global.Profile,
		OutputFormat: format,
	}

	result, err := w.Execute(context.Background(), wctx, wargs)
	if err != nil {
		return err
	}
	out := map[string]any{"success": result.Success, "message": result.Message, "outputs": result.Outputs}
	return rc.render(out)
}
