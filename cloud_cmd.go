package main

import (
	"context"

	"redisctl/internal/connmgr"
	"redisctl/internal/errs"
	"redisctl/internal/taskwait"
)

func cloudProfileFor(m *connmgr.Manager, name string) (connmgr.RawHTTPClient, string, error) {
	c, resolved, err := m.CloudClient(name)
	if err != nil {
		return nil, "", err
	}
	return c, resolved, nil
}

func cmdCloud(rc *runContext, args []string) error {
	if len(args) == 0 {
		printUsage("usage: redisctl cloud <account|subscription|database|user|acl|provider-account|task|connectivity|fixed-database|fixed-subscription|workflow> ...")
		return nil
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "account":
		return cloudSimpleGet(rc, rest, "/account", "cloud account requires no further arguments")
	case "subscription":
		return cloudResourceCommand(rc, rest, "/subscriptions")
	case "database":
		return cloudDatabaseCommand(rc, rest)
	case "user":
		return cloudResourceCommand(rc, rest, "/users")
	case "acl":
		return cloudResourceCommand(rc, rest, "/acl")
	case "provider-account":
		return cloudResourceCommand(rc, rest, "/provider-accounts")
	case "connectivity":
		return cloudResourceCommand(rc, rest, "/subscriptions/connectivity")
	case "fixed-database":
		return cloudResourceCommand(rc, rest, "/fixed/subscriptions/databases")
	case "fixed-subscription":
		return cloudResourceCommand(rc, rest, "/fixed/subscriptions")
	case "task":
		return cloudTaskCommand(rc, rest)
	case "workflow":
		return runWorkflowCommand(rc, rest, cloudProfileFor)
	default:
		return errs.New(errs.KindValidation, "unknown cloud subcommand: "+sub)
	}
}

func cloudSimpleGet(rc *runContext, args []string, path, usageIfArgs string) error {
	client, _, err := rc.Conn.CloudClient(rc.Global.Profile)
	if err != nil {
		return err
	}
	resp, err := client.GetRaw(context.Background(), path)
	if err != nil {
		return err
	}
	return rc.render(resp)
}

// cloudResourceCommand implements the common `<list|get <id>>` shape shared
// by the simpler Cloud resource families that have no typed operations of
// their own yet, dispatching straight through the raw client.
func cloudResourceCommand(rc *runContext, args []string, basePath string) error {
	if len(args) == 0 {
		return errs.New(errs.KindValidation, "usage: redisctl cloud ... <list|get <id>>")
	}
	client, _, err := rc.Conn.CloudClient(rc.Global.Profile)
	if err != nil {
		return err
	}
	ctx := context.Background()
	switch args[0] {
	case "list":
		resp, err := client.GetRaw(ctx, basePath)
		if err != nil {
			return err
		}
		return rc.render(resp)
	case "get":
		if len(args) < 2 {
			return errs.New(errs.KindValidation, "get requires an id")
		}
		resp, err := client.GetRaw(ctx, basePath+"/"+args[1])
		if err != nil {
			return err
		}
		return rc.render(resp)
	default:
		return errs.New(errs.KindValidation, "unknown subcommand: "+args[0])
	}
}

func cloudDatabaseCommand(rc *runContext, args []string) error {
	if len(args) == 0 {
		return errs.New(errs.KindValidation, "usage: redisctl cloud database <list|get> --subscription-id <id> [--database-id <id>]")
	}
	client, _, err := rc.Conn.CloudClient(rc.Global.Profile)
	if err != nil {
		return err
	}
	ctx := context.Background()
	switch args[0] {
	case "list":
		subID, err := requireFlagValue(args[1:], "--subscription-id")
		if err != nil {
			return err
		}
		resp, err := client.GetRaw(ctx, "/subscriptions/"+subID+"/databases")
		if err != nil {
			return err
		}
		return rc.render(resp)
	case "get":
		subID, err := requireFlagValue(args[1:], "--subscription-id")
		if err != nil {
			return err
		}
		dbID, err := requireFlagValue(args[1:], "--database-id")
		if err != nil {
			return err
		}
		resp, err := client.GetRaw(ctx, "/subscriptions/"+subID+"/databases/"+dbID)
		if err != nil {
			return err
		}
		return rc.render(resp)
	default:
		return errs.New(errs.KindValidation, "unknown subcommand: "+args[0])
	}
}

func cloudTaskCommand(rc *runContext, args []string) error {
	if len(args) < 2 {
		return errs.New(errs.KindValidation, "usage: redisctl cloud task <get|wait> <task-id>")
	}
	client, _, err := rc.Conn.CloudClient(rc.Global.Profile)
	if err != nil {
		return err
	}
	ctx := context.Background()
	taskID := args[1]
	fetch := func(ctx context.Context, id string) (map[string]any, error) {
		raw, err := client.GetRaw(ctx, "/tasks/"+id)
		if err != nil {
			return nil, err
		}
		out, _ := raw.(map[string]any)
		return out, nil
	}
	switch args[0] {
	case "get":
		rec, err := fetch(ctx, taskID)
		if err != nil {
			return err
		}
		return rc.render(rec)
	case "wait":
		rec, err := taskwait.Wait(ctx, fetch, taskID, taskwait.Options{})
		if err != nil {
			return err
		}
		return rc.render(rec)
	default:
		return errs.New(errs.KindValidation, "unknown subcommand: "+args[0])
	}
}

func requireFlagValue(args []string, flag string) (string, error) {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1], nil
		}
	}
	return "", errs.New(errs.KindValidation, flag+" is required")
}
