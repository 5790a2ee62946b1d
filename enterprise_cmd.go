package main

import (
	"context"
	"flag"
	"time"

	"redisctl/internal/connmgr"
	"redisctl/internal/errs"
	"redisctl/internal/supportbundle"
)

func enterpriseProfileFor(m *connmgr.Manager, name string) (connmgr.RawHTTPClient, string, error) {
	c, resolved, err := m.EnterpriseClient(name)
	if err != nil {
		return nil, "", err
	}
	return c, resolved, nil
}

func cmdEnterprise(rc *runContext, args []string) error {
	if len(args) == 0 {
		printUsage("usage: redisctl enterprise <cluster|database|node|user|role|acl|ldap|crdb|stats|support-package|workflow> ...")
		return nil
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "cluster":
		return entResourceCommand(rc, rest, "/v1/cluster")
	case "database":
		return entResourceCommand(rc, rest, "/v1/bdbs")
	case "node":
		return entResourceCommand(rc, rest, "/v1/nodes")
	case "user":
		return entResourceCommand(rc, rest, "/v1/users")
	case "role":
		return entResourceCommand(rc, rest, "/v1/roles")
	case "acl":
		return entResourceCommand(rc, rest, "/v1/redis_acls")
	case "ldap":
		return entResourceCommand(rc, rest, "/v1/ldap_mappings")
	case "crdb":
		return entResourceCommand(rc, rest, "/v1/crdbs")
	case "stats":
		return entStatsCommand(rc, rest)
	case "support-package":
		return entSupportPackageCommand(rc, rest)
	case "workflow":
		return runWorkflowCommand(rc, rest, enterpriseProfileFor)
	default:
		return errs.New(errs.KindValidation, "unknown enterprise subcommand: "+sub)
	}
}

// entResourceCommand implements the common `<list|get <id>>` shape over
// basePath; for singleton endpoints like /v1/cluster, "get" with no id
// is equivalent to "list".
func entResourceCommand(rc *runContext, args []string, basePath string) error {
	client, _, err := rc.Conn.EnterpriseClient(rc.Global.Profile)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if len(args) == 0 || args[0] == "list" {
		resp, err := client.GetRaw(ctx, basePath)
		if err != nil {
			return err
		}
		return rc.render(resp)
	}
	switch args[0] {
	case "get":
		path := basePath
		if len(args) > 1 {
			path = basePath + "/" + args[1]
		}
		resp, err := client.GetRaw(ctx, path)
		if err != nil {
			return err
		}
		return rc.render(resp)
	default:
		return errs.New(errs.KindValidation, "unknown subcommand: "+args[0])
	}
}

func entStatsCommand(rc *runContext, args []string) error {
	if len(args) == 0 {
		return errs.New(errs.KindValidation, "usage: redisctl enterprise stats <cluster|node|database> [id]")
	}
	client, _, err := rc.Conn.EnterpriseClient(rc.Global.Profile)
	if err != nil {
		return err
	}
	ctx := context.Background()
	var path string
	switch args[0] {
	case "cluster":
		path = "/v1/cluster/stats"
	case "node":
		if len(args) < 2 {
			return errs.New(errs.KindValidation, "stats node requires a node id")
		}
		path = "/v1/nodes/" + args[1] + "/stats"
	case "database":
		if len(args) < 2 {
			return errs.New(errs.KindValidation, "stats database requires a database id")
		}
		path = "/v1/bdbs/" + args[1] + "/stats"
	default:
		return errs.New(errs.KindValidation, "unknown stats scope: "+args[0])
	}
	resp, err := client.GetRaw(ctx, path)
	if err != nil {
		return err
	}
	return rc.render(resp)
}

func entSupportPackageCommand(rc *runContext, args []string) error {
	if len(args) == 0 {
		return errs.New(errs.KindValidation, "usage: redisctl enterprise support-package <cluster|all-nodes|node|database> [id] --out <path>")
	}
	scope := supportbundle.Scope(args[0])
	rest := args[1:]

	var id string
	if len(rest) > 0 && rest[0] != "" && rest[0][0] != '-' {
		id = rest[0]
		rest = rest[1:]
	}

	fs := flag.NewFlagSet("support-package", flag.ExitOnError)
	out := fs.String("out", "", "destination file path")
	force := fs.Bool("force", false, "overwrite an existing file")
	optimize := fs.Bool("optimize", false, "strip/truncate logs before writing")
	if err := fs.Parse(rest); err != nil {
		return errs.Wrap(errs.KindValidation, "failed to parse flags", err)
	}

	apiPath, err := supportbundle.Path(scope, id)
	if err != nil {
		return err
	}

	dest := *out
	if dest == "" {
		dest = supportbundle.DefaultFilename(scope, time.Now().UTC().Format("20060102T150405Z"))
	}

	client, _, err := rc.Conn.EnterpriseClient(rc.Global.Profile)
	if err != nil {
		return err
	}

	var opts *supportbundle.OptimizationOptions
	if *optimize {
		d := supportbundle.DefaultOptimizationOptions()
		opts = &d
	}

	result, err := supportbundle.Download(context.Background(), client.GetBytes, apiPath, dest, *force, opts)
	if err != nil {
		return err
	}
	successf("wrote %s (%d bytes)", result.Path, result.Size)
	return nil
}
