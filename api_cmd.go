package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"strings"

	"redisctl/internal/connmgr"
	"redisctl/internal/errs"
	"redisctl/internal/taskwait"
)

// cmdAPI implements `redisctl api <cloud|enterprise> <get|post|put|delete> <path> [--data ...]`,
// the raw escape hatch onto either REST surface for endpoints no typed
// subcommand covers yet.
func cmdAPI(rc *runContext, args []string) error {
	if len(args) < 3 {
		return errs.New(errs.KindValidation, "usage: redisctl api <cloud|enterprise> <get|post|put|delete> <path> [--data @file|-|json] [--wait]")
	}
	platform, method, path := args[0], args[1], args[2]
	rest := args[3:]

	fs := flag.NewFlagSet("api", flag.ExitOnError)
	data := fs.String("data", "", "request body: literal JSON, @file, or - for stdin")
	wait := fs.Bool("wait", false, "for Cloud write calls, wait for the returned task to finish")
	if err := fs.Parse(rest); err != nil {
		return errs.Wrap(errs.KindValidation, "failed to parse flags", err)
	}

	var body any
	if *data != "" {
		raw, err := readDataArg(*data)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return errs.Wrap(errs.KindValidation, "--data is not valid JSON", err)
		}
	}

	ctx := context.Background()

	switch platform {
	case "cloud":
		return apiCloud(ctx, rc, rc.Global.Profile, method, path, body, *wait)
	case "enterprise":
		return apiEnterprise(ctx, rc, rc.Global.Profile, method, path, body)
	default:
		return errs.New(errs.KindValidation, "platform must be \"cloud\" or \"enterprise\"")
	}
}

func readDataArg(data string) ([]byte, error) {
	switch {
	case data == "-":
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errs.Wrap(errs.KindIO, "failed to read request body from stdin", err)
		}
		return raw, nil
	case strings.HasPrefix(data, "@"):
		raw, err := os.ReadFile(strings.TrimPrefix(data, "@"))
		if err != nil {
			return nil, errs.Wrap(errs.KindIO, "failed to read request body file", err)
		}
		return raw, nil
	default:
		return []byte(data), nil
	}
}

func apiCloud(ctx context.Context, rc *runContext, profile, method, path string, body any, wait bool) error {
	client, _, err := rc.Conn.CloudClient(profile)
	if err != nil {
		return err
	}
	resp, err := callRaw(ctx, client, method, path, body)
	if err != nil {
		return err
	}
	if wait {
		if m, ok := resp.(map[string]any); ok {
			if id := taskwait.ExtractID(m); id != "" {
				fetch := func(ctx context.Context, taskID string) (map[string]any, error) {
					raw, err := client.GetRaw(ctx, "/tasks/"+taskID)
					if err != nil {
						return nil, err
					}
					out, _ := raw.(map[string]any)
					return out, nil
				}
				rec, err := taskwait.Wait(ctx, fetch, id, taskwait.Options{})
				if err != nil {
					return err
				}
				return rc.render(rec)
			}
		}
	}
	return rc.render(resp)
}

func apiEnterprise(ctx context.Context, rc *runContext, profile, method, path string, body any) error {
	client, _, err := rc.Conn.EnterpriseClient(profile)
	if err != nil {
		return err
	}
	resp, err := callRaw(ctx, client, method, path, body)
	if err != nil {
		return err
	}
	return rc.render(resp)
}

func callRaw(ctx context.Context, client connmgr.RawHTTPClient, method, path string, body any) (any, error) {
	switch strings.ToLower(method) {
	case "get":
		return client.GetRaw(ctx, path)
	case "post":
		return client.PostRaw(ctx, path, body)
	case "put":
		return client.PutRaw(ctx, path, body)
	case "delete":
		return client.DeleteRaw(ctx, path)
	default:
		return nil, errs.New(errs.KindValidation, "method must be one of get, post, put, delete")
	}
}
