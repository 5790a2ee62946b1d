package workflow

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"redisctl/internal/config"
	"redisctl/internal/entclient"
	"redisctl/internal/errs"
)

// InitCluster bootstraps a fresh Redis Enterprise cluster: checks whether
// it's already initialized, bootstraps it with the given admin credentials,
// waits for the bootstrap action, rebuilds an authenticated client, and
// optionally creates a default database.
type InitCluster struct{}

func (InitCluster) Name() string { return "init-cluster" }

func (InitCluster) Description() string {
	return "Initialize a Redis Enterprise cluster with bootstrap and optional database creation"
}

func (w InitCluster) Execute(ctx context.Context, wctx Context, args map[string]any) (Result, error) {
	clusterName := stringArg(args, "name", "redis-cluster")
	username := stringArg(args, "username", "admin@redis.local")
	password, err := requireStringArg(args, "password")
	if err != nil {
		return Result{}, err
	}
	createDB := boolArg(args, "create_database", true)
	dbName := stringArg(args, "database_name", "default-db")
	dbMemoryGB := intArg(args, "database_memory_gb", 1)

	quiet := wctx.Quiet()
	if !quiet {
		fmt.Println("Initializing Redis Enterprise cluster...")
	}

	baseURL, insecure := enterpriseEndpoint(wctx)
	bootstrapClient, err := entclient.New(entclient.Config{BaseURL: baseURL, InsecureTLS: insecure})
	if err != nil {
		return Result{}, errs.Wrap(errs.KindConfig, "failed to create enterprise client for bootstrap", err)
	}

	needsBootstrap, err := checkNeedsBootstrap(ctx, bootstrapClient)
	if err != nil {
		return Result{}, err
	}
	if !needsBootstrap {
		if !quiet {
			fmt.Println("Cluster is already initialized")
		}
		return Result{
			Success: true,
			Message: "Cluster already initialized",
			Outputs: map[string]any{"cluster_name": clusterName, "already_initialized": true},
		}, nil
	}

	bootstrapPayload := map[string]any{
		"action":      "create_cluster",
		"cluster":     map[string]any{"name": clusterName},
		"credentials": map[string]any{"username": username, "password": password},
		"flash_enabled": false,
	}
	bootstrapResult, err := bootstrapClient.PostRaw(ctx, "/v1/bootstrap/create_cluster", bootstrapPayload)
	if err != nil {
		return Result{}, errs.Wrap(errs.KindAPI, "failed to bootstrap cluster", err)
	}
	if actionID, ok := asMap(bootstrapResult)["action_uid"].(string); ok && actionID != "" {
		if err := waitForAction(ctx, bootstrapClient, actionID, "cluster bootstrap"); err != nil {
			return Result{}, err
		}
	} else {
		time.Sleep(5 * time.Second)
	}
	if !quiet {
		fmt.Println("Bootstrap completed successfully")
	}

	time.Sleep(10 * time.Second)
	if !quiet {
		fmt.Println("Cluster is ready")
	}

	authClient, err := entclient.New(entclient.Config{BaseURL: baseURL, Username: username, Password: password, InsecureTLS: insecure})
	if err != nil {
		return Result{}, errs.Wrap(errs.KindConfig, "failed to create authenticated enterprise client", err)
	}

	outputs := map[string]any{
		"cluster_name":     clusterName,
		"username":         username,
		"database_created": false,
		"database_name":    dbName,
	}

	if createDB {
		if !quiet {
			fmt.Printf("Creating default database %q...\n", dbName)
		}
		dbPayload := map[string]any{
			"name":        dbName,
			"memory_size": dbMemoryGB * 1024 * 1024 * 1024,
			"type":        "redis",
			"replication": false,
		}
		dbResult, err := authClient.PostRaw(ctx, "/v1/bdbs", dbPayload)
		if err != nil {
			if !quiet {
				fmt.Println("Warning: failed to create database:", err)
				fmt.Println("Cluster is initialized but database creation failed.")
			}
		} else {
			dbMap := asMap(dbResult)
			if actionID, ok := dbMap["action_uid"].(string); ok && actionID != "" {
				if err := waitForAction(ctx, authClient, actionID, "database creation"); err != nil && !quiet {
					fmt.Println("Warning:", err)
				}
			}
			outputs["database_created"] = true
			if !quiet {
				fmt.Println("Database created successfully")
			}
		}
	} else if !quiet {
		fmt.Println("Skipping database creation")
	}

	if !quiet {
		fmt.Println()
		fmt.Println("Cluster initialization completed successfully")
		fmt.Println()
		fmt.Printf("Cluster name: %s\n", clusterName)
		fmt.Printf("Admin user: %s\n", username)
	}

	return Result{Success: true, Message: "Cluster initialized successfully", Outputs: outputs}, nil
}

func enterpriseEndpoint(wctx Context) (string, bool) {
	if wctx.Conn != nil && wctx.Conn.Config != nil {
		if resolved, err := wctx.Conn.Config.ResolveProfile(config.PlatformEnterprise, wctx.ProfileName); err == nil {
			if p, ok := wctx.Conn.Config.Profiles[resolved]; ok && p.Enterprise != nil {
				return p.Enterprise.URL, p.Enterprise.InsecureTLS
			}
		}
	}
	url := os.Getenv("REDIS_ENTERPRISE_URL")
	if url == "" {
		url = "https://localhost:9443"
	}
	insecure, _ := strconv.ParseBool(os.Getenv("REDIS_ENTERPRISE_INSECURE"))
	return url, insecure
}

func checkNeedsBootstrap(ctx context.Context, client *entclient.Client) (bool, error) {
	status, err := client.GetRaw(ctx, "/v1/bootstrap")
	if err != nil {
		return true, nil
	}
	state, _ := asMap(status)["state"].(string)
	if state == "" {
		return true, nil
	}
	return state == "unconfigured" || state == "new", nil
}

func waitForAction(ctx context.Context, client *entclient.Client, actionID, operationName string) error {
	const maxAttempts = 120
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		action, err := client.GetRaw(ctx, "/v1/actions/"+actionID)
		if err == nil {
			status, _ := asMap(action)["status"].(string)
			switch status {
			case "completed", "done":
				return nil
			case "failed", "error":
				msg, _ := asMap(action)["error"].(string)
				if msg == "" {
					msg = "unknown error"
				}
				return errs.New(errs.KindAPI, operationName+" failed: "+msg)
			}
		}
		time.Sleep(5 * time.Second)
	}
	return errs.New(errs.KindTimeout, operationName+" did not complete within 10 minutes")
}
