package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"redisctl/internal/errs"
	"redisctl/internal/taskwait"
)

// SubscriptionSetup provisions a Cloud subscription end to end: pick a
// payment method, create the subscription (the API requires a database at
// create time), wait for it to become active, then discover the created
// database's connection details.
type SubscriptionSetup struct{}

func (SubscriptionSetup) Name() string { return "subscription-setup" }

func (SubscriptionSetup) Description() string {
	return "Complete Redis Cloud subscription setup with optional database"
}

func (w SubscriptionSetup) Execute(ctx context.Context, wctx Context, args map[string]any) (Result, error) {
	name := stringArg(args, "name", "redisctl-test")
	provider := strings.ToUpper(stringArg(args, "provider", "AWS"))
	region := stringArg(args, "region", "us-east-1")
	databaseName := stringArg(args, "database_name", "default-db")
	databaseMemoryGB := float64Arg(args, "database_memory_gb", 1.0)
	skipDatabase := boolArg(args, "skip_database", false)
	dryRun := boolArg(args, "dry_run", false)
	wait := boolArg(args, "wait", true)
	waitTimeout := intArg(args, "wait_timeout", 600)
	waitInterval := intArg(args, "wait_interval", 10)
	paymentMethodID, _ := args["payment_method_id"].(string)

	if dryRun {
		return Result{
			Success: true,
			Message: "Dry run completed",
			Outputs: map[string]any{
				"dry_run": true,
				"would_create": map[string]any{
					"subscription": map[string]any{"name": name, "provider": provider, "region": region},
					"database":     databasePayloadPreview(skipDatabase, databaseName, databaseMemoryGB),
				},
			},
		}, nil
	}

	client, _, err := wctx.Conn.CloudClient(wctx.ProfileName)
	if err != nil {
		return Result{}, errs.Wrap(errs.KindConfig, "failed to create cloud client", err)
	}

	outputs := map[string]any{
		"subscription_name": name,
		"provider":           provider,
		"region":             region,
		"status":             "pending",
	}

	if paymentMethodID == "" {
		if !wctx.Quiet() {
			fmt.Println("Looking up payment method...")
		}
		resp, err := client.GetRaw(ctx, "/payment-methods")
		if err != nil {
			return Result{}, errs.Wrap(errs.KindAPI, "failed to get payment methods", err)
		}
		methods := asSlice(asMap(resp)["paymentMethods"])
		if len(methods) == 0 {
			return Result{}, errs.New(errs.KindAPI, "no payment methods found; add one to your account first")
		}
		paymentMethodID = firstCreditCardOrFirst(methods)
		if paymentMethodID == "" {
			return Result{}, errs.New(errs.KindAPI, "no suitable payment method found")
		}
	}

	if !wctx.Quiet() {
		fmt.Printf("Creating subscription %q...\n", name)
	}
	payload := subscriptionPayload(name, provider, region, paymentMethodID, skipDatabase, databaseName, databaseMemoryGB)
	created, err := client.PostRaw(ctx, "/subscriptions", payload)
	if err != nil {
		return Result{}, errs.Wrap(errs.KindAPI, "failed to create subscription", err)
	}
	taskID := taskwait.ExtractID(asMap(created))
	if taskID == "" {
		return Result{}, errs.New(errs.KindAPI, "no task id in subscription create response")
	}

	if !wait {
		outputs["task_id"] = taskID
		return Result{Success: true, Message: "Subscription creation started; task " + taskID, Outputs: outputs}, nil
	}

	fetch := func(ctx context.Context, id string) (map[string]any, error) {
		v, err := client.GetRaw(ctx, "/tasks/"+id)
		if err != nil {
			return nil, err
		}
		return asMap(v), nil
	}
	rec, err := taskwait.Wait(ctx, fetch, taskID, taskwait.Options{
		Timeout:  time.Duration(waitTimeout) * time.Second,
		Interval: time.Duration(waitInterval) * time.Second,
	})
	if err != nil {
		return Result{}, err
	}
	if rec.ResourceID == "" {
		return Result{}, errs.New(errs.KindAPI, "no resource id in completed subscription task")
	}
	subscriptionID := rec.ResourceID
	outputs["subscription_id"] = subscriptionID
	outputs["status"] = "active"

	if !wctx.Quiet() {
		fmt.Printf("Subscription created successfully (ID: %s)\n", subscriptionID)
	}

	if !skipDatabase {
		time.Sleep(5 * time.Second)
		dbList, err := client.GetRaw(ctx, "/subscriptions/"+subscriptionID+"/databases")
		if err == nil {
			if items := asSlice(dbList); len(items) > 0 {
				first := asMap(items[0])
				if id, ok := first["databaseId"]; ok {
					outputs["database_id"] = id
					outputs["database_name"] = databaseName
					if endpoint, ok := first["publicEndpoint"].(string); ok {
						outputs["connection_string"] = "redis://" + endpoint
					}
					if !wctx.Quiet() {
						fmt.Printf("Database created successfully (ID: %v)\n", id)
					}
				}
			}
		}
	}

	message := fmt.Sprintf("Subscription setup completed successfully\n\nSubscription: %s (ID: %s)\nProvider: %s / %s\n",
		name, subscriptionID, provider, region)
	if dbName, ok := outputs["database_name"]; ok {
		message += fmt.Sprintf("Database: %v (ID: %v)\n", dbName, outputs["database_id"])
	}
	if conn, ok := outputs["connection_string"]; ok {
		message += fmt.Sprintf("\nConnection string: %v\n", conn)
	}

	return Result{Success: true, Message: message, Outputs: outputs}, nil
}

func databasePayloadPreview(skip bool, name string, memoryGB float64) any {
	if skip {
		return nil
	}
	return map[string]any{"name": name, "memory_gb": memoryGB}
}

func firstCreditCardOrFirst(methods []any) string {
	var fallback string
	for _, m := range methods {
		entry := asMap(m)
		id := fmt.Sprintf("%v", entry["id"])
		if fallback == "" {
			fallback = id
		}
		if entry["type"] == "credit-card" {
			return id
		}
	}
	return fallback
}

func subscriptionPayload(name, provider, region, paymentMethodID string, skipDatabase bool, databaseName string, memoryGB float64) map[string]any {
	databases := []map[string]any{{"name": databaseName, "memoryLimitInGb": memoryGB, "protocol": "redis"}}
	if skipDatabase {
		databases = []map[string]any{{"name": "minimal-db", "memoryLimitInGb": 0.1, "protocol": "redis"}}
	}
	return map[string]any{
		"name":            name,
		"paymentMethodId": paymentMethodID,
		"cloudProviders": []map[string]any{{
			"provider": provider,
			"regions": []map[string]any{{
				"region":     region,
				"networking": map[string]any{"deploymentCIDR": "10.0.0.0/24"},
			}},
		}},
		"databases": databases,
	}
}
