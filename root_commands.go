package main

import (
	"sync"
	"sync/atomic"
)

// rootCommandHandler is a dispatched top-level command. Errors flow back to
// run(), which logs, reports, and maps them to an exit code — handlers never
// call os.Exit themselves.
type rootCommandHandler func(rc *runContext, args []string) error

var (
	rootCommandsMu      sync.Mutex
	rootCommandHandlers map[string]rootCommandHandler
	rootCommandsPtr     atomic.Pointer[map[string]rootCommandHandler]
)

func buildRootCommandHandlers() map[string]rootCommandHandler {
	handlers := make(map[string]rootCommandHandler, 16)
	register := func(handler rootCommandHandler, names ...string) {
		for _, name := range names {
			handlers[name] = handler
		}
	}

	register(cmdProfile, "profile")
	register(cmdAPI, "api")
	register(newLazyRootHandler(loadCloudRootHandler), "cloud")
	register(newLazyRootHandler(loadEnterpriseRootHandler), "enterprise")
	register(cmdFilesKey, "files-key")

	return handlers
}

func loadCloudRootHandler() rootCommandHandler { return cmdCloud }

func loadEnterpriseRootHandler() rootCommandHandler { return cmdEnterprise }

func getRootCommandHandlers() map[string]rootCommandHandler {
	if ptr := rootCommandsPtr.Load(); ptr != nil {
		return *ptr
	}
	rootCommandsMu.Lock()
	defer rootCommandsMu.Unlock()
	if ptr := rootCommandsPtr.Load(); ptr != nil {
		return *ptr
	}
	if rootCommandHandlers == nil {
		handlers := buildRootCommandHandlers()
		rootCommandHandlers = handlers
		rootCommandsPtr.Store(&rootCommandHandlers)
	}
	return rootCommandHandlers
}

func resetRootCommandHandlersForTest() {
	rootCommandsMu.Lock()
	rootCommandHandlers = nil
	rootCommandsPtr.Store(nil)
	rootCommandsMu.Unlock()
}

func newLazyRootHandler(loader func() rootCommandHandler) rootCommandHandler {
	var (
		once    sync.Once
		handler rootCommandHandler
	)
	return func(rc *runContext, args []string) error {
		once.Do(func() {
			handler = loader()
		})
		return handler(rc, args)
	}
}
