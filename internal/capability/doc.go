// Package capability defines the fixed extension-registration interface of
// the shell.
//
// A capability is a self-contained module providing one OS-level facility
// (persistent storage, notifications) to the packaged application. Providers
// are registered by name before the run loop starts and are invoked through
// a tool-based dispatch interface:
//
//	reg := capability.NewRegistry()
//	reg.Register(storage.NewProvider(db))
//	result, err := reg.Execute(ctx, "storage.get", params, appCtx)
package capability
