// Package runtime generates the runtime context consumed by the host run
// loop.
//
// The packaged application configuration (identifier, product metadata, icon
// set, window manifest) is read from a JSON, YAML or TOML file, validated,
// and turned into a Context with resolved asset and data directories. A
// configuration the host would reject fails here deterministically: the same
// invalid manifest always yields the same error.
package runtime
