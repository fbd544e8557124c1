// Package config defines the node configuration consumed by every bootstrap
// phase and CLI command.
//
// A [Config] is loaded once per run from an optional YAML file, SYMPHONY_*
// environment variables and built-in defaults, validated, and then passed by
// pointer to the phases. Nothing reads configuration from globals after
// [Load] returns.
package config
