// Package config handles configuration management for postinstall.
// It supports loading configuration from multiple sources including
// TOML or YAML files, environment variables, and command-line flags.
//
// Sources are layered, later ones overriding earlier ones:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. $XDG_CONFIG_HOME/postinstall/config.toml, when present
//  3. the file given with --config
//  4. POSTINSTALL_* environment variables (POSTINSTALL_LAUNCHER_NAME -> launcher.name)
//  5. command-line flag overrides
package config
