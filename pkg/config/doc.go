// Package config handles configuration management for wfpack.
//
// Configuration is layered with koanf, later layers replacing earlier ones:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the user file, $XDG_CONFIG_HOME/wfpack/config.toml
//  3. an explicit --config file
//  4. WFPACK_* environment variables, with "__" separating sections
//     (WFPACK_OUTPUT__FORMAT=json, WFPACK_FRAMEWORK__MARKERS=a,b)
//  5. command-line overrides
//
// Arrays are replaced, not merged: a user file that declares [[manifest]]
// entries supersedes the built-in manifest entirely.
package config
