// Package config defines configuration structures for the jlcsnap CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (JLCSNAP_ prefix)
//   - YAML configuration file
//
// Precedence is flags over environment over file over defaults.
package config
