// Package confloader provides the configuration loading mechanism.
//
// This package implements a configuration loader that reads several
// sources using koanf as the underlying library.
//
// Features:
//
//   - Multiple Sources: YAML files, environment variables, override maps
//   - Type Safety: Unmarshaling into typed structs via koanf tags
//   - Defaults: values already set on the target survive missing keys
//
// Priority (highest to lowest):
//
//  1. Overrides (command-line flags)
//  2. Environment variables
//  3. Configuration files
//  4. Default values
package confloader
