// Package config loads, normalizes, and validates movieconv configuration.
//
// Configuration lives in a TOML file (default ~/.config/movieconv/config.toml,
// falling back to ./movieconv.toml). Every field has a default, so a missing
// file is a valid setup. Load expands "~" in paths, fills blanks with defaults,
// and validates the result; the derived path helpers give the settings, preset,
// and history stores their file locations under the data directory.
package config
