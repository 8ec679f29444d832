// Package config loads, normalizes, and validates tetsu configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ANIDB_USERNAME and ANIDB_PASSWORD. The Config type centralizes every knob
// the CLI needs so the index database, AniDB session, and hashing pool are
// configured in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
