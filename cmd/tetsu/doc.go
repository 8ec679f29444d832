// Package main hosts the tetsu CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into reconciliation runs,
// index queries, cache statistics, and configuration scaffolding. It owns the
// run context (config, logger, store, AniDB session) and hands it to the
// internal packages, which never reach for globals.
//
// Keep this package thin: behavior belongs in internal/, and commands here
// only wire and render.
package main
