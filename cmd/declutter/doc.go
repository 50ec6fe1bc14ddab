// Package main hosts the declutter CLI entrypoint and command graph.
//
// The Cobra-based command tree runs one organizing pass by default, with
// subcommands for continuous watching, inspecting the category table, and
// configuration scaffolding. It centralizes configuration resolution and
// structured logging setup so subcommands can focus on user experience.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
