// Package project locates a Cargo project on disk and reads the package
// metadata the rest of the pipeline needs.
//
// Manifest handling is intentionally minimal: Cargo.toml is scanned line by
// line for the first "name =" and "version =" entries instead of being
// parsed as TOML. The scan has no notion of sections, so a [dependencies]
// or [workspace] entry that appears before [package] is picked up instead.
// Callers rely on this exact scan order; do not replace it with a real
// TOML parser without changing the documented behavior.
package project
