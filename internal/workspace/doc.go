// Package workspace manages the per-pass scratch directory where resolved
// diagram text is staged for the local renderer. Each pass gets a fresh
// timestamped directory that is removed when the pass ends.
package workspace
