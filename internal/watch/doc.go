// Package watch keeps outputs current by re-running build passes when source
// directories change and, optionally, on a fixed interval.
//
// Filesystem events are debounced so an editor save that touches several
// files yields one pass. Passes never overlap; triggers arriving while a pass
// runs are coalesced into a single follow-up pass.
package watch
