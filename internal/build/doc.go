// Package build runs incremental diagram build passes.
//
// A pass discovers candidate documents below the configured roots, resolves
// their includes for every variant, compares modification times against the
// existing artifacts and renders only what is stale. All execution paths
// (build, watch, tests) route through BuildService.
//
// Fatal errors (transport failures, local executable failures, unwritable
// outputs, ambiguous roots) abort the pass. Document level failures such as
// unresolved includes or a rejected server render are recorded per document
// and returned as one aggregate error once the pass completes.
package build
