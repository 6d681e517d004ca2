// Package normalize converts source-specific raw records into the canonical
// core.Note shape.
//
// Each raw variant has exactly one normalization function, dispatched by
// Normalize. Missing optional fields never fail normalization: titles fall
// back to core.UntitledTitle, timestamps stay nil, flags default to false.
// Only unreadable records fail, and those are reported by the readers as
// core.SourceReadError before they reach this package.
//
// Stream chains several readers into a single sequence of Result values so
// the sync loop can tally per-record failures without unwinding.
package normalize
