// Package ir defines the in-memory representation of a six-field query
// specification (S, n, V, F, sigma, G) shared by every compiler stage.
//
// ARCHITECTURE:
//
// The IR sits between the front ends and the plan builder:
//
//	[phi text] ─┐
//	[YAML]     ─┼→ [ir.QuerySpec] → [schema.Validate] → [queryir.Build]
//	[CUE]      ─┘
//
// A QuerySpec is constructed once by a front end, validated once, and then
// read-only for the rest of the pipeline. No stage mutates a QuerySpec after
// validation.
//
// SEALED UNIONS:
//
// Value (literals) and Predicate (sigma) are sealed interfaces using the
// marker method pattern. Only types in this package implement them, which
// makes backend type switches exhaustive over a closed set of node kinds.
//
// DETERMINISM:
//
// Identifiers are NFC-normalized at construction time and the canonical
// encoding (MarshalCanonical) is byte-stable, so the same specification
// always yields the same fingerprint and the same emitted artifact.
package ir
