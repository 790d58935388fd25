// Package queryir defines the query expression tree between a validated
// QuerySpec and the backend emitters, and the deterministic builder that
// constructs it.
//
// ARCHITECTURE:
//
//	[ir.QuerySpec] → [queryir.Build] → [Plan] → [querysql emitter]
//
// The Plan is a sealed interface over a closed set of node kinds (Scan,
// Join, Filter, Group, Project), so emitter traversals are exhaustive type
// switches. Builder output is owned by the builder; emitters read it and
// never mutate it.
//
// Tree shape, bottom to top:
//
//	Scan ... Scan → Join* → Filter? → Group? → Project
//
// CONSTRUCTION POLICIES (fixed, documented behavior):
//
//   - Join policy: relations are scanned in F's declared order and combined
//     into a left-deep chain of natural joins. S declares the attributes of
//     the joined result, not per-relation ownership, so shared-column
//     resolution is delegated to the store's NATURAL JOIN.
//   - Empty V projects every attribute of S, in schema order.
//   - Default aggregates: under grouping, a projected attribute that is not
//     a grouping key gets sum if numeric and min otherwise. Explicit
//     aggregate tokens in V are kept as written.
//   - Grouping keys keep exactly the order G declares.
//
// Build is deterministic: the same QuerySpec always produces the same Plan.
package queryir
