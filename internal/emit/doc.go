// Package emit renders a compiled query into an executable artifact.
//
// Two artifact kinds exist:
//
//   - KindGo (default): a standalone Go program that loads connection
//     parameters from the environment, opens the store through database/sql,
//     executes the embedded parameterized query, and streams result rows as
//     tab-separated text on stdout.
//   - KindSQL: the query text itself, preceded by a comment header with the
//     parameter manifest.
//
// Both kinds carry the spec fingerprint and a deterministic build ID, so
// compiling the same specification twice produces byte-identical artifacts.
//
// The compiler reads no connection parameters itself: the generated program
// owns the RELC_DB_* environment surface and resolves it at artifact run
// time into an explicit Config value.
//
// Artifacts are written atomically (temp file + rename): a failed emission
// never leaves a partial output file behind.
package emit
