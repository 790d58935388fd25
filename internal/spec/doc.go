// Package spec parses the textual six-field query specification format
// (informally, a "phi file") into an ir.QuerySpec.
//
// FORMAT:
//
// A specification has six sections, one per field, in any order, each given
// exactly once:
//
//	S:     id:int, name:text, amount:float   # schema
//	n:     3                                 # arity, must equal |S|
//	V:     name, amount                      # output list (empty = all of S)
//	F:     s=sales                           # range clause (alias=relation)
//	sigma: amount > 100 AND NOT (name = 'x') # selection predicate
//	G:     name                              # grouping keys
//
// Lexical rules, kept compatible with older phi tooling:
//
//   - '#' starts a comment, to end of line
//   - blank lines are ignored
//   - a line that does not begin a new section continues the previous one
//   - list separators are commas, whitespace, or both
//   - section keys are case-insensitive
//
// V and sigma may be empty; their sections must still be present. An empty V
// projects every attribute of S, an empty sigma is the always-true
// predicate, and an empty G produces a row-level result.
//
// V entries may be aggregate tokens of the form func_attr (sum_amount,
// count_*) with func in sum|count|avg|min|max; a leading "<digits>_" prefix
// from the grouping-variable notation is tolerated and ignored. An entry
// that exactly names a schema attribute is always read as a plain column.
//
// Every parse failure is a *ParseError naming the offending section and
// line.
package spec
