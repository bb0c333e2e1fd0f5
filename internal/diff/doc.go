// Package diff parses unified diff text into a structured model of
// per-file, per-hunk, per-line changes with old/new line-number tracking.
//
// The parser is deliberately lenient: it recognizes the git header family
// (diff --git, ---, +++, @@) and ignores everything else, so arbitrary
// metadata lines (index hashes, mode lines) pass through harmlessly.
// Input with no recognizable headers yields an empty result, not an error.
package diff
