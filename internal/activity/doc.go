// Package activity records the tracker's append-only audit log and derives the
// manager-facing history views from it: impact verdicts on task completion,
// rolling statistics, filtering, timeline grouping and CSV export.
//
// Recording is best-effort. A failed audit write is logged and swallowed so it
// never blocks the mutation it describes; the write and the mutation are two
// separate store calls with no transaction between them.
package activity
