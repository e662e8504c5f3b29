// Package job runs the daily summary pipeline end to end.
//
// One Run fetches booking mail, extracts per-student rates in parallel,
// joins them against the day's calendar lessons, folds in same-day
// cancellation compensation, renders the report, and mails it. A failing
// compensation sweep degrades the run instead of aborting it; everything
// else is fatal.
package job
