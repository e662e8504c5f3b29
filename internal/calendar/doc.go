// Package calendar reads today's lessons from a Google Calendar feed.
//
// Event summaries carrying the configured lesson suffix are parsed into
// LessonEvents with canonical student keys, so the engine can join them
// directly against the mail-derived rate index.
package calendar
