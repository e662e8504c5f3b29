// Package normalize cleans mail-derived text and canonicalizes student names.
//
// CanonicalName is the single join key between calendar events and
// email-derived identities: both ingestion paths must call it before any map
// lookup or insert. Clean must run before regex extraction because
// HTML-to-text conversion injects non-breaking spaces and zero-width
// characters at label boundaries.
package normalize
