// Package mailbox reads booking and cancellation mail over IMAP.
//
// A Source dials the configured server read-only, searches the look-back
// window for mail from the tutoring platform, and hands back the matching
// messages with their MIME bodies already resolved.
package mailbox
