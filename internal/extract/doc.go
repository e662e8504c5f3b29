// Package extract parses priced bookings and cancellation compensations out
// of bilingual, format-variable notification mail.
//
// Extractors are total: any parse miss yields (zero value, false), never an
// error. Label matching is an ordered list of pattern variants tried in
// sequence (Korean first, then English), so each variant stays testable on
// its own.
package extract
