// Package report renders the daily income summary and mails it.
//
// The body is plain text with fixed Korean section headings; amounts render
// at their natural scale and the KRW grand total is digit-grouped.
package report
