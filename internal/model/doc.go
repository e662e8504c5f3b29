// Package model defines shared data types for the lesson income summarizer.
//
// Conventions:
//   - Amounts: shopspring decimal, never floats
//   - Currency codes: uppercase ISO-like strings ("USD", "KRW")
//   - Student keys: canonical names produced by the normalize package
package model
