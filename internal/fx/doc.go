// Package fx maintains KRW exchange rates behind a TTL cache with a
// provider-failover chain.
//
// Lookup order per currency: fresh cache entry, provider chain in order,
// stale cache entry of any age. Only a currency with no cached value of any
// age and no reachable provider fails, because then the grand total cannot
// be computed.
package fx
