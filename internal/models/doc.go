// Package models defines the core domain types for Tally.
//
// A Receipt is the aggregate root. It starts life as a draft, is edited
// under optimistic concurrency (the Version field), and is finalized into
// a set of LedgerEntry documents that record who owes whom. Settlements
// then reduce open entries until the receipt is fully settled.
//
// Every monetary field is a signed integer count of cents. Floating point
// never touches money; fractional item shares use decimal quantities.
//
// Relationships are expressed as ID strings (UUIDs) rather than pointers
// to avoid circular references between aggregates.
package models
