// Package persistence holds the quotation stores selected by
// persistence.driver: an in-process map, gorm over SQLite or PostgreSQL,
// DynamoDB, and the legacy backend over HTTP.
//
// Every store keeps one document per quotation ID, written with
// last-write-wins semantics, and reports a missing ID as domain.ErrNotFound.
// Documents are stored in the legacy JSON shape produced by the wire
// package so any of the legacy readers can load them.
package persistence
