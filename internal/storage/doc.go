// Package storage holds the record shape shared by the relational store
// drivers. Each driver sub-package writes the same TransactionRecord; the
// relay never reads records back.
package storage
