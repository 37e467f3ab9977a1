// Package ledger forwards read-only address and transaction lookups to the
// ledger indexer and the transaction microservice.
package ledger
