// Package api exposes the relay's HTTP surface: intent resolution, the
// build/submit transaction lifecycle, history saving, and read-only ledger
// queries. Routing uses gorilla/mux; every route is instrumented with
// Prometheus metrics and wrapped in a CORS policy from configuration.
//
// @title        Chat-to-Pay Relay API
// @version      1.0
// @description  Turns chat messages into Cardano payment actions and relays them to the transaction, pinning and indexer services.
// @BasePath     /
package api
