// Package web3 defines the contracts of the chain-side collaborators the
// relay depends on: the transaction build/submit microservice and the
// read-only ledger indexer. Concrete HTTP clients live in sub-packages and
// translate transport and status failures into internal/errors values.
package web3
