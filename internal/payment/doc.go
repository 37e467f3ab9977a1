// Package payment sequences the transaction lifecycle against the build and
// submit microservice and turns every successful submission into a receipt.
//
// Submission failures are returned to the caller. Once the upstream service
// has accepted a signed transaction, the receipt pipeline runs its side
// effects (pinning, record persistence, event publishing) independently and
// never turns their failures into an error.
package payment
