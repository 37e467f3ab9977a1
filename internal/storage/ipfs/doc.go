// Package ipfs uploads receipt documents to a web3.storage style pinning
// service and returns the service's raw response.
package ipfs
