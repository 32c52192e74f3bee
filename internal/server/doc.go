// Package server defines the contract between the bootstrap and the
// server engine it drives.
//
// The engine is an external collaborator: the bootstrap constructs it
// through a Factory from an assembled configuration map and then only ever
// calls Start and Stop. Everything behind those two calls (sockets, worker
// pools, HTTP parsing) is opaque to the bootstrap.
package server
