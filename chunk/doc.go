//
// Package chunk implements the chunk directory and the per-chunk
// rendezvous: the handshake between the filesystem thread, which wants to
// read or modify a chunk's payload, and the receiver thread, which just
// decoded a fresh echo reply for it.
//
package chunk
