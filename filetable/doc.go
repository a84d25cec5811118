//
// Package filetable translates byte-granular filesystem operations into
// per-chunk operations against the chunk directory and rendezvous. A
// Table is driven by a single caller at a time (the kernel upcall
// binding runs single-threaded) and so carries no lock of its own.
//
package filetable
