//
// Package fusebind binds filetable.Table to the kernel's FUSE upcalls,
// using github.com/hanwen/go-fuse/v2's tree-based node API. pingfs's
// namespace is flat (one root directory, no
// subdirectories), so the tree has exactly two node shapes: the root
// and a leaf per file. Every file is added to the tree eagerly at
// creation time as a persistent inode, so neither node implements
// NodeLookuper or NodeReaddirer: per the library's own documented
// default, an unimplemented Lookup falls back to an existing child
// lookup, and an unimplemented Readdir falls back to listing the tree's
// current children — exactly the table's file set, since every
// table mutation is mirrored into the tree in the same call.
//
package fusebind
