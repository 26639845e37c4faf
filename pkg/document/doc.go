// Package document converts between rich-text documents and flat block lists.
//
// A document is a ProseMirror-shaped tree of Nodes. Its top-level nodes map
// one-to-one onto Blocks, each carrying a typed Payload. The converter is
// pure; persistence lives in package blockstore.
//
// Only node types and plain text survive a round trip. Marks and unknown
// attributes are dropped.
package document
