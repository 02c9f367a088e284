// Package mmfile exposes a document's bytes for decoding. On unix systems
// the file is memory-mapped read-only; elsewhere it is read into memory.
//
// Decoders slice the returned buffer directly, so it must stay valid until
// the returned cleanup function runs.
package mmfile
