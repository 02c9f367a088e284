// Package types defines the public data model of psdkit: the decoded
// document, its layers and resources, typed errors, diagnostics and the
// options and limits that drive a decode.
//
// Design goals:
//   - Plain values. An ExtractedDocument has no pointers between layers;
//     parent and child links are indices, so it serializes without cycles.
//   - Paranoid bounds checking; never panic on malformed input.
//   - Typed errors with stable kinds, matched with errors.Is.
//
// This package has no dependencies beyond the standard library.
package types
