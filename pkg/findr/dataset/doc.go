// Package dataset reads and writes the raw matrix files findr works on.
//
// A dataset file is a row-major dump of little-endian elements with no
// header: genotypes are one byte each, expression values are float32. The
// shape is not stored and must be supplied by the caller. Raw files are
// memory-mapped where the platform allows it, so even large expression
// matrices reach the native library without being copied. Files ending in
// ".zst" or ".lz4" are decompressed into memory instead.
package dataset
