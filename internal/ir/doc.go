// Package ir defines the intermediate representation consumed by the
// code generators.
//
// The IR is a flatter, semantically typed mirror of the AST: loose
// block assignments are resolved into well-known fields (outlet IDs,
// lifecycle dates, metric values), inheritance clauses become
// references, and the CURRENT date sentinel becomes the literal string
// "CURRENT". All IR values are constructed by the lowering pass in
// internal/compiler and are immutable afterwards; emitters consume
// them by shared read.
package ir
