// Package simpleitem models lazily-parsed data items with two property
// namespaces and pluggable, format-specific content handling.
//
// An Item exposes one key/value surface assembled from two independently
// owned sources: storage-origin properties supplied by a backend, and
// parser-origin properties extracted from the item's raw content. Content
// is parsed exactly once, on the first read; writes route to one of the
// two namespaces by a fixed precedence (storage alias, parser alias,
// storage presence, parser default) and flip per-namespace dirty flags
// that backends consult when persisting. Access points (e.g., memory,
// filesystem, S3, Postgres) are provided under subpackages.
//
// Namespaces and Aliases
//
// Each namespace pairs a multi-valued PropertyMap with an alias table
// translating alternate names to canonical keys. Enumerating keys yields
// the union of alias names and stored canonical keys, so a declared alias
// can be listed before its canonical key holds a value. Reading an absent
// key returns nil rather than an error; absence and an explicit nil are
// indistinguishable by contract.
//
// Formats
//
// A Registry maps format tags to variant constructors, populated at
// initialization. The built-in variants are Atom ("binary", opaque blob
// pass-through) and Text ("text", decoded from the descriptor's default
// encoding). Capsule composes items into an ordered, change-tracked
// sequence of child items loaded on demand. A descriptor with no format
// tag yields a bare item with raw property access and no content
// pipeline.
//
// Items are not safe for concurrent use; callers sharing one item across
// goroutines must serialize access externally.
package simpleitem
