// Package searchkey canonicalizes show titles into search keys.
//
// A search key is the accent-folded, underscore-sentineled form of a title
// used for whole-token regex lookups against the catalog: "Show Name"
// becomes "_Show_Name_". Keys are case-preserving; callers compare
// case-insensitively through the store's REGEXP operator.
package searchkey
