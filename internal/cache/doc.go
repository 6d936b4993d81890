// Package cache persists processed papers in a single JSON document keyed by
// case-folded title, so a paper is only translated once across runs.
package cache
