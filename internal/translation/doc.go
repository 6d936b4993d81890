// Package translation runs relevant papers through the paper cache and
// translates the abstracts of papers not seen before, persisting the result.
package translation
