// Package search queries the arXiv API for the newest papers of a topic and
// converts the Atom feed entries into paper records.
package search
