// Package processor runs one daily push: search every topic, keep the
// relevant papers, translate the ones not yet cached and notify each result.
package processor
