// Package paper defines the paper record that flows through the push
// pipeline and the calendar date used to classify it.
package paper
