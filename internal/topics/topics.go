// Package topics parses the list of arXiv topics to search.
package topics

import (
	"fmt"
	"os"
	"strings"
)

// Parse splits a comma separated topic list, dropping blanks and duplicates.
func Parse(list string) []string {
	return appendTopics(nil, list)
}

// ReadFile reads topics from a file. Each line holds one or more comma
// separated topics; text after '#' is a comment.
//
// Example:
//
//	cs.IR        # information retrieval
//	cs.AI, cs.CL
func ReadFile(filename string) ([]string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read topics file: %w", err)
	}

	var topics []string
	for _, line := range strings.Split(string(content), "\n") {
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		topics = appendTopics(topics, line)
	}
	return topics, nil
}

// Merge concatenates topic lists, keeping the first occurrence of each topic.
func Merge(lists ...[]string) []string {
	var merged []string
	for _, list := range lists {
		merged = appendTopics(merged, strings.Join(list, ","))
	}
	return merged
}

func appendTopics(topics []string, list string) []string {
	for _, topic := range strings.Split(list, ",") {
		topic = strings.TrimSpace(topic)
		if topic == "" || contains(topics, topic) {
			continue
		}
		topics = append(topics, topic)
	}
	return topics
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
