package notify

import (
	"fmt"
	"strings"

	"codeberg.org/snonux/paperpush/internal/paper"
)

// NewestMarker prefixes the title of papers published yesterday.
const NewestMarker = "[Newest]"

// Message is one notification.
type Message struct {
	Title   string
	Content string
}

// Format renders paper p as the index-th (1-based) of total messages.
func Format(p paper.Paper, index, total int, label, backendName string, today, yesterday paper.Date) Message {
	title := p.Title
	if p.PubDate.IsValid() && p.PubDate == yesterday {
		title = NewestMarker + title
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s](%s)\n\n", title, p.URL)
	fmt.Fprintf(&b, "Pub Date：%s\n\n", p.PubDate)
	fmt.Fprintf(&b, "URL: %s\n\n", p.URL)
	fmt.Fprintf(&b, "Translated (Powered by %s):\n\n%s\n\n", backendName, p.Translated)
	fmt.Fprintf(&b, "Summary：\n\n%s\n\n", p.Summary)

	return Message{
		Title:   fmt.Sprintf("Arxiv:%s[%d/%d]@%s", label, index, total, today),
		Content: b.String(),
	}
}

// StatusTitle is the title of a run-level notice such as "no update today".
func StatusTitle(label string, today paper.Date) string {
	return fmt.Sprintf("Arxiv:%s[X]@%s", label, today)
}
