package cache

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"codeberg.org/snonux/paperpush/internal/paper"
)

func testPaper(title string) paper.Paper {
	return paper.Paper{
		Title:   title,
		URL:     "http://arxiv.org/abs/" + strings.ReplaceAll(title, " ", "_"),
		PubDate: paper.Date{Year: 2024, Month: time.March, Day: 4},
		Summary: "summary of " + title,
	}
}

func titles(papers []paper.Paper) []string {
	out := make([]string, 0, len(papers))
	for _, p := range papers {
		out = append(out, p.Title)
	}
	return out
}

func TestLoad_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")
	store := NewStore(path, nil)

	records, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty cache, got %d records", len(records))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Cache file was not created: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("Expected empty JSON array, got %q", data)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	records, err := NewStore(path, nil).Load()
	if err != nil {
		t.Fatalf("Load should not fail on bad JSON: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty cache, got %d records", len(records))
	}
}

func TestLoad_LegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	content := `[
    {
        "title": "Deep CTR Models",
        "url": "http://arxiv.org/abs/2401.00001v1",
        "pub_date": "2024-01-02",
        "summary": "We study CTR.",
        "translated": "我们研究点击率。"
    }
]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	records, err := NewStore(path, nil).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Translated != "我们研究点击率。" {
		t.Errorf("Unexpected translation: %q", records[0].Translated)
	}
	if records[0].PubDate.String() != "2024-01-02" {
		t.Errorf("Unexpected date: %s", records[0].PubDate)
	}
}

func TestLoad_MixedDateFormatsKeepRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	content := `[
    {"title": "Old", "url": "u1", "pub_date": "2024-05-01", "summary": "s1", "translated": "t1"},
    {"title": "Odd", "url": "u2", "pub_date": "2024-05-01T10:00:00Z", "summary": "s2", "translated": "t2"},
    {"title": "Edited", "url": "u3", "pub_date": "May 1st", "summary": "s3", "translated": "t3"}
]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	store := NewStore(path, nil)
	existing, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(titles(existing), []string{"Old", "Odd", "Edited"}) {
		t.Fatalf("Expected all records to load, got %v", titles(existing))
	}

	merged, err := store.MergeAndPersist(existing, []paper.Paper{testPaper("New")})
	if err != nil {
		t.Fatalf("MergeAndPersist failed: %v", err)
	}
	if len(merged) != 4 {
		t.Fatalf("Expected 4 records, got %d", len(merged))
	}

	reloaded, err := store.Load()
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if !reflect.DeepEqual(titles(reloaded), []string{"Old", "Odd", "Edited", "New"}) {
		t.Errorf("Unexpected cache content: %v", titles(reloaded))
	}
	if reloaded[1].Translated != "t2" || reloaded[1].PubDate.String() != "2024-05-01" {
		t.Errorf("Unexpected Odd record: %+v", reloaded[1])
	}
	if reloaded[2].PubDate.String() != "May 1st" {
		t.Errorf("Unrecognised date not preserved: %q", reloaded[2].PubDate.String())
	}
}

func TestLoad_Unreadable(t *testing.T) {
	// A directory in place of the file cannot be read as a file
	dir := t.TempDir()
	if _, err := NewStore(dir, nil).Load(); err == nil {
		t.Error("Expected error when the cache path is a directory")
	}
}

func TestBuildIndex(t *testing.T) {
	records := []paper.Paper{testPaper("Alpha"), testPaper("beta"), testPaper("ALPHA")}
	index := BuildIndex(records)

	if len(index) != 2 {
		t.Errorf("Expected 2 keys, got %d", len(index))
	}
	if index["alpha"] != 2 {
		t.Errorf("Expected later duplicate to win, got position %d", index["alpha"])
	}
	if index["beta"] != 1 {
		t.Errorf("Expected beta at 1, got %d", index["beta"])
	}
}

func TestPartition_CaseInsensitive(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		fetch  string
	}{
		{"fetched upper", "foo bar", "Foo Bar"},
		{"stored upper", "Foo Bar", "foo bar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := testPaper(tt.stored)
			stored.Translated = "cached translation"
			existing := []paper.Paper{stored}

			cached, novel := Partition([]paper.Paper{testPaper(tt.fetch)}, existing, BuildIndex(existing))
			if len(novel) != 0 {
				t.Errorf("Expected no novel papers, got %v", titles(novel))
			}
			if len(cached) != 1 || cached[0].Translated != "cached translation" {
				t.Errorf("Expected the stored record to win, got %+v", cached)
			}
		})
	}
}

func TestPartition_Order(t *testing.T) {
	existing := []paper.Paper{testPaper("B"), testPaper("D")}
	index := BuildIndex(existing)

	permutations := [][]string{
		{"A", "B", "C", "D"},
		{"D", "C", "B", "A"},
		{"B", "A", "D", "C"},
		{"C", "D", "A", "B"},
	}

	for _, perm := range permutations {
		t.Run(strings.Join(perm, ""), func(t *testing.T) {
			var incoming []paper.Paper
			for _, title := range perm {
				incoming = append(incoming, testPaper(title))
			}

			cached, novel := Partition(incoming, existing, index)
			processed := append(append([]paper.Paper{}, cached...), novel...)

			var wantCached, wantNovel []string
			for _, title := range perm {
				if title == "B" || title == "D" {
					wantCached = append(wantCached, title)
				} else {
					wantNovel = append(wantNovel, title)
				}
			}
			want := append(append([]string{}, wantCached...), wantNovel...)

			if !reflect.DeepEqual(titles(processed), want) {
				t.Errorf("Processed order = %v, want %v", titles(processed), want)
			}
		})
	}
}

func TestMergeAndPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewStore(path, nil)

	existing := []paper.Paper{testPaper("Old <one>")}
	novel := testPaper("New & shiny")
	novel.Translated = "新的"

	merged, err := store.MergeAndPersist(existing, []paper.Paper{novel})
	if err != nil {
		t.Fatalf("MergeAndPersist failed: %v", err)
	}
	if !reflect.DeepEqual(titles(merged), []string{"Old <one>", "New & shiny"}) {
		t.Errorf("Unexpected merged order: %v", titles(merged))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read cache file: %v", err)
	}
	content := string(data)
	for _, want := range []string{"新的", "Old <one>", "New & shiny", "\n    {"} {
		if !strings.Contains(content, want) {
			t.Errorf("Expected %q in cache file:\n%s", want, content)
		}
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, merged) {
		t.Errorf("Reloaded cache differs:\n got %+v\nwant %+v", loaded, merged)
	}

	// No temp files left behind
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Expected only the cache file, found %d entries", len(entries))
	}
}

func TestMergeAndPersist_NoDedup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewStore(path, nil)

	existing := []paper.Paper{testPaper("Same")}
	merged, err := store.MergeAndPersist(existing, []paper.Paper{testPaper("same")})
	if err != nil {
		t.Fatalf("MergeAndPersist failed: %v", err)
	}
	if len(merged) != 2 {
		t.Errorf("Expected append without dedup, got %d records", len(merged))
	}
}
