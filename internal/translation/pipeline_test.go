package translation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"codeberg.org/snonux/paperpush/internal/cache"
	"codeberg.org/snonux/paperpush/internal/paper"
	"codeberg.org/snonux/paperpush/internal/testutil"
)

var gen testutil.TestDataGenerator

func newTestPipeline(t *testing.T, translator Translator) (*Pipeline, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "push_papers.json")
	return NewPipeline(cache.NewStore(path, nil), translator, nil), path
}

func TestProcess_EndToEnd(t *testing.T) {
	translator := &testutil.MockTranslator{Result: []string{"t1", "t2"}}
	pipeline, path := newTestPipeline(t, translator)

	input := []paper.Paper{gen.GeneratePaper("A", "s1"), gen.GeneratePaper("B", "s2")}
	result, err := pipeline.Process(context.Background(), input)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if !reflect.DeepEqual(testutil.Titles(result.Papers), []string{"A", "B"}) {
		t.Errorf("Unexpected order: %v", testutil.Titles(result.Papers))
	}
	if result.Papers[0].Translated != "t1" || result.Papers[1].Translated != "t2" {
		t.Errorf("Unexpected translations: %+v", result.Papers)
	}
	if !reflect.DeepEqual(translator.Calls, [][]string{{"s1", "s2"}}) {
		t.Errorf("Unexpected translator calls: %v", translator.Calls)
	}

	stored := testutil.ReadCacheFile(t, path)
	if len(stored) != 2 || stored[0].Translated != "t1" || stored[1].Translated != "t2" {
		t.Errorf("Unexpected cache content: %+v", stored)
	}

	if result.Cached != 0 || result.Novel != 2 || result.Translated != 2 || result.Untranslated != 0 {
		t.Errorf("Unexpected counts: %+v", result)
	}
}

func TestProcess_Idempotent(t *testing.T) {
	translator := &testutil.MockTranslator{}
	pipeline, path := newTestPipeline(t, translator)

	input := []paper.Paper{gen.GeneratePaper("A", "s1"), gen.GeneratePaper("B", "s2")}
	if _, err := pipeline.Process(context.Background(), input); err != nil {
		t.Fatalf("First Process failed: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read cache: %v", err)
	}

	result, err := pipeline.Process(context.Background(), input)
	if err != nil {
		t.Fatalf("Second Process failed: %v", err)
	}

	if len(translator.Calls) != 1 {
		t.Errorf("Expected no translation on the second run, got %d calls", len(translator.Calls))
	}
	if result.Cached != 2 || result.Novel != 0 {
		t.Errorf("Expected everything from cache, got %+v", result)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read cache: %v", err)
	}
	if string(before) != string(after) {
		t.Error("Cache file changed on the second run")
	}
}

func TestProcess_CachedFirst(t *testing.T) {
	translator := &testutil.MockTranslator{}
	pipeline, path := newTestPipeline(t, translator)

	old := gen.GeneratePaper("cached paper", "old summary")
	old.Translated = "旧的翻译"
	testutil.WriteCacheFile(t, path, []paper.Paper{old})

	input := []paper.Paper{
		gen.GeneratePaper("Fresh", "new summary"),
		gen.GeneratePaper("Cached Paper", "refetched summary"),
	}
	result, err := pipeline.Process(context.Background(), input)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if !reflect.DeepEqual(testutil.Titles(result.Papers), []string{"cached paper", "Fresh"}) {
		t.Errorf("Expected cached ++ novel, got %v", testutil.Titles(result.Papers))
	}
	if result.Papers[0].Translated != "旧的翻译" {
		t.Errorf("Cached translation was not reused: %q", result.Papers[0].Translated)
	}
	if translator.TotalTexts() != 1 {
		t.Errorf("Expected only the novel summary to be translated, got %v", translator.Calls)
	}

	stored := testutil.ReadCacheFile(t, path)
	if !reflect.DeepEqual(testutil.Titles(stored), []string{"cached paper", "Fresh"}) {
		t.Errorf("Unexpected cache content: %v", testutil.Titles(stored))
	}
}

func TestProcess_LengthMismatch(t *testing.T) {
	tests := []struct {
		name   string
		result []string
	}{
		{"shorter", []string{"only one"}},
		{"longer", []string{"a", "b", "c", "d"}},
		{"empty", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline, path := newTestPipeline(t, &testutil.MockTranslator{Result: tt.result})

			input := []paper.Paper{
				gen.GeneratePaper("A", "s1"),
				gen.GeneratePaper("B", "s2"),
				gen.GeneratePaper("C", "s3"),
			}
			result, err := pipeline.Process(context.Background(), input)
			if err != nil {
				t.Fatalf("Process failed: %v", err)
			}

			if !result.Mismatch {
				t.Error("Expected Mismatch to be set")
			}
			if result.Untranslated != 3 || result.Translated != 0 {
				t.Errorf("Unexpected counts: %+v", result)
			}
			for _, p := range result.Papers {
				if p.Translated != "" {
					t.Errorf("Expected %s to stay untranslated, got %q", p.Title, p.Translated)
				}
			}
			if len(testutil.ReadCacheFile(t, path)) != 3 {
				t.Error("Novel papers should still be cached")
			}
		})
	}
}

func TestProcess_PartialFailureCount(t *testing.T) {
	translator := &testutil.MockTranslator{Result: []string{"t1", "", "t3"}}
	pipeline, _ := newTestPipeline(t, translator)

	input := []paper.Paper{
		gen.GeneratePaper("A", "s1"),
		gen.GeneratePaper("B", "s2"),
		gen.GeneratePaper("C", "s3"),
	}
	result, err := pipeline.Process(context.Background(), input)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Mismatch {
		t.Error("Lengths match, Mismatch should be false")
	}
	if result.Translated != 2 || result.Untranslated != 1 {
		t.Errorf("Unexpected counts: %+v", result)
	}
}

func TestProcess_NoTranslator(t *testing.T) {
	pipeline, path := newTestPipeline(t, nil)

	result, err := pipeline.Process(context.Background(), []paper.Paper{gen.GeneratePaper("A", "s1")})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Untranslated != 1 {
		t.Errorf("Expected 1 untranslated paper, got %+v", result)
	}
	testutil.AssertFileContains(t, path, `"title": "A"`)
}

func TestProcess_EmptyInputDoesNotRewrite(t *testing.T) {
	translator := &testutil.MockTranslator{}
	pipeline, path := newTestPipeline(t, translator)

	result, err := pipeline.Process(context.Background(), nil)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(result.Papers) != 0 {
		t.Errorf("Expected no papers, got %d", len(result.Papers))
	}
	if len(translator.Calls) != 0 {
		t.Error("Translator should not be called without novel papers")
	}
	testutil.AssertFileExists(t, path)
}

func TestProcess_LoadError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	testutil.CreateTestFile(t, blocker, []byte("x"))

	pipeline := NewPipeline(cache.NewStore(filepath.Join(blocker, "cache.json"), nil), &testutil.MockTranslator{}, nil)
	if _, err := pipeline.Process(context.Background(), []paper.Paper{gen.GeneratePaper("A", "s1")}); err == nil {
		t.Error("Expected error when the cache cannot be read")
	}
}

// cancellingTranslator simulates an interrupt arriving mid-translation: it
// cancels the run and fails every item the way model.Client does.
type cancellingTranslator struct {
	cancel context.CancelFunc
	calls  int
}

func (c *cancellingTranslator) Translate(ctx context.Context, texts []string, systemInstruction string, temperature float32) []string {
	c.calls++
	c.cancel()
	return make([]string, len(texts))
}

func TestProcess_CancelledDuringTranslationLeavesCache(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	translator := &cancellingTranslator{cancel: cancel}
	pipeline, path := newTestPipeline(t, translator)

	old := gen.GeneratePaper("Old", "s0")
	old.Translated = "t0"
	testutil.WriteCacheFile(t, path, []paper.Paper{old})
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read cache: %v", err)
	}

	_, err = pipeline.Process(ctx, []paper.Paper{gen.GeneratePaper("A", "s1"), gen.GeneratePaper("B", "s2")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if translator.calls != 1 {
		t.Errorf("Expected 1 translation call, got %d", translator.calls)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read cache: %v", err)
	}
	if string(after) != string(before) {
		t.Errorf("Cache file was rewritten:\n%s", after)
	}

	// A later run translates the papers normally.
	next := NewPipeline(cache.NewStore(path, nil), &testutil.MockTranslator{Result: []string{"t1", "t2"}}, nil)
	result, err := next.Process(context.Background(), []paper.Paper{gen.GeneratePaper("A", "s1"), gen.GeneratePaper("B", "s2")})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Novel != 2 || result.Translated != 2 {
		t.Errorf("Expected 2 novel translated papers, got novel=%d translated=%d", result.Novel, result.Translated)
	}
}

func TestProcess_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	translator := &testutil.MockTranslator{}
	pipeline, path := newTestPipeline(t, translator)

	if _, err := pipeline.Process(ctx, []paper.Paper{gen.GeneratePaper("A", "s1")}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(translator.Calls) != 0 {
		t.Error("Translator should not be called after cancellation")
	}
	testutil.AssertFileNotExists(t, path)
}
