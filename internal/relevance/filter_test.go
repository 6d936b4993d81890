package relevance

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"codeberg.org/snonux/paperpush/internal/paper"
	"codeberg.org/snonux/paperpush/internal/testutil"
)

func TestFilter_KeepsRelevantInOrder(t *testing.T) {
	var gen testutil.TestDataGenerator
	papers := []paper.Paper{
		gen.GeneratePaper("A", "ranking"),
		gen.GeneratePaper("B", "biology"),
		gen.GeneratePaper("C", "ads"),
		gen.GeneratePaper("C", "ads"),
	}
	assessor := &testutil.MockAssessor{Relevant: map[string]bool{"ranking": true, "ads": true}}

	got, err := NewFilter(assessor, nil).Filter(context.Background(), papers)
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}

	// Duplicates are kept
	if !reflect.DeepEqual(testutil.Titles(got), []string{"A", "C", "C"}) {
		t.Errorf("Filter() = %v, want [A C C]", testutil.Titles(got))
	}
	if !reflect.DeepEqual(assessor.Calls, []string{"ranking", "biology", "ads", "ads"}) {
		t.Errorf("Unexpected assessor calls: %v", assessor.Calls)
	}
}

func TestFilter_NoneRelevant(t *testing.T) {
	var gen testutil.TestDataGenerator
	assessor := &testutil.MockAssessor{Relevant: map[string]bool{}}

	got, err := NewFilter(assessor, nil).Filter(context.Background(), []paper.Paper{gen.GeneratePaper("A", "x")})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no relevant papers, got %v", testutil.Titles(got))
	}
}

func TestFilter_NoAssessor(t *testing.T) {
	_, err := NewFilter(nil, nil).Filter(context.Background(), nil)
	if !errors.Is(err, ErrNoAssessor) {
		t.Errorf("Expected ErrNoAssessor, got %v", err)
	}
}
