package collection

import (
	"testing"

	"github.com/matsen/rexplorer/internal/paper"
)

func TestToggle_Dedup(t *testing.T) {
	p := paper.Paper{Title: "Attention Is All You Need", Year: 2017}

	c := New(nil)
	c = c.Toggle(p, "transformers")
	c = c.Toggle(paper.Paper{Title: "Other"}, "x")
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	// Same title from a different keyword counts as the same paper.
	c = c.Toggle(p, "attention")
	if c.Len() != 1 || c.Contains(p) {
		t.Errorf("second toggle should remove: %+v", c.Items())
	}

	c = c.Toggle(p, "attention")
	if c.Len() != 2 || !c.Contains(p) {
		t.Errorf("third toggle should add back: %+v", c.Items())
	}
	items := c.Items()
	if items[1].SourceKeyword != "attention" {
		t.Errorf("SourceKeyword = %q, want attention", items[1].SourceKeyword)
	}
}

func TestToggle_CollectTwiceLeavesOne(t *testing.T) {
	p := paper.Paper{Title: "Same"}
	c := New(nil, CollectedPaper{Paper: p, SourceKeyword: "a"})

	// Collecting the same title twice through New keeps one entry.
	c2 := New(nil, append(c.Items(), CollectedPaper{Paper: p, SourceKeyword: "b"})...)
	if c2.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c2.Len())
	}
}

func TestAddTwiceThenToggle(t *testing.T) {
	p := paper.Paper{Title: "Same"}

	c := New(nil).Add(p, "a").Add(p, "b")
	if c.Len() != 1 {
		t.Fatalf("Len() = %d after collecting twice, want 1", c.Len())
	}
	if c.Items()[0].SourceKeyword != "a" {
		t.Errorf("SourceKeyword = %q, want a", c.Items()[0].SourceKeyword)
	}

	c = c.Toggle(p, "c")
	if c.Len() != 0 {
		t.Errorf("Len() = %d after third toggle, want 0", c.Len())
	}
}

func TestToggle_DoesNotMutateReceiver(t *testing.T) {
	c := New(nil)
	_ = c.Toggle(paper.Paper{Title: "x"}, "k")
	if c.Len() != 0 {
		t.Error("Toggle() mutated the receiver")
	}
}

func TestRemove(t *testing.T) {
	a := paper.Paper{Title: "A"}
	b := paper.Paper{Title: "B"}
	c := New(nil).Toggle(a, "k").Toggle(b, "k")

	c = c.Remove(paper.Paper{Title: "A", Year: 1999})
	if c.Len() != 1 || c.Items()[0].Paper.Title != "B" {
		t.Errorf("Remove() left %+v", c.Items())
	}
	if c.Remove(paper.Paper{Title: "missing"}).Len() != 1 {
		t.Error("Remove() of missing paper changed the collection")
	}
}

func TestTitleAuthorYearKey(t *testing.T) {
	a := paper.Paper{Title: "Review", Authors: []string{"Smith"}, Year: 2020}
	b := paper.Paper{Title: "Review", Authors: []string{"Jones"}, Year: 2020}

	c := New(TitleAuthorYearKey).Toggle(a, "k").Toggle(b, "k")
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2 with title_author_year identity", c.Len())
	}

	c = New(TitleKey).Toggle(a, "k").Toggle(b, "k")
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 with title identity", c.Len())
	}
}

func TestKeyFuncByName(t *testing.T) {
	for _, name := range []string{"", "title", "title_author_year"} {
		if _, err := KeyFuncByName(name); err != nil {
			t.Errorf("KeyFuncByName(%q) error = %v", name, err)
		}
	}
	if _, err := KeyFuncByName("doi"); err == nil {
		t.Error("KeyFuncByName(doi) expected error")
	}
}

func TestFindByTitle(t *testing.T) {
	c := New(nil).Toggle(paper.Paper{Title: "Deep Learning"}, "ml")
	if _, ok := c.FindByTitle("deep learning"); !ok {
		t.Error("FindByTitle() did not match case-insensitively")
	}
	if _, ok := c.FindByTitle("shallow"); ok {
		t.Error("FindByTitle() matched a missing title")
	}
}
