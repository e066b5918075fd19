package coauthor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matsen/labsite/internal/publication"
)

func authors(names ...string) []publication.Author {
	out := make([]publication.Author, len(names))
	for i, n := range names {
		out[i] = publication.Author{Name: n}
	}
	return out
}

func TestBuild_Example(t *testing.T) {
	a := publication.Publication{Title: "A", Year: 2020, Authors: authors("X", "Y")}
	b := publication.Publication{Title: "B", Year: 2021, Authors: authors("X", "Y", "Z")}

	got := Build([]publication.Publication{a, b})

	want := Graph{
		Nodes: []Node{
			{Name: "X", PublicationCount: 2},
			{Name: "Y", PublicationCount: 2},
			{Name: "Z", PublicationCount: 1},
		},
		Edges: []Edge{
			{Source: "X", Target: "Y", Weight: 2, Publications: []publication.Publication{a, b}},
			{Source: "X", Target: "Z", Weight: 1, Publications: []publication.Publication{b}},
			{Source: "Y", Target: "Z", Weight: 1, Publications: []publication.Publication{b}},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Empty(t *testing.T) {
	for _, pubs := range [][]publication.Publication{nil, {}} {
		got := Build(pubs)
		if got.Nodes == nil || got.Edges == nil {
			t.Fatalf("Build(%v) returned nil slices: %+v", pubs, got)
		}
		if len(got.Nodes) != 0 || len(got.Edges) != 0 {
			t.Errorf("Build(%v) = %+v, want empty graph", pubs, got)
		}
		if !got.IsEmpty() {
			t.Error("IsEmpty() = false for empty graph")
		}
	}
}

func TestBuild_EdgeKeySymmetry(t *testing.T) {
	pubs := []publication.Publication{
		{Title: "one", Year: 2020, Authors: authors("Bea", "Al")},
		{Title: "two", Year: 2021, Authors: authors("Al", "Bea")},
	}

	got := Build(pubs)
	if len(got.Edges) != 1 {
		t.Fatalf("got %d edges, want 1: %+v", len(got.Edges), got.Edges)
	}
	e := got.Edges[0]
	if e.Source != "Al" || e.Target != "Bea" || e.Weight != 2 {
		t.Errorf("edge = %s-%s weight %d, want Al-Bea weight 2", e.Source, e.Target, e.Weight)
	}

	if _, ok := got.Edge("Bea", "Al"); !ok {
		t.Error("Edge(Bea, Al) not found")
	}
}

func TestBuild_DuplicateNameInOnePublication(t *testing.T) {
	pubs := []publication.Publication{
		{Title: "dup", Year: 2022, Authors: []publication.Author{
			{Name: "X"},
			{Name: "Y"},
			{Name: "X", Highlighted: true},
		}},
	}

	got := Build(pubs)

	for _, e := range got.Edges {
		if e.Source == e.Target {
			t.Errorf("self-edge %q produced", e.Source)
		}
	}
	e, ok := got.Edge("X", "Y")
	if !ok {
		t.Fatal("edge X-Y missing")
	}
	if e.Weight != 1 {
		t.Errorf("X-Y weight = %d, want 1", e.Weight)
	}
	x, _ := got.Node("X")
	if x.PublicationCount != 1 {
		t.Errorf("X publication count = %d, want 1", x.PublicationCount)
	}
	if !x.Highlighted {
		t.Error("X should be highlighted from its repeated entry")
	}
}

func TestBuild_HighlightAndAffiliation(t *testing.T) {
	pubs := []publication.Publication{
		{Title: "one", Year: 2020, Authors: []publication.Author{{Name: "Me"}, {Name: "You"}}},
		{Title: "two", Year: 2021, Authors: []publication.Author{
			{Name: "Me", Highlighted: true, Affiliation: "Lab A"},
			{Name: "You", Affiliation: "Lab B"},
		}},
		{Title: "three", Year: 2022, Authors: []publication.Author{{Name: "Me", Affiliation: "Lab C"}}},
	}

	got := Build(pubs)

	me, _ := got.Node("Me")
	if !me.Highlighted {
		t.Error("Me should be highlighted")
	}
	if me.Affiliation != "Lab A" {
		t.Errorf("Me affiliation = %q, want first non-empty value Lab A", me.Affiliation)
	}
	you, _ := got.Node("You")
	if you.Highlighted {
		t.Error("You should not be highlighted")
	}

	h, ok := got.Highlighted()
	if !ok || h.Name != "Me" {
		t.Errorf("Highlighted() = %+v, %v; want Me", h, ok)
	}
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	pubs := []publication.Publication{
		{Title: "A", Year: 2020, Authors: authors("Y", "X", "Y")},
	}
	before := cmp.Diff(pubs, []publication.Publication{{Title: "A", Year: 2020, Authors: authors("Y", "X", "Y")}})
	if before != "" {
		t.Fatalf("fixture mismatch: %s", before)
	}

	_ = Build(pubs)

	if diff := cmp.Diff([]publication.Publication{{Title: "A", Year: 2020, Authors: authors("Y", "X", "Y")}}, pubs); diff != "" {
		t.Errorf("Build mutated input (-want +got):\n%s", diff)
	}
}

func TestStats(t *testing.T) {
	pubs := []publication.Publication{
		{Title: "A", Year: 2020, Authors: authors("X", "Y")},
		{Title: "B", Year: 2021, Authors: authors("X", "Y", "Z")},
	}
	got := Build(pubs).Stats()
	want := Stats{Nodes: 3, Edges: 3, MaxWeight: 2}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}
