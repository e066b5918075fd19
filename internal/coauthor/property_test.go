package coauthor

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/matsen/labsite/internal/publication"
)

// pubsFromIndexes turns generated author-index lists into publications drawn from a
// small name pool, so that collisions and repeated pairs are common.
func pubsFromIndexes(lists [][]int) []publication.Publication {
	pubs := make([]publication.Publication, len(lists))
	for i, idxs := range lists {
		as := make([]publication.Author, len(idxs))
		for j, k := range idxs {
			as[j] = publication.Author{
				Name:        fmt.Sprintf("Author %d", k),
				Highlighted: (i+j+k)%5 == 0,
			}
		}
		pubs[i] = publication.Publication{Title: fmt.Sprintf("Paper %d", i), Year: 2000 + i, Authors: as}
	}
	return pubs
}

// pairCounts counts, for each unordered pair of distinct names, the publications listing both.
func pairCounts(pubs []publication.Publication) map[[2]string]int {
	counts := make(map[[2]string]int)
	for _, p := range pubs {
		names := make(map[string]bool)
		for _, a := range p.Authors {
			names[a.Name] = true
		}
		for a := range names {
			for b := range names {
				if a < b {
					counts[[2]string{a, b}]++
				}
			}
		}
	}
	return counts
}

func TestBuildProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	pubsGen := gen.SliceOf(gen.SliceOf(gen.IntRange(0, 6)))

	properties.Property("node count equals distinct author names", prop.ForAll(
		func(lists [][]int) bool {
			pubs := pubsFromIndexes(lists)
			distinct := make(map[string]bool)
			for _, p := range pubs {
				for _, a := range p.Authors {
					distinct[a.Name] = true
				}
			}
			return len(Build(pubs).Nodes) == len(distinct)
		},
		pubsGen,
	))

	properties.Property("one edge per co-occurring pair, weighted by shared publications", prop.ForAll(
		func(lists [][]int) bool {
			pubs := pubsFromIndexes(lists)
			want := pairCounts(pubs)
			g := Build(pubs)
			if len(g.Edges) != len(want) {
				return false
			}
			for _, e := range g.Edges {
				if e.Source >= e.Target {
					return false
				}
				if want[[2]string{e.Source, e.Target}] != e.Weight || len(e.Publications) != e.Weight {
					return false
				}
			}
			return true
		},
		pubsGen,
	))

	properties.Property("highlighted iff any contributing record is highlighted", prop.ForAll(
		func(lists [][]int) bool {
			pubs := pubsFromIndexes(lists)
			flagged := make(map[string]bool)
			for _, p := range pubs {
				for _, a := range p.Authors {
					flagged[a.Name] = flagged[a.Name] || a.Highlighted
				}
			}
			for _, n := range Build(pubs).Nodes {
				if n.Highlighted != flagged[n.Name] {
					return false
				}
			}
			return true
		},
		pubsGen,
	))

	properties.Property("building twice gives identical graphs", prop.ForAll(
		func(lists [][]int) bool {
			return cmp.Equal(Build(pubsFromIndexes(lists)), Build(pubsFromIndexes(lists)))
		},
		pubsGen,
	))

	properties.TestingRun(t)
}
