package util

import (
	"iter"

	"github.com/hashicorp/go-set/v3"
)

// SetFromSeq collects s into a set, sized for size items
func SetFromSeq[V comparable](s iter.Seq[V], size int) *set.Set[V] {
	newSet := set.New[V](size)
	for item := range s {
		newSet.Insert(item)
	}
	return newSet
}
