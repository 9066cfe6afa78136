//go:build property
// +build property

package session

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/conneroisu/prerender/internal/component"
)

var pool = []*component.Descriptor{
	desc("x-a"), desc("x-b"), desc("x-c"), desc("x-d"), desc("x-e"),
}

// build replays a list of operations on a fresh session. Each op picks a
// descriptor from the pool and one of: number an instance, mark its type
// emitted, register it, or mint an anonymous name.
func build(ops []int) *Session {
	s := New(Config{})
	for _, op := range ops {
		d := pool[op%len(pool)]
		switch (op / len(pool)) % 4 {
		case 0:
			s.NextInstance(d)
		case 1:
			s.MarkTypeEmitted(d)
		case 2:
			_ = s.Register(d)
		default:
			s.NextAnonymousName()
		}
	}
	return s
}

// TestSessionMergeProperties checks the algebra of session merging.
func TestSessionMergeProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	opsGen := gen.SliceOf(gen.IntRange(0, 19))

	// Property: merge is associative over counters, sets, and the tag map
	properties.Property("merge associativity", prop.ForAll(
		func(a, b, c []int) bool {
			left := build(a).Merge(build(b)).Merge(build(c))
			right := build(a).Merge(build(b).Merge(build(c)))
			return reflect.DeepEqual(left.Snapshot(), right.Snapshot())
		},
		opsGen, opsGen, opsGen,
	))

	// Property: merged sessions number like one session replaying both
	properties.Property("merge equals shared session", prop.ForAll(
		func(a, b []int) bool {
			merged := build(a).Merge(build(b))
			shared := build(append(append([]int(nil), a...), b...))
			return reflect.DeepEqual(merged.Snapshot(), shared.Snapshot())
		},
		opsGen, opsGen,
	))

	properties.TestingRun(t)
}
