package invariant

import (
	"testing"

	"github.com/strata-ecs/strata/internal/core/archetype"
	"github.com/strata-ecs/strata/internal/core/component"
)

func benchFixture(archetypes, rules int) (*Registry, *archetype.List) {
	reg := NewRegistry(nil)
	list := archetype.NewList()
	for i := 0; i < archetypes; i++ {
		id := component.ID(i)
		list.GetOrCreate(component.NewSet(id, id+1, id+2))
	}
	for i := 0; i < rules; i++ {
		id := component.ID(i * 3)
		reg.Add(Invariant{
			Predicate:   AllOf(component.NewSet(id)),
			Consequence: AtLeastOneOf(component.NewSet(id, 1<<20)),
		})
	}
	return reg, list
}

func BenchmarkCheckPass(b *testing.B) {
	reg, list := benchFixture(256, 32)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.lastChecked = 0
		if err := reg.CheckPass(list); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCheckPassParallel(b *testing.B) {
	reg, list := benchFixture(256, 32)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.lastChecked = 0
		if err := reg.CheckPassParallel(list, 8); err != nil {
			b.Fatal(err)
		}
	}
}
