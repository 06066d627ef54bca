package snapshot

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func snap(pairs ...[2]string) *Snapshot {
	s := New()
	for _, p := range pairs {
		s.Set(p[0], p[1])
	}
	return s
}

func TestDiffAbsentPreviousReportsAllAdded(t *testing.T) {
	cur := snap([2]string{"x", "5"}, [2]string{"y", "6"})
	changes := Diff(nil, cur)
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	for _, c := range changes {
		if c.Op != OpAdded {
			t.Fatalf("expected added, got %v for %s", c.Op, c.Name)
		}
	}
	if changes[0].Name != "x" || changes[1].Name != "y" {
		t.Fatalf("insertion order not preserved: %+v", changes)
	}
}

func TestDiffChangeKinds(t *testing.T) {
	prev := snap([2]string{"a", "1"}, [2]string{"b", "2"}, [2]string{"gone", "9"})
	cur := snap([2]string{"a", "1"}, [2]string{"b", "3"}, [2]string{"c", "4"})

	byName := map[string]Change{}
	for _, c := range Diff(prev, cur) {
		byName[c.Name] = c
	}

	if byName["a"].Op != OpUnchanged {
		t.Fatalf("a should be unchanged, got %v", byName["a"].Op)
	}
	if c := byName["b"]; c.Op != OpChanged || c.Old != "2" || c.New != "3" {
		t.Fatalf("b should be changed 2->3, got %+v", c)
	}
	if byName["c"].Op != OpAdded {
		t.Fatalf("c should be added, got %v", byName["c"].Op)
	}
	if c := byName["gone"]; c.Op != OpRemoved || c.Old != "9" {
		t.Fatalf("gone should be removed with old value, got %+v", c)
	}
}

func TestDiffEqualityIsOnRenderedForm(t *testing.T) {
	// Two distinct bindings that render identically must not report as changed.
	prev := snap([2]string{"big", "[1, 2, 3]"})
	cur := snap([2]string{"big", "[1, 2, 3]"})
	for _, c := range Diff(prev, cur) {
		if c.Op != OpUnchanged {
			t.Fatalf("identical renderings must be unchanged, got %v", c.Op)
		}
	}
}

func TestWithoutUnchanged(t *testing.T) {
	prev := snap([2]string{"a", "1"}, [2]string{"b", "2"})
	cur := snap([2]string{"a", "1"}, [2]string{"b", "5"})
	visible := WithoutUnchanged(Diff(prev, cur))
	if len(visible) != 1 || visible[0].Name != "b" {
		t.Fatalf("suppression failed: %+v", visible)
	}
}

func TestRebindKeepsInsertionSlot(t *testing.T) {
	s := snap([2]string{"x", "1"}, [2]string{"y", "2"})
	s.Set("x", "3")
	names := s.Names()
	if names[0] != "x" || names[1] != "y" {
		t.Fatalf("rebinding must not move x: %v", names)
	}
}

func genBindings() gopter.Gen {
	return gen.MapOf(gen.Identifier(), gen.NumString())
}

func fromMap(m map[string]string) *Snapshot {
	s := New()
	for k, v := range m {
		s.Set(k, v)
	}
	return s
}

func TestDiffProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("diff against self is all unchanged", prop.ForAll(
		func(m map[string]string) bool {
			s := fromMap(m)
			for _, c := range Diff(s, s) {
				if c.Op != OpUnchanged {
					return false
				}
			}
			return true
		},
		genBindings(),
	))

	properties.Property("every current name is reported exactly once", prop.ForAll(
		func(prev, cur map[string]string) bool {
			seen := map[string]int{}
			for _, c := range Diff(fromMap(prev), fromMap(cur)) {
				seen[c.Name]++
			}
			for name := range cur {
				if seen[name] != 1 {
					return false
				}
			}
			return true
		},
		genBindings(),
		genBindings(),
	))

	properties.Property("removed entries are exactly prev minus cur", prop.ForAll(
		func(prev, cur map[string]string) bool {
			removed := map[string]bool{}
			for _, c := range Diff(fromMap(prev), fromMap(cur)) {
				if c.Op == OpRemoved {
					removed[c.Name] = true
				}
			}
			for name := range prev {
				_, inCur := cur[name]
				if removed[name] == inCur {
					return false
				}
			}
			return len(removed) <= len(prev)
		},
		genBindings(),
		genBindings(),
	))

	properties.TestingRun(t)
}
