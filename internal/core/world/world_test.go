package world

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/strata-ecs/strata/internal/core/events/bus"
	"github.com/strata-ecs/strata/internal/core/invariant"
	"github.com/strata-ecs/strata/internal/core/observability/log"
)

func TestSpawnCreatesArchetypesOnce(t *testing.T) {
	w := New()

	e1, err := w.Spawn("Position", "Velocity")
	require.NoError(t, err)
	e2, err := w.Spawn("Velocity", "Position")
	require.NoError(t, err)
	assert.NotEqual(t, e1, e2)

	// Same component combination, one archetype.
	assert.Equal(t, 1, w.ArchetypeCount())
	assert.Equal(t, 2, w.EntityCount())

	_, err = w.Spawn("Position")
	require.NoError(t, err)
	assert.Equal(t, 2, w.ArchetypeCount())
}

func TestRetroactiveRecheckThroughWorld(t *testing.T) {
	w := New()

	// Archetypes {A} and {A,B,C} exist with no rules: all fine.
	_, err := w.Spawn("A")
	require.NoError(t, err)
	_, err = w.Spawn("A", "B", "C")
	require.NoError(t, err)
	require.NoError(t, w.Err())

	// The rule arrives late and must flag the pre-existing {A}.
	err = w.AddInvariant(invariant.TypedFullBundle(invariant.Bundle{"A", "B", "C"}))
	require.Error(t, err)
	assert.True(t, invariant.IsViolation(err))
	assert.True(t, errors.Is(err, invariant.ErrInvariantViolated))

	var ve *invariant.ViolationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 0, ve.ArchetypeIndex)
}

func TestNoRecheckOnArchetypeReuse(t *testing.T) {
	w := New()

	require.NoError(t, w.AddInvariant(invariant.TypedFullBundle(invariant.Bundle{"A", "B", "C"})))

	full, err := w.Spawn("A", "B", "C")
	require.NoError(t, err)
	_, err = w.Spawn("D")
	require.NoError(t, err)

	cursor := w.Cursor()
	require.Equal(t, 2, cursor)

	// Removing and re-adding D's components moves the entity between
	// archetypes including a brand-new {} one; count the passes via
	// the cursor: only genuinely new schemas move it.
	require.NoError(t, w.Insert(full, "D")) // new schema {A,B,C,D}
	assert.Equal(t, 3, w.Cursor())

	require.NoError(t, w.Remove(full, "D")) // back to existing {A,B,C}
	require.NoError(t, w.Insert(full, "D")) // {A,B,C,D} exists now
	require.NoError(t, w.Remove(full, "D"))
	assert.Equal(t, 3, w.Cursor())
	assert.Equal(t, 3, w.ArchetypeCount())
}

func TestInsertTriggersValidationOnNewSchemaOnly(t *testing.T) {
	w := New()
	require.NoError(t, w.AddInvariant(invariant.TypedFullBundle(invariant.Bundle{"A", "B"})))

	e, err := w.Spawn("A", "B")
	require.NoError(t, err)

	// Removing B creates schema {A}, which breaks the bundle.
	err = w.Remove(e, "B")
	require.Error(t, err)
	assert.True(t, invariant.IsViolation(err))
}

func TestViolationPoisonsWorld(t *testing.T) {
	w := New()

	_, err := w.Spawn("A")
	require.NoError(t, err)

	violation := w.AddInvariant(invariant.TypedFullBundle(invariant.Bundle{"A", "B"}))
	require.Error(t, violation)
	assert.Equal(t, violation, w.Err())

	// Every further operation returns the original violation.
	_, err = w.Spawn("C")
	assert.Equal(t, violation, err)
	assert.Equal(t, violation, w.Despawn(1))
	assert.Equal(t, violation, w.Insert(1, "B"))
	assert.Equal(t, violation, w.AddInvariant(invariant.FullBundle(nil)))
	assert.Equal(t, violation, w.RunPendingChecks())
}

func TestDespawnKeepsArchetype(t *testing.T) {
	w := New()

	e, err := w.Spawn("A")
	require.NoError(t, err)
	require.NoError(t, w.Despawn(e))
	assert.Equal(t, 0, w.EntityCount())
	assert.Equal(t, 1, w.ArchetypeCount())

	// The empty archetype still represents a schema: a late rule must
	// check it.
	err = w.AddInvariant(invariant.TypedFullBundle(invariant.Bundle{"A", "B"}))
	require.Error(t, err)
	assert.True(t, invariant.IsViolation(err))
}

func TestDespawnUnknownEntity(t *testing.T) {
	w := New()
	assert.Error(t, w.Despawn(42))
	assert.Error(t, w.Insert(42, "A"))
	assert.Error(t, w.Remove(42, "A"))
}

func TestInsertRemoveNoOps(t *testing.T) {
	w := New()
	e, err := w.Spawn("A")
	require.NoError(t, err)

	// Adding a component the entity already has, or removing one it
	// lacks, changes nothing.
	require.NoError(t, w.Insert(e, "A"))
	require.NoError(t, w.Remove(e, "B"))
	assert.Equal(t, 1, w.ArchetypeCount())
}

func TestCursorMonotonicUnderMixedOps(t *testing.T) {
	w := New()

	checkBounds := func() {
		c := w.Cursor()
		assert.GreaterOrEqual(t, c, 0)
		assert.LessOrEqual(t, c, w.ArchetypeCount())
	}

	_, err := w.Spawn("A")
	require.NoError(t, err)
	checkBounds()

	require.NoError(t, w.AddInvariant(invariant.TypedFullBundle(invariant.Bundle{"A"})))
	checkBounds()
	assert.Equal(t, w.ArchetypeCount(), w.Cursor())

	_, err = w.Spawn("A", "B")
	require.NoError(t, err)
	checkBounds()
}

func TestAdvisoryEvaluatesLikeAllOf(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	w := New(WithLogger(log.FromZap(zap.New(core))))

	// Registering AtLeastOneOf({A}) alone emits the advisory.
	err := w.AddInvariant(invariant.TypedInvariant{
		Predicate:   invariant.TypedStatement{Kind: invariant.KindAtLeastOneOf, Bundle: invariant.Bundle{"A"}},
		Consequence: invariant.TypedStatement{Kind: invariant.KindAllOf, Bundle: invariant.Bundle{"A"}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterMessageSnippet("prefer the equivalent all_of").Len())

	// It behaves exactly like AllOf({A}) => AllOf({A}): every
	// archetype either lacks A (trivially fine) or has it.
	_, err = w.Spawn("A")
	require.NoError(t, err)
	_, err = w.Spawn("B")
	require.NoError(t, err)
	_, err = w.Spawn("A", "B")
	require.NoError(t, err)
	assert.NoError(t, w.Err())
}

func TestWorldEvents(t *testing.T) {
	w := New()

	var created []ArchetypeEvent
	var added int
	var violated int
	w.Bus().Subscribe(bus.TypeArchetypeCreated, func(e bus.Event) error {
		created = append(created, e.Data.(ArchetypeEvent))
		return nil
	})
	w.Bus().Subscribe(bus.TypeInvariantAdded, func(e bus.Event) error {
		added++
		return nil
	})
	w.Bus().Subscribe(bus.TypeInvariantViolated, func(e bus.Event) error {
		violated++
		return nil
	})

	e, err := w.Spawn("A")
	require.NoError(t, err)
	_, err = w.Spawn("A")
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, 0, created[0].Index)
	assert.Equal(t, "{A}", created[0].Components)

	// Moving between existing archetypes publishes no creation event.
	require.NoError(t, w.Insert(e, "B"))
	require.Len(t, created, 2)
	require.NoError(t, w.Remove(e, "B"))
	require.Len(t, created, 2)

	err = w.AddInvariant(invariant.TypedFullBundle(invariant.Bundle{"A", "Z"}))
	require.Error(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, violated)
}

func TestParallelWorldChecks(t *testing.T) {
	w := New(WithCheckWorkers(8))

	for i := 0; i < 50; i++ {
		_, err := w.Spawn("A", string(rune('a'+i)))
		require.NoError(t, err)
	}
	err := w.AddInvariant(invariant.TypedFullBundle(invariant.Bundle{"A", "B"}))
	require.Error(t, err)

	var ve *invariant.ViolationError
	require.ErrorAs(t, err, &ve)
	// Every archetype violates; the parallel pass must still report
	// the lowest index.
	assert.Equal(t, 0, ve.ArchetypeIndex)
}
