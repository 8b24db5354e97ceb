package genotype

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oozebots/internal/model"
)

func newTestOperators(seed int64) Operators {
	return NewOperators(rand.New(rand.NewSource(seed)), NewIDSource(1))
}

func TestRandomEncodingInvariants(t *testing.T) {
	ops := newTestOperators(7)
	var lastID uint64
	for i := 0; i < 300; i++ {
		enc := ops.RandomEncoding()
		require.NoError(t, Validate(enc), "encoding %d", i)
		assert.Greater(t, enc.ID, lastID)
		lastID = enc.ID
		assert.Nil(t, enc.Body.Anchor)
	}
}

func TestRandomEncodingSamplesBothBoxModes(t *testing.T) {
	ops := newTestOperators(11)
	unitA, stillB := 0, 0
	total := 0
	for i := 0; i < 200; i++ {
		enc := ops.RandomEncoding()
		for _, box := range enc.Boxes {
			total++
			if box.A == 1 {
				unitA++
			}
			if box.B == 0 {
				stillB++
			}
		}
	}
	assert.InDelta(t, 0.5, float64(unitA)/float64(total), 0.05)
	assert.InDelta(t, 0.2, float64(stillB)/float64(total), 0.05)
}

func TestRandomEncodingGrowthMix(t *testing.T) {
	ops := newTestOperators(3)
	symmetry, lay := 0, 0
	for i := 0; i < 200; i++ {
		enc := ops.RandomEncoding()
		for _, cmd := range enc.Growth {
			switch cmd.(type) {
			case model.SymmetryScope:
				symmetry++
			case model.LayBlockAndMoveCursor:
				lay++
			}
		}
	}
	assert.InDelta(t, 0.4, float64(symmetry)/float64(symmetry+lay), 0.05)
}

func TestMateIdenticalParentsCopiesGenes(t *testing.T) {
	ops := newTestOperators(21)
	parent := ops.RandomEncoding()
	for i := 0; i < 50; i++ {
		child := ops.Mate(parent, parent)
		assert.NotEqual(t, parent.ID, child.ID)
		if diff := cmp.Diff(parent.Boxes, child.Boxes); diff != "" {
			t.Fatalf("boxes differ (-parent +child):\n%s", diff)
		}
		if diff := cmp.Diff(parent.Sequences, child.Sequences); diff != "" {
			t.Fatalf("sequences differ (-parent +child):\n%s", diff)
		}
		if diff := cmp.Diff(parent.Growth, child.Growth); diff != "" {
			t.Fatalf("growth differs (-parent +child):\n%s", diff)
		}
		if diff := cmp.Diff(parent.Body, child.Body); diff != "" {
			t.Fatalf("body differs (-parent +child):\n%s", diff)
		}
		assert.Equal(t, parent.GlobalTimeInterval, child.GlobalTimeInterval)
	}
}

func TestMateTakesContiguousWindowFromSecondParent(t *testing.T) {
	ops := newTestOperators(5)
	p1 := ops.RandomEncoding()
	p2 := ops.RandomEncoding()
	for i := range p1.Growth {
		p1.Growth[i] = model.SymmetryScope{Axis: model.AxisX}
		p2.Growth[i] = model.SymmetryScope{Axis: model.AxisZ}
	}

	for n := 0; n < 100; n++ {
		child := ops.Mate(p1, p2)
		first, last := -1, -1
		for i, cmd := range child.Growth {
			if cmd.(model.SymmetryScope).Axis == model.AxisZ {
				if first < 0 {
					first = i
				}
				last = i
			}
		}
		require.GreaterOrEqual(t, first, 0, "window must not be empty")
		assert.GreaterOrEqual(t, last-first, 1, "split points are distinct")
		for i := first; i <= last; i++ {
			assert.Equal(t, model.AxisZ, child.Growth[i].(model.SymmetryScope).Axis)
		}
		assert.Equal(t, p1.GlobalTimeInterval, child.GlobalTimeInterval)
		assert.Equal(t, p1.Body, child.Body)
	}
}

func TestMateChildValidatesAndDoesNotAliasParents(t *testing.T) {
	ops := newTestOperators(13)
	for n := 0; n < 100; n++ {
		p1 := ops.RandomEncoding()
		p2 := ops.RandomEncoding()
		before := Clone(p2)
		child := ops.Mate(p1, p2)
		require.NoError(t, Validate(child))

		for i := range child.Sequences {
			child.Sequences[i][0].BlockIdx = (child.Sequences[i][0].BlockIdx + 1) % model.NumBoxes
		}
		if diff := cmp.Diff(before, p2); diff != "" {
			t.Fatalf("parent mutated through child (-before +after):\n%s", diff)
		}
	}
}

func TestMutateChangesAtMostOneGene(t *testing.T) {
	ops := newTestOperators(99)
	kinds := map[MutationKind]int{}
	for n := 0; n < 2000; n++ {
		enc := ops.RandomEncoding()
		before := Clone(enc)
		mutated, rec := ops.MutateWithRecord(enc)
		kinds[rec.Kind]++

		require.NoError(t, Validate(mutated))
		require.Equal(t, enc.ID, mutated.ID)
		if diff := cmp.Diff(before, enc); diff != "" {
			t.Fatalf("input encoding modified (-before +after):\n%s", diff)
		}
		for i := range enc.Sequences {
			require.Len(t, mutated.Sequences[i], len(enc.Sequences[i]))
		}

		changed := changedGenes(enc, mutated)
		require.LessOrEqual(t, len(changed), 1, "mutation %+v changed %v", rec, changed)
		if len(changed) == 1 {
			assert.Equal(t, rec.Kind, changed[0], "mutation %+v", rec)
		}
	}
	for _, kind := range []MutationKind{MutateBody, MutateTimeInterval, MutateBox, MutateSequenceStep, MutateGrowthCommand} {
		assert.Positive(t, kinds[kind], "kind %s never drawn", kind)
	}
}

func TestMutateKeepsBodyRadiusInRange(t *testing.T) {
	ops := newTestOperators(4)
	enc := ops.RandomEncoding()
	enc.Body.Radius = 0
	for n := 0; n < 5000; n++ {
		enc = ops.Mutate(enc)
		require.GreaterOrEqual(t, enc.Body.Radius, 0)
		require.LessOrEqual(t, enc.Body.Radius, model.MaxRadius)
	}
}

func TestMutateNeverProducesZeroAnchor(t *testing.T) {
	ops := newTestOperators(8)
	enc := ops.RandomEncoding()
	for i := range enc.Growth {
		enc.Growth[i] = model.LayBlockAndMoveCursor{
			LayAndMoveIdx:       i % model.NumSequences,
			ThicknessIgnoreAxis: model.AxisNone,
			Anchor:              &model.Anchor{X: 1},
		}
	}
	for n := 0; n < 5000; n++ {
		enc = ops.Mutate(enc)
		for i, cmd := range enc.Growth {
			lay := cmd.(model.LayBlockAndMoveCursor)
			require.NotNil(t, lay.Anchor)
			require.False(t, lay.Anchor.IsZero(), "growth %d after %d mutations", i, n)
		}
	}
}

func TestIDSourceConcurrentUnique(t *testing.T) {
	ids := NewIDSource(10)
	const workers, perWorker = 8, 500
	out := make(chan uint64, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				out <- ids.Next()
			}
		}()
	}
	wg.Wait()
	close(out)

	seen := map[uint64]struct{}{}
	for id := range out {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %d", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, uint64(10+workers*perWorker), ids.Peek())
}

func TestValidateRejectsMalformed(t *testing.T) {
	ops := newTestOperators(1)

	enc := ops.RandomEncoding()
	enc.Sequences[2] = nil
	assert.ErrorIs(t, Validate(enc), ErrInvalidEncoding)

	enc = ops.RandomEncoding()
	enc.Boxes[0].B, enc.Boxes[5].B = 0, 0.5
	assert.ErrorIs(t, Validate(enc), ErrInvalidEncoding)

	enc = ops.RandomEncoding()
	enc.Growth[0] = model.LayBlockAndMoveCursor{Anchor: &model.Anchor{}}
	assert.ErrorIs(t, Validate(enc), ErrInvalidEncoding)

	enc = ops.RandomEncoding()
	enc.Body.Anchor = &model.Anchor{X: 1}
	assert.ErrorIs(t, Validate(enc), ErrInvalidEncoding)
}

// changedGenes lists the gene groups that differ between a and b. Boxes are
// compared as a multiset because mutation re-sorts them.
func changedGenes(a, b model.Encoding) []MutationKind {
	var out []MutationKind
	if !cmp.Equal(a.Body, b.Body) {
		out = append(out, MutateBody)
	}
	if a.GlobalTimeInterval != b.GlobalTimeInterval {
		out = append(out, MutateTimeInterval)
	}
	missing := 0
	remaining := append([]model.BoxDeclaration(nil), a.Boxes[:]...)
	for _, box := range b.Boxes {
		found := false
		for i, candidate := range remaining {
			if candidate == box {
				remaining = append(remaining[:i], remaining[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			missing++
		}
	}
	if missing > 1 {
		out = append(out, MutateBox, MutateBox)
	} else if missing == 1 {
		out = append(out, MutateBox)
	}
	steps := 0
	for i := range a.Sequences {
		for j := range a.Sequences[i] {
			if a.Sequences[i][j] != b.Sequences[i][j] {
				steps++
			}
		}
	}
	for ; steps > 0; steps-- {
		out = append(out, MutateSequenceStep)
	}
	for i := range a.Growth {
		if !cmp.Equal(a.Growth[i], b.Growth[i]) {
			out = append(out, MutateGrowthCommand)
		}
	}
	return out
}
