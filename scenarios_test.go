package vellum

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	t.Run("basic snapshot isolation", func(t *testing.T) {
		t.Parallel()

		root := NewRoot[string, string](NewMemoryBackend[string, string]())
		require.NoError(t, root.Create("a", "V1"))
		require.True(t, root.Commit().Success)

		tx1, err := root.CreateNested()
		require.NoError(t, err)
		tx2, err := root.CreateNested()
		require.NoError(t, err)

		require.NoError(t, tx1.Delete("a"))
		require.True(t, tx1.Commit().Success)

		v, ok, err := tx2.Read("a")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "V1", v)

		require.True(t, tx2.Commit().Success)

		tx3, err := root.CreateNested()
		require.NoError(t, err)
		_, ok, err = tx3.Read("a")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("write-write conflict", func(t *testing.T) {
		t.Parallel()

		root := NewRoot[string, string](NewMemoryBackend[string, string]())
		require.NoError(t, root.Create("x", "0"))
		require.True(t, root.Commit().Success)

		tx1, err := root.CreateNested()
		require.NoError(t, err)
		tx2, err := root.CreateNested()
		require.NoError(t, err)

		require.NoError(t, tx1.Write("x", "A"))
		res1 := tx1.Commit()
		require.True(t, res1.Success)

		require.NoError(t, tx2.Write("x", "B"))
		res2 := tx2.Commit()
		require.False(t, res2.Success)
		require.Equal(t, KindConflict, res2.Err.Kind)
		require.Equal(t, "x", res2.ConflictDetail.Key)
	})

	t.Run("nested strict isolation from parent buffers", func(t *testing.T) {
		t.Parallel()

		root := NewRoot[string, string](NewMemoryBackend[string, string]())
		require.NoError(t, root.Create("k", "committed"))
		require.True(t, root.Commit().Success)

		parent, err := root.CreateNested()
		require.NoError(t, err)
		require.NoError(t, parent.Write("k", "uncommitted"))

		child, err := parent.CreateNested()
		require.NoError(t, err)

		v, ok, err := child.Read("k")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "committed", v)
	})

	t.Run("long reader over 50 writes", func(t *testing.T) {
		t.Parallel()

		root := NewRoot[string, string](NewMemoryBackend[string, string]())
		require.NoError(t, root.Create("h", "G0"))
		require.True(t, root.Commit().Success)

		reader, err := root.CreateNested()
		require.NoError(t, err)

		for i := 1; i <= 50; i++ {
			w, err := root.CreateNested()
			require.NoError(t, err)
			require.NoError(t, w.Write("h", "G"+strconv.Itoa(i)))
			require.True(t, w.Commit().Success)
		}

		backendVal, ok, err := root.Read("h")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "G50", backendVal)

		readerVal, ok, err := reader.Read("h")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "G0", readerVal)
	})

	t.Run("create-then-delete is a no-op in reporting", func(t *testing.T) {
		t.Parallel()

		root := NewRoot[string, string](NewMemoryBackend[string, string]())
		nested, err := root.CreateNested()
		require.NoError(t, err)

		require.NoError(t, nested.Create("new", "v"))
		require.NoError(t, nested.Delete("new"))

		res := nested.Commit()
		require.True(t, res.Success)
		require.Empty(t, res.Created)
		require.Empty(t, res.Deleted)
	})

	t.Run("accumulating results up the chain", func(t *testing.T) {
		t.Parallel()

		root := NewRoot[string, string](NewMemoryBackend[string, string]())
		a, err := root.CreateNested()
		require.NoError(t, err)
		b, err := a.CreateNested()
		require.NoError(t, err)
		c, err := b.CreateNested()
		require.NoError(t, err)

		require.NoError(t, c.Create("C", "v"))
		require.True(t, c.Commit().Success)

		require.NoError(t, b.Create("B", "v"))
		resB := b.Commit()
		require.True(t, resB.Success)
		require.Len(t, resB.Created, 2)
	})

	t.Run("accumulating results with rollback", func(t *testing.T) {
		t.Parallel()

		root := NewRoot[string, string](NewMemoryBackend[string, string]())
		a, err := root.CreateNested()
		require.NoError(t, err)
		b, err := a.CreateNested()
		require.NoError(t, err)
		c, err := b.CreateNested()
		require.NoError(t, err)

		require.NoError(t, c.Create("C", "v"))
		require.True(t, c.Rollback().Success)

		require.NoError(t, b.Create("B", "v"))
		resB := b.Commit()
		require.True(t, resB.Success)
		require.Len(t, resB.Created, 1)
		require.Equal(t, "B", resB.Created[0].Key)
	})
}
