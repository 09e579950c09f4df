package memory

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_EmptyTree(t *testing.T) {
	tr := NewTree[int]()

	_, ok := tr.Search("E_1")
	assert.False(t, ok)
	assert.False(t, tr.Delete("E_1"))
	assert.Equal(t, 0, tr.Len())
	assert.Equal(t, 0, tr.Height())
	assert.Equal(t, 0, tr.Destroy())
	assert.Empty(t, tr.Keys())
}

func TestTree_InsertSearchRoundTrip(t *testing.T) {
	tr := NewTree[string]()
	keys := []string{"E_5", "E_2", "E_8", "T_2_a1", "E_1", "T_8_h500"}
	for _, k := range keys {
		require.True(t, tr.Insert(k, "v:"+k))
	}

	for _, k := range keys {
		v, ok := tr.Search(k)
		require.True(t, ok, k)
		assert.Equal(t, "v:"+k, v)
	}
	assert.Equal(t, len(keys), tr.Len())
}

func TestTree_InsertDuplicateKeepsExisting(t *testing.T) {
	tr := NewTree[string]()

	assert.True(t, tr.Insert("K", "A"))
	assert.False(t, tr.Insert("K", "B"))

	v, ok := tr.Search("K")
	require.True(t, ok)
	assert.Equal(t, "A", v)
	assert.Equal(t, 1, tr.Len())
}

func TestTree_DeleteLeafSingleChildTwoChildren(t *testing.T) {
	//        m
	//      /   \
	//     f     t
	//    / \     \
	//   c   h     w
	tr := NewTree[int]()
	for i, k := range []string{"m", "f", "t", "c", "h", "w"} {
		tr.Insert(k, i)
	}

	// leaf
	require.True(t, tr.Delete("c"))
	assert.Equal(t, []string{"f", "h", "m", "t", "w"}, tr.Keys())

	// single child
	require.True(t, tr.Delete("t"))
	assert.Equal(t, []string{"f", "h", "m", "w"}, tr.Keys())
	assert.Equal(t, "w", tr.root.right.key)

	// two children at the root: successor "w" moves up
	tr.Insert("p", 9)
	require.True(t, tr.Delete("m"))
	assert.Equal(t, "p", tr.root.key)
	assert.Equal(t, []string{"f", "h", "p", "w"}, tr.Keys())

	v, ok := tr.Search("p")
	require.True(t, ok)
	assert.Equal(t, 9, v)

	assert.False(t, tr.Delete("m"))
	assert.Equal(t, 4, tr.Len())
}

func TestTree_DeleteIsIdempotent(t *testing.T) {
	tr := NewTree[int]()
	tr.Insert("E_1", 1)
	tr.Insert("E_2", 2)

	assert.True(t, tr.Delete("E_1"))
	assert.False(t, tr.Delete("E_1"))
	assert.False(t, tr.Delete("E_3"))

	_, ok := tr.Search("E_1")
	assert.False(t, ok)
	assert.Equal(t, []string{"E_2"}, tr.Keys())
}

func TestTree_InOrderAfterRandomOperations(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	tr := NewTree[int]()
	live := map[string]int{}

	for i := 0; i < 2000; i++ {
		key := fmt.Sprintf("T_%d_c%d", r.IntN(20), r.IntN(60))
		if r.IntN(3) == 0 {
			tr.Delete(key)
			delete(live, key)
		} else {
			if tr.Insert(key, i) {
				live[key] = i
			}
		}

		if i%100 == 0 {
			keys := tr.Keys()
			assert.True(t, sort.StringsAreSorted(keys))
			assert.Equal(t, len(live), tr.Len())
		}
	}

	want := make([]string, 0, len(live))
	for k := range live {
		want = append(want, k)
	}
	slices.Sort(want)
	assert.Equal(t, want, tr.Keys())

	for k, v := range live {
		got, ok := tr.Search(k)
		require.True(t, ok)
		assert.Equal(t, v, got)
	}
}

func TestTree_AllStopsEarly(t *testing.T) {
	tr := NewTree[int]()
	for i, k := range []string{"b", "a", "c", "d"} {
		tr.Insert(k, i)
	}

	var seen []string
	for k := range tr.All() {
		seen = append(seen, k)
		if k == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestTree_DegenerateChain(t *testing.T) {
	tr := NewTree[int]()
	const n = 5000
	for i := 0; i < n; i++ {
		tr.Insert(fmt.Sprintf("E_%08d", i), i)
	}

	assert.Equal(t, n, tr.Height())
	assert.Len(t, tr.Keys(), n)
	assert.True(t, tr.Delete("E_00000000"))
	assert.Equal(t, n, tr.Destroy()+1)
}

func TestTree_DestroyLeavesReusableTree(t *testing.T) {
	tr := NewTree[int]()
	for i, k := range []string{"m", "f", "t", "c", "h", "w"} {
		tr.Insert(k, i)
	}

	assert.Equal(t, 6, tr.Destroy())
	assert.Equal(t, 0, tr.Len())
	assert.Nil(t, tr.root)
	assert.Equal(t, 0, tr.Destroy())

	assert.True(t, tr.Insert("a", 1))
	assert.Equal(t, []string{"a"}, tr.Keys())
}
