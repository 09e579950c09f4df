package memory

import (
	"iter"
	"strings"
)

type node[V any] struct {
	key   string
	value V
	left  *node[V]
	right *node[V]
}

// Tree is an unbalanced binary search tree keyed by strings in byte-wise
// order. It is not safe for concurrent use.
type Tree[V any] struct {
	root *node[V]
	size int
}

func NewTree[V any]() *Tree[V] {
	return &Tree[V]{}
}

// Len returns the number of keys in the tree.
func (t *Tree[V]) Len() int {
	return t.size
}

// Insert adds key with value v. If key is already present the tree is left
// unchanged, the existing value is kept and Insert reports false.
func (t *Tree[V]) Insert(key string, v V) bool {
	link := &t.root
	for *link != nil {
		n := *link
		switch c := strings.Compare(key, n.key); {
		case c < 0:
			link = &n.left
		case c > 0:
			link = &n.right
		default:
			return false
		}
	}

	*link = &node[V]{key: key, value: v}
	t.size++
	return true
}

// Search returns the value stored under key.
func (t *Tree[V]) Search(key string) (V, bool) {
	n := t.root
	for n != nil {
		switch c := strings.Compare(key, n.key); {
		case c < 0:
			n = n.left
		case c > 0:
			n = n.right
		default:
			return n.value, true
		}
	}

	var zero V
	return zero, false
}

// Delete removes key and reports whether it was present. A node with two
// children takes over the key and value of its in-order successor, and the
// successor node is unlinked instead.
func (t *Tree[V]) Delete(key string) bool {
	link := &t.root
	for *link != nil {
		n := *link
		switch c := strings.Compare(key, n.key); {
		case c < 0:
			link = &n.left
		case c > 0:
			link = &n.right
		default:
			switch {
			case n.left == nil:
				*link = n.right
			case n.right == nil:
				*link = n.left
			default:
				succ := &n.right
				for (*succ).left != nil {
					succ = &(*succ).left
				}
				s := *succ
				n.key, n.value = s.key, s.value
				// successor has no left child
				*succ = s.right
			}
			t.size--
			return true
		}
	}

	return false
}

// Ascend calls fn for every entry in ascending key order until fn returns
// false. fn must not modify the tree.
func (t *Tree[V]) Ascend(fn func(key string, v V) bool) {
	var stack []*node[V]
	n := t.root
	for n != nil || len(stack) > 0 {
		for n != nil {
			stack = append(stack, n)
			n = n.left
		}
		n = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n.key, n.value) {
			return
		}
		n = n.right
	}
}

// All returns an iterator over the tree in ascending key order.
func (t *Tree[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		t.Ascend(yield)
	}
}

// Keys returns all keys in ascending order.
func (t *Tree[V]) Keys() []string {
	keys := make([]string, 0, t.size)
	t.Ascend(func(key string, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (t *Tree[V]) Height() int {
	if t.root == nil {
		return 0
	}

	type level struct {
		n     *node[V]
		depth int
	}

	height := 0
	stack := []level{{t.root, 1}}
	for len(stack) > 0 {
		l := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if l.depth > height {
			height = l.depth
		}
		if l.n.left != nil {
			stack = append(stack, level{l.n.left, l.depth + 1})
		}
		if l.n.right != nil {
			stack = append(stack, level{l.n.right, l.depth + 1})
		}
	}

	return height
}

// Destroy releases every node, children before parents, and leaves an
// empty tree ready for reuse. It returns the number of released nodes.
func (t *Tree[V]) Destroy() int {
	released := 0

	var stack []*node[V]
	var last *node[V]
	n := t.root
	for n != nil || len(stack) > 0 {
		if n != nil {
			stack = append(stack, n)
			n = n.left
			continue
		}

		top := stack[len(stack)-1]
		if top.right != nil && top.right != last {
			n = top.right
			continue
		}

		stack = stack[:len(stack)-1]
		top.left, top.right = nil, nil
		var zero V
		top.value = zero
		released++
		last = top
	}

	t.root = nil
	t.size = 0
	return released
}
