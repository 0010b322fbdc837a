package repository

import "hash/fnv"

// Order-statistic treap over (points DESC, userID ASC). In-order traversal
// yields the leaderboard from best to worst; subtree sizes give ranks.

type node struct {
	id     string
	points int
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	n.size = 1 + nsize(n.left) + nsize(n.right)
}

// before reports whether (aPts, aID) ranks ahead of (bPts, bID).
func before(aPts int, aID string, bPts int, bID string) bool {
	if aPts != bPts {
		return aPts > bPts
	}
	return aID < bID
}

// priority derives a stable heap priority from the id so the tree shape does
// not depend on insertion order.
func priority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, points int) *node {
	if n == nil {
		return &node{id: id, points: points, prio: priority(id), size: 1}
	}
	if before(points, id, n.points, n.id) {
		n.left = insert(n.left, id, points)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, points)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func remove(n *node, id string, points int) *node {
	if n == nil {
		return nil
	}
	switch {
	case n.id == id && n.points == points:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = remove(n.right, id, points)
		} else {
			n = rotateLeft(n)
			n.left = remove(n.left, id, points)
		}
	case before(points, id, n.points, n.id):
		n.left = remove(n.left, id, points)
	default:
		n.right = remove(n.right, id, points)
	}
	fix(n)
	return n
}

// rankOf returns the 1-based position of (id, points), assuming it is present.
func rankOf(n *node, id string, points int) int {
	rank := 0
	for n != nil {
		switch {
		case n.id == id && n.points == points:
			return rank + nsize(n.left) + 1
		case before(points, id, n.points, n.id):
			n = n.left
		default:
			rank += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0
}

// collect appends up to limit nodes in rank order.
func collect(n *node, limit int, out *[]*node) {
	if n == nil || len(*out) >= limit {
		return
	}
	collect(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n)
	}
	collect(n.right, limit, out)
}
