// Package leaderboard provides an ordered score index with logarithmic rank
// queries. The internal representation is a treap keyed by (score, id) with
// subtree sizes; the observable contract is Update / Remove / Rank, with
// higher scores ranking first and ties broken by lower entity id.
package leaderboard

import (
	"math/rand"
	"sync"
)

// Entry is one (entity, score) pair with its 1-based rank.
type Entry struct {
	ID    uint64 `json:"id"`
	Score int64  `json:"score"`
	Rank  int    `json:"rank"`
}

type node struct {
	id    uint64
	score int64
	prio  uint64
	size  int
	left  *node
	right *node
}

// Board is one leaderboard. Writers are serialized by the internal lock;
// readers may snapshot. The rank of an entity is defined iff its score has
// been set at least once and not removed.
type Board struct {
	mu     sync.RWMutex
	root   *node
	scores map[uint64]int64
}

// New returns an empty board.
func New() *Board {
	return &Board{scores: make(map[uint64]int64)}
}

// before reports whether (s1, i1) orders before (s2, i2): higher score first,
// ties broken by lower id.
func before(s1 int64, i1 uint64, s2 int64, i2 uint64) bool {
	if s1 != s2 {
		return s1 > s2
	}
	return i1 < i2
}

func size(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func (n *node) update() *node {
	n.size = 1 + size(n.left) + size(n.right)
	return n
}

func insert(root, n *node) *node {
	if root == nil {
		return n.update()
	}
	if n.prio > root.prio {
		n.left, n.right = split(root, n.score, n.id)
		return n.update()
	}
	if before(n.score, n.id, root.score, root.id) {
		root.left = insert(root.left, n)
	} else {
		root.right = insert(root.right, n)
	}
	return root.update()
}

// split partitions root into nodes ordering before (score, id) and the rest.
func split(root *node, score int64, id uint64) (*node, *node) {
	if root == nil {
		return nil, nil
	}
	if before(root.score, root.id, score, id) {
		l, r := split(root.right, score, id)
		root.right = l
		return root.update(), r
	}
	l, r := split(root.left, score, id)
	root.left = r
	return l, root.update()
}

func merge(l, r *node) *node {
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	if l.prio > r.prio {
		l.right = merge(l.right, r)
		return l.update()
	}
	r.left = merge(l, r.left)
	return r.update()
}

func erase(root *node, score int64, id uint64) *node {
	if root == nil {
		return nil
	}
	if root.score == score && root.id == id {
		return merge(root.left, root.right)
	}
	if before(score, id, root.score, root.id) {
		root.left = erase(root.left, score, id)
	} else {
		root.right = erase(root.right, score, id)
	}
	return root.update()
}

// rankOf returns the 0-based in-order position of (score, id), or -1.
func rankOf(root *node, score int64, id uint64) int {
	pos := 0
	for root != nil {
		if root.score == score && root.id == id {
			return pos + size(root.left)
		}
		if before(score, id, root.score, root.id) {
			root = root.left
		} else {
			pos += size(root.left) + 1
			root = root.right
		}
	}
	return -1
}

func kth(root *node, k int) *node {
	for root != nil {
		l := size(root.left)
		switch {
		case k < l:
			root = root.left
		case k == l:
			return root
		default:
			k -= l + 1
			root = root.right
		}
	}
	return nil
}

// Update sets the score for an entity, inserting it if absent.
func (b *Board) Update(id uint64, score int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.update(id, score)
}

// UpdateRanked sets the score and returns the entity's rank before and after
// the write, both read under the same lock. A rank of 0 means "not ranked".
func (b *Board) UpdateRanked(id uint64, score int64) (oldRank, newRank int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, ok := b.scores[id]; ok {
		oldRank = rankOf(b.root, prev, id) + 1
	}
	b.update(id, score)
	newRank = rankOf(b.root, score, id) + 1
	return oldRank, newRank
}

func (b *Board) update(id uint64, score int64) {
	if prev, ok := b.scores[id]; ok {
		if prev == score {
			return
		}
		b.root = erase(b.root, prev, id)
	}
	b.scores[id] = score
	b.root = insert(b.root, &node{id: id, score: score, prio: rand.Uint64()})
}

// Remove drops an entity from the board. Unknown entities are a no-op.
func (b *Board) Remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev, ok := b.scores[id]
	if !ok {
		return
	}
	delete(b.scores, id)
	b.root = erase(b.root, prev, id)
}

// Rank returns the 1-based rank of an entity.
func (b *Board) Rank(id uint64) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	score, ok := b.scores[id]
	if !ok {
		return 0, false
	}
	return rankOf(b.root, score, id) + 1, true
}

// Score returns the last written score of an entity.
func (b *Board) Score(id uint64) (int64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	score, ok := b.scores[id]
	return score, ok
}

// Top returns the best n entries in rank order.
func (b *Board) Top(n int) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if n > len(b.scores) {
		n = len(b.scores)
	}
	out := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		nd := kth(b.root, i)
		if nd == nil {
			break
		}
		out = append(out, Entry{ID: nd.id, Score: nd.score, Rank: i + 1})
	}
	return out
}

// Len returns the number of ranked entities.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.scores)
}
