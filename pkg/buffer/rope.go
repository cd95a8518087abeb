package buffer

import (
	"strings"
	"unicode/utf8"
)

// maxLeafBytes bounds the text held by one rope leaf.
const maxLeafBytes = 512

// Rope is an immutable balanced tree of text chunks addressed by character
// (rune) offset. Every edit returns a new Rope sharing unchanged subtrees.
// The zero value is an empty rope.
type Rope struct {
	root *node
}

type node struct {
	left, right *node
	text        string // leaves only

	runes  int
	bytes  int
	lines  int // newline count
	height int // 0 for leaves
}

func (n *node) isLeaf() bool { return n.left == nil }

func newLeaf(s string) *node {
	return &node{
		text:  s,
		runes: utf8.RuneCountInString(s),
		bytes: len(s),
		lines: strings.Count(s, "\n"),
	}
}

func newInternal(l, r *node) *node {
	return &node{
		left:   l,
		right:  r,
		runes:  l.runes + r.runes,
		bytes:  l.bytes + r.bytes,
		lines:  l.lines + r.lines,
		height: 1 + max(l.height, r.height),
	}
}

func height(n *node) int {
	if n == nil {
		return -1
	}
	return n.height
}

// NewRope builds a balanced rope from s.
func NewRope(s string) Rope {
	if s == "" {
		return Rope{}
	}
	var leaves []*node
	for len(s) > 0 {
		cut := len(s)
		if cut > maxLeafBytes {
			cut = maxLeafBytes
			for cut > 0 && !utf8.RuneStart(s[cut]) {
				cut--
			}
			// a single rune longer than the leaf size cannot happen with UTF-8
			if cut == 0 {
				cut = maxLeafBytes
			}
		}
		leaves = append(leaves, newLeaf(s[:cut]))
		s = s[cut:]
	}
	return Rope{root: buildBalanced(leaves)}
}

func buildBalanced(leaves []*node) *node {
	switch len(leaves) {
	case 0:
		return nil
	case 1:
		return leaves[0]
	}
	mid := len(leaves) / 2
	return newInternal(buildBalanced(leaves[:mid]), buildBalanced(leaves[mid:]))
}

// join concatenates two trees, keeping the result height balanced.
func join(l, r *node) *node {
	if l == nil || l.runes == 0 {
		return r
	}
	if r == nil || r.runes == 0 {
		return l
	}
	if l.isLeaf() && r.isLeaf() && l.bytes+r.bytes <= maxLeafBytes {
		return newLeaf(l.text + r.text)
	}

	hl, hr := l.height, r.height
	switch {
	case hl > hr+1:
		return rebalance(newInternal(l.left, join(l.right, r)))
	case hr > hl+1:
		return rebalance(newInternal(join(l, r.left), r.right))
	default:
		return newInternal(l, r)
	}
}

func rebalance(n *node) *node {
	if n.isLeaf() {
		return n
	}
	bf := height(n.left) - height(n.right)
	switch {
	case bf > 1:
		l := n.left
		if height(l.left) < height(l.right) {
			l = rotateLeft(l)
		}
		return rotateRight(newInternal(l, n.right))
	case bf < -1:
		r := n.right
		if height(r.right) < height(r.left) {
			r = rotateRight(r)
		}
		return rotateLeft(newInternal(n.left, r))
	}
	return n
}

func rotateRight(n *node) *node {
	l := n.left
	return newInternal(l.left, newInternal(l.right, n.right))
}

func rotateLeft(n *node) *node {
	r := n.right
	return newInternal(newInternal(n.left, r.left), r.right)
}

// split cuts n into the first k runes and the rest.
func split(n *node, k int) (*node, *node) {
	if n == nil {
		return nil, nil
	}
	if k <= 0 {
		return nil, n
	}
	if k >= n.runes {
		return n, nil
	}
	if n.isLeaf() {
		b := byteIndex(n.text, k)
		return newLeaf(n.text[:b]), newLeaf(n.text[b:])
	}
	switch {
	case k < n.left.runes:
		a, b := split(n.left, k)
		return a, join(b, n.right)
	case k == n.left.runes:
		return n.left, n.right
	default:
		a, b := split(n.right, k-n.left.runes)
		return join(n.left, a), b
	}
}

// byteIndex returns the byte index of the k-th rune of s.
func byteIndex(s string, k int) int {
	if k <= 0 {
		return 0
	}
	i := 0
	for pos := range s {
		if i == k {
			return pos
		}
		i++
	}
	return len(s)
}

// Len returns the length in characters.
func (r Rope) Len() int {
	if r.root == nil {
		return 0
	}
	return r.root.runes
}

// ByteLen returns the length in bytes.
func (r Rope) ByteLen() int {
	if r.root == nil {
		return 0
	}
	return r.root.bytes
}

// LineCount returns the number of lines; an empty rope has one line.
func (r Rope) LineCount() int {
	if r.root == nil {
		return 1
	}
	return r.root.lines + 1
}

// Height returns the tree height, for balance checks.
func (r Rope) Height() int {
	return height(r.root)
}

func (r Rope) clamp(offset int) int {
	return clampInt(offset, 0, r.Len())
}

// Insert returns a rope with s inserted at offset.
func (r Rope) Insert(offset int, s string) Rope {
	if s == "" {
		return r
	}
	l, rest := split(r.root, r.clamp(offset))
	return Rope{root: join(join(l, NewRope(s).root), rest)}
}

// Delete returns a rope without the characters in [start, end).
func (r Rope) Delete(start, end int) Rope {
	start, end = r.clamp(start), r.clamp(end)
	if start > end {
		start, end = end, start
	}
	if start == end {
		return r
	}
	l, rest := split(r.root, start)
	_, tail := split(rest, end-start)
	return Rope{root: join(l, tail)}
}

// Slice returns the text in [start, end).
func (r Rope) Slice(start, end int) string {
	start, end = r.clamp(start), r.clamp(end)
	if start > end {
		start, end = end, start
	}
	if start == end {
		return ""
	}
	var sb strings.Builder
	appendRange(&sb, r.root, start, end)
	return sb.String()
}

func appendRange(sb *strings.Builder, n *node, start, end int) {
	if n == nil || start >= end {
		return
	}
	if n.isLeaf() {
		sb.WriteString(n.text[byteIndex(n.text, start):byteIndex(n.text, end)])
		return
	}
	lr := n.left.runes
	if start < lr {
		appendRange(sb, n.left, start, min(end, lr))
	}
	if end > lr {
		appendRange(sb, n.right, max(start-lr, 0), end-lr)
	}
}

// String returns the whole text.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(r.root.bytes)
	var walk func(*node)
	walk = func(n *node) {
		if n.isLeaf() {
			sb.WriteString(n.text)
			return
		}
		walk(n.left)
		walk(n.right)
	}
	walk(r.root)
	return sb.String()
}

// ByteOffset converts a character offset into a byte offset.
func (r Rope) ByteOffset(offset int) int {
	offset = r.clamp(offset)
	n, acc := r.root, 0
	for n != nil {
		if n.isLeaf() {
			return acc + byteIndex(n.text, offset)
		}
		if offset <= n.left.runes {
			n = n.left
			continue
		}
		offset -= n.left.runes
		acc += n.left.bytes
		n = n.right
	}
	return acc
}

// CharOffset converts a byte offset into a character offset. Byte offsets
// inside a multi-byte character round down to that character.
func (r Rope) CharOffset(byteOff int) int {
	byteOff = clampInt(byteOff, 0, r.ByteLen())
	n, acc := r.root, 0
	for n != nil {
		if n.isLeaf() {
			return acc + utf8.RuneCountInString(n.text[:runeStartBefore(n.text, byteOff)])
		}
		if byteOff <= n.left.bytes {
			n = n.left
			continue
		}
		byteOff -= n.left.bytes
		acc += n.left.runes
		n = n.right
	}
	return acc
}

func runeStartBefore(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// newlinesBefore counts newlines in the first offset characters.
func (r Rope) newlinesBefore(offset int) int {
	n, count := r.root, 0
	for n != nil {
		if n.isLeaf() {
			return count + strings.Count(n.text[:byteIndex(n.text, offset)], "\n")
		}
		if offset <= n.left.runes {
			n = n.left
			continue
		}
		offset -= n.left.runes
		count += n.left.lines
		n = n.right
	}
	return count
}

// newlineOffset returns the character offset of the j-th newline (1-based).
func (r Rope) newlineOffset(j int) int {
	n, acc := r.root, 0
	for n != nil {
		if n.isLeaf() {
			i := 0
			for _, ch := range n.text {
				if ch == '\n' {
					j--
					if j == 0 {
						return acc + i
					}
				}
				i++
			}
			return acc + i
		}
		if j <= n.left.lines {
			n = n.left
			continue
		}
		j -= n.left.lines
		acc += n.left.runes
		n = n.right
	}
	return acc
}

// LineStart returns the character offset where line begins. Lines are clamped.
func (r Rope) LineStart(line int) int {
	line = clampInt(line, 0, r.LineCount()-1)
	if line == 0 {
		return 0
	}
	return r.newlineOffset(line) + 1
}

// LineEnd returns the offset of the line's terminating newline, or Len for the last line.
func (r Rope) LineEnd(line int) int {
	line = clampInt(line, 0, r.LineCount()-1)
	if line == r.LineCount()-1 {
		return r.Len()
	}
	return r.newlineOffset(line + 1)
}

// OffsetToLineCol converts a character offset to a zero-based line and column.
func (r Rope) OffsetToLineCol(offset int) (int, int) {
	offset = r.clamp(offset)
	line := r.newlinesBefore(offset)
	return line, offset - r.LineStart(line)
}

// LineColToOffset converts a line and column to a character offset, clamping
// the line to the document and the column to the line length.
func (r Rope) LineColToOffset(line, col int) int {
	line = clampInt(line, 0, r.LineCount()-1)
	start := r.LineStart(line)
	return start + clampInt(col, 0, r.LineEnd(line)-start)
}
