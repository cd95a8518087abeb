package highlight

import (
	"log/slog"
	"sort"

	"github.com/willibrandon/tusk-sub001/pkg/buffer"
	"github.com/willibrandon/tusk-sub001/pkg/dialect"
	"github.com/willibrandon/tusk-sub001/pkg/token"
)

// Highlighter caches the tokens of one buffer version. Tokens are computed
// per character range on demand; ranges already covered for the current
// version are not walked again.
type Highlighter struct {
	dialect *dialect.Dialect
	logger  *slog.Logger

	bufferID string
	version  uint64
	valid    bool
	covered  []interval // sorted and disjoint
	tokens   []token.Token
}

type interval struct {
	start, end int
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithDialect selects the word lists used for classification.
func WithDialect(d *dialect.Dialect) Option {
	return func(h *Highlighter) {
		if d != nil {
			h.dialect = d
		}
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Highlighter) {
		h.logger = logger
	}
}

// NewHighlighter creates a Highlighter.
func NewHighlighter(opts ...Option) *Highlighter {
	h := &Highlighter{dialect: dialect.Default()}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.New(slog.DiscardHandler)
	}
	return h
}

// Dialect returns the dialect used for classification.
func (h *Highlighter) Dialect() *dialect.Dialect { return h.dialect }

// Tokens returns the tokens for the current version of b, recomputing them
// only when the buffer changed since the last call. The returned slice is
// shared and must not be modified.
func (h *Highlighter) Tokens(b *buffer.Buffer) []token.Token {
	return h.TokensInRange(b, 0, b.Len())
}

// TokensInRange returns the tokens of the current version of b that
// intersect the character range [start, end). Only the parts of the range
// not already highlighted for this version are computed; with a syntax tree
// that walks just the subtrees covering them. The returned slice is shared
// and must not be modified.
func (h *Highlighter) TokensInRange(b *buffer.Buffer, start, end int) []token.Token {
	if !h.valid || h.bufferID != b.ID() || h.version != b.Version() {
		h.covered = h.covered[:0]
		h.tokens = nil
		h.bufferID = b.ID()
		h.version = b.Version()
		h.valid = true
	}

	start, end = max(start, 0), min(end, b.Len())
	if start >= end {
		return nil
	}
	gaps := h.gaps(start, end)
	if len(gaps) == 0 {
		return Overlapping(h.tokens, start, end)
	}

	tree := b.Tree()
	source := b.Text()
	if tree == nil || tree.Root() == nil {
		// the lexer always runs over the whole text
		gaps = []interval{{0, b.Len()}}
		h.tokens = LexWithDialect(source, h.dialect)
	} else {
		// a fresh slice: earlier results handed out must stay intact
		merged := append([]token.Token(nil), h.tokens...)
		for _, g := range gaps {
			merged = append(merged, HighlightRange(tree, source, h.dialect, g.start, g.end)...)
		}
		h.tokens = normalizeTokens(merged)
	}
	for _, g := range gaps {
		h.cover(g)
	}

	h.logger.Debug("highlighted buffer",
		"buffer", h.bufferID,
		"version", h.version,
		"start", start,
		"end", end,
		"ranges", len(gaps),
		"tokens", len(h.tokens),
		"tree", tree != nil)
	return Overlapping(h.tokens, start, end)
}

// gaps returns the parts of [start, end) not yet covered.
func (h *Highlighter) gaps(start, end int) []interval {
	var out []interval
	at := start
	for _, c := range h.covered {
		if c.end <= at {
			continue
		}
		if c.start >= end {
			break
		}
		if c.start > at {
			out = append(out, interval{at, c.start})
		}
		at = max(at, c.end)
		if at >= end {
			return out
		}
	}
	if at < end {
		out = append(out, interval{at, end})
	}
	return out
}

// cover records g as highlighted, merging touching intervals.
func (h *Highlighter) cover(g interval) {
	merged := make([]interval, 0, len(h.covered)+1)
	inserted := false
	for _, c := range h.covered {
		switch {
		case c.end < g.start:
			merged = append(merged, c)
		case g.end < c.start:
			if !inserted {
				merged = append(merged, g)
				inserted = true
			}
			merged = append(merged, c)
		default:
			g = interval{min(g.start, c.start), max(g.end, c.end)}
		}
	}
	if !inserted {
		merged = append(merged, g)
	}
	h.covered = merged
}

// Invalidate drops the cached tokens.
func (h *Highlighter) Invalidate() {
	h.valid = false
	h.covered = nil
	h.tokens = nil
}

// Overlapping returns the sub-slice of sorted, non-overlapping tokens that
// intersect [start, end).
func Overlapping(tokens []token.Token, start, end int) []token.Token {
	lo := sort.Search(len(tokens), func(i int) bool { return tokens[i].End > start })
	hi := lo
	for hi < len(tokens) && tokens[hi].Start < end {
		hi++
	}
	return tokens[lo:hi]
}

// At returns the token containing offset, if any.
func At(tokens []token.Token, offset int) (token.Token, bool) {
	i := sort.Search(len(tokens), func(i int) bool { return tokens[i].End > offset })
	if i < len(tokens) && tokens[i].Contains(offset) {
		return tokens[i], true
	}
	return token.Token{}, false
}
