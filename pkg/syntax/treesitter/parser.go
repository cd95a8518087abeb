// Package treesitter implements syntax.Parser with tree-sitter and its SQL grammar.
package treesitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/sql"

	"github.com/willibrandon/tusk-sub001/pkg/syntax"
)

// ErrForeignTree is returned when Parse receives a tree built by another parser.
var ErrForeignTree = errors.New("tree was not produced by the tree-sitter parser")

// Parser is an incremental SQL parser. It is safe for use from one goroutine
// at a time; the mutex only guards against accidental concurrent use.
type Parser struct {
	mu     sync.Mutex
	parser *sitter.Parser
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger for parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a parser for the SQL grammar.
func New(opts ...Option) *Parser {
	p := &Parser{
		parser: sitter.NewParser(),
		logger: slog.New(slog.DiscardHandler),
	}
	p.parser.SetLanguage(sql.GetLanguage())
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse implements syntax.Parser.
func (p *Parser) Parse(ctx context.Context, src []byte, old syntax.Tree) (syntax.Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var oldTree *sitter.Tree
	if old != nil {
		t, ok := old.(*Tree)
		if !ok {
			return nil, ErrForeignTree
		}
		oldTree = t.tree
	}

	tree, err := p.parser.ParseCtx(ctx, oldTree, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}
	if tree == nil {
		return nil, errors.New("parser returned no tree")
	}

	p.logger.Debug("parsed document",
		slog.Int("bytes", len(src)),
		slog.Bool("incremental", oldTree != nil),
		slog.Bool("has_error", tree.RootNode().HasError()))

	return &Tree{tree: tree}, nil
}

// Close releases the underlying parser.
func (p *Parser) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.parser.Close()
}

// Tree wraps a tree-sitter tree.
type Tree struct {
	tree *sitter.Tree
}

// Root implements syntax.Tree.
func (t *Tree) Root() syntax.Node {
	root := t.tree.RootNode()
	if root == nil {
		return nil
	}
	return node{n: root}
}

// Edit implements syntax.Tree.
func (t *Tree) Edit(e syntax.InputEdit) {
	t.tree.Edit(sitter.EditInput{
		StartIndex:  uint32(e.StartByte),
		OldEndIndex: uint32(e.OldEndByte),
		NewEndIndex: uint32(e.NewEndByte),
		StartPoint:  toPoint(e.StartPoint),
		OldEndPoint: toPoint(e.OldEndPoint),
		NewEndPoint: toPoint(e.NewEndPoint),
	})
}

// Close implements syntax.Tree.
func (t *Tree) Close() {
	t.tree.Close()
}

func toPoint(p syntax.Point) sitter.Point {
	return sitter.Point{Row: uint32(p.Row), Column: uint32(p.Column)}
}

type node struct {
	n *sitter.Node
}

func (n node) Type() string    { return n.n.Type() }
func (n node) StartByte() int  { return int(n.n.StartByte()) }
func (n node) EndByte() int    { return int(n.n.EndByte()) }
func (n node) ChildCount() int { return int(n.n.ChildCount()) }
func (n node) IsNamed() bool   { return n.n.IsNamed() }
func (n node) IsMissing() bool { return n.n.IsMissing() }

func (n node) Child(i int) syntax.Node {
	c := n.n.Child(i)
	if c == nil {
		return nil
	}
	return node{n: c}
}
