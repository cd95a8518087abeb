package selection

// Document is the line geometry motions need.
type Document interface {
	LineCount() int
	LineLen(line int) int
}

// Motion is a cursor movement.
type Motion int

// Motions.
const (
	MoveLeft Motion = iota
	MoveRight
	MoveUp
	MoveDown
	MoveLineStart
	MoveLineEnd
	MoveDocStart
	MoveDocEnd
)

// Move applies m to every selection. With extend only heads move; without
// it each selection collapses onto its moved head.
func (s *Set) Move(doc Document, m Motion, extend bool) {
	for i, sel := range s.sels {
		s.sels[i] = move(doc, sel, m, extend)
	}
	s.normalize()
}

// ClampTo pulls every selection back inside doc.
func (s *Set) ClampTo(doc Document) {
	for i, sel := range s.sels {
		s.sels[i] = Selection{
			Anchor:     clampPos(doc, sel.Anchor),
			Head:       clampPos(doc, sel.Head),
			GoalColumn: sel.GoalColumn,
		}
	}
	s.normalize()
}

func clampPos(doc Document, p Position) Position {
	last := doc.LineCount() - 1
	if p.Line < 0 {
		return Position{}
	}
	if p.Line > last {
		return Position{Line: last, Column: doc.LineLen(last)}
	}
	if p.Column < 0 {
		p.Column = 0
	}
	if n := doc.LineLen(p.Line); p.Column > n {
		p.Column = n
	}
	return p
}

func move(doc Document, sel Selection, m Motion, extend bool) Selection {
	head := clampPos(doc, sel.Head)
	goal := NoGoal
	last := doc.LineCount() - 1

	switch m {
	case MoveLeft:
		switch {
		case head.Column > 0:
			head.Column--
		case head.Line > 0:
			head.Line--
			head.Column = doc.LineLen(head.Line)
		}
	case MoveRight:
		switch {
		case head.Column < doc.LineLen(head.Line):
			head.Column++
		case head.Line < last:
			head.Line++
			head.Column = 0
		}
	case MoveUp, MoveDown:
		goal = sel.GoalColumn
		if goal == NoGoal {
			goal = head.Column
		}
		switch {
		case m == MoveUp && head.Line > 0:
			head.Line--
			head.Column = min(goal, doc.LineLen(head.Line))
		case m == MoveUp:
			head.Column = 0
		case head.Line < last:
			head.Line++
			head.Column = min(goal, doc.LineLen(head.Line))
		default:
			head.Column = doc.LineLen(head.Line)
		}
	case MoveLineStart:
		head.Column = 0
	case MoveLineEnd:
		head.Column = doc.LineLen(head.Line)
	case MoveDocStart:
		head = Position{}
	case MoveDocEnd:
		head = Position{Line: last, Column: doc.LineLen(last)}
	}

	if extend {
		return Selection{Anchor: clampPos(doc, sel.Anchor), Head: head, GoalColumn: goal}
	}
	return Selection{Anchor: head, Head: head, GoalColumn: goal}
}
