package node

import (
	"errors"
	"fmt"
)

// ErrStateMismatch is returned when a resume state's variant does not match
// the node it was handed back to. That only happens when pagination state
// is corrupted, so callers treat it as fatal.
var ErrStateMismatch = errors.New("node: resume state mismatch")

// Kind discriminates a State's variant.
type Kind int

const (
	KindBlock Kind = iota + 1
	KindFlex
	KindListItem
	KindParagraph
	KindTable
	KindAtomic
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindFlex:
		return "flex"
	case KindListItem:
		return "list-item"
	case KindParagraph:
		return "paragraph"
	case KindTable:
		return "table"
	case KindAtomic:
		return "atomic"
	}
	return "unknown"
}

// State is the algebraic resume state a node returns on a page break. One
// struct covers every variant; Kind selects which fields are meaningful.
type State struct {
	Kind Kind

	// Container variants (block, flex, list-item): resume at ChildIndex,
	// handing Child to that child if it broke mid-layout.
	ChildIndex int
	Child      *State

	// Paragraph: number of lines already emitted on earlier pages.
	Lines int

	// Table: next body row to render.
	Row int
}

// BlockState builds a block resume state.
func BlockState(childIndex int, child *State) *State {
	return &State{Kind: KindBlock, ChildIndex: childIndex, Child: child}
}

// FlexState builds a flex resume state.
func FlexState(childIndex int, child *State) *State {
	return &State{Kind: KindFlex, ChildIndex: childIndex, Child: child}
}

// ListItemState builds a list-item resume state.
func ListItemState(childIndex int, child *State) *State {
	return &State{Kind: KindListItem, ChildIndex: childIndex, Child: child}
}

// ParagraphState builds a paragraph resume state.
func ParagraphState(lines int) *State {
	return &State{Kind: KindParagraph, Lines: lines}
}

// TableState builds a table resume state.
func TableState(row int) *State {
	return &State{Kind: KindTable, Row: row}
}

// AtomicState is the stateless break marker for leaf nodes.
func AtomicState() *State {
	return &State{Kind: KindAtomic}
}

// mismatch builds the fatal error for a state handed to the wrong node.
func (s *State) mismatch(want Kind) error {
	return fmt.Errorf("%w: have %s, want %s", ErrStateMismatch, s.Kind, want)
}

// asContainer extracts (ChildIndex, Child) after checking the variant.
// A nil state is a fresh start: (0, nil).
func (s *State) asContainer(want Kind) (int, *State, error) {
	if s == nil {
		return 0, nil, nil
	}
	if s.Kind != want {
		return 0, nil, fmt.Errorf("%w: have %s, want %s", ErrStateMismatch, s.Kind, want)
	}
	return s.ChildIndex, s.Child, nil
}

// asParagraph extracts the line offset after checking the variant.
func (s *State) asParagraph() (int, error) {
	if s == nil {
		return 0, nil
	}
	if s.Kind != KindParagraph {
		return 0, fmt.Errorf("%w: have %s, want paragraph", ErrStateMismatch, s.Kind)
	}
	return s.Lines, nil
}

// asTable extracts the row offset after checking the variant.
func (s *State) asTable() (int, error) {
	if s == nil {
		return 0, nil
	}
	if s.Kind != KindTable {
		return 0, fmt.Errorf("%w: have %s, want table", ErrStateMismatch, s.Kind)
	}
	return s.Row, nil
}

// Equal reports deep equality, used by the driver's no-progress check.
func (s *State) Equal(o *State) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Kind != o.Kind || s.ChildIndex != o.ChildIndex || s.Lines != o.Lines || s.Row != o.Row {
		return false
	}
	return s.Child.Equal(o.Child)
}
