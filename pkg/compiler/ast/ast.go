package ast

import (
	"fmt"

	"github.com/agenthands/stackc/pkg/compiler/lexer"
)

// Kind is the semantic category of a token.
type Kind uint8

const (
	KindInt Kind = iota
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindDup
	KindDrop
	KindSwap
	KindRot
	KindOver
	KindEqual
	KindGreater
	KindLess
	KindDump
	KindAsciiDump
	KindIf
	KindElse
	KindWhile
	KindDo
	KindEnd
)

var kindNames = [...]string{
	KindInt:       "Int",
	KindAdd:       "Add",
	KindSub:       "Sub",
	KindMul:       "Mul",
	KindDiv:       "Div",
	KindDup:       "Dup",
	KindDrop:      "Drop",
	KindSwap:      "Swap",
	KindRot:       "Rot",
	KindOver:      "Over",
	KindEqual:     "Equal",
	KindGreater:   "Greater",
	KindLess:      "Less",
	KindDump:      "Dump",
	KindAsciiDump: "AsciiDump",
	KindIf:        "If",
	KindElse:      "Else",
	KindWhile:     "While",
	KindDo:        "Do",
	KindEnd:       "End",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsBlock reports whether tokens of this kind carry a BlockID.
func (k Kind) IsBlock() bool {
	return k >= KindIf && k <= KindEnd
}

// BlockID names one control-flow construct. IDs are handed out in
// increasing order starting at zero within a single compilation.
type BlockID int

// NoBlock marks tokens outside the control-flow keyword set.
const NoBlock BlockID = -1

// Token is a classified word.
// Block is set for If/Else/While/Do/End, Value for Int.
type Token struct {
	Kind  Kind
	Word  lexer.Word
	Block BlockID
	Value int64
}

// Pos returns the source position of the token's word.
func (t Token) Pos() lexer.Pos { return t.Word.Pos }

func (t Token) String() string {
	switch {
	case t.Kind == KindInt:
		return fmt.Sprintf("%s %s(%d)", t.Word.Pos, t.Kind, t.Value)
	case t.Kind.IsBlock():
		return fmt.Sprintf("%s %s#%d", t.Word.Pos, t.Kind, t.Block)
	default:
		return fmt.Sprintf("%s %s", t.Word.Pos, t.Kind)
	}
}
