package emitter

import (
	"fmt"

	"github.com/agenthands/stackc/pkg/compiler/ast"
	"github.com/agenthands/stackc/pkg/compiler/diag"
)

// Label names are namespaced by block id so nested and sibling
// constructs never collide.
func labelEndIf(id ast.BlockID) string    { return fmt.Sprintf("end_if_%d", id) }
func labelEndElse(id ast.BlockID) string  { return fmt.Sprintf("end_else_%d", id) }
func labelLoopTop(id ast.BlockID) string  { return fmt.Sprintf("loop_top_%d", id) }
func labelEndWhile(id ast.BlockID) string { return fmt.Sprintf("end_while_%d", id) }

// frame is an open construct as seen by a generator.
type frame struct {
	kind ast.Kind // If, Else, While or Do
	id   ast.BlockID
	loop ast.BlockID // for Do: the id of the enclosing While
}

// blockTracker mirrors the parser's block stack. It pairs each do with
// the while it closes, since the two carry different ids, and tells end
// which kind of construct it terminates.
type blockTracker struct {
	open []frame
}

func (b *blockTracker) push(tok ast.Token) {
	b.open = append(b.open, frame{kind: tok.Kind, id: tok.Block, loop: ast.NoBlock})
}

func (b *blockTracker) top() (*frame, bool) {
	if len(b.open) == 0 {
		return nil, false
	}
	return &b.open[len(b.open)-1], true
}

// do swaps the innermost while for the do frame and returns the while's id.
func (b *blockTracker) do(tok ast.Token) (ast.BlockID, error) {
	f, ok := b.top()
	if !ok || f.kind != ast.KindWhile {
		return ast.NoBlock, malformed(tok, "do without an open while")
	}
	loop := f.id
	*f = frame{kind: ast.KindDo, id: tok.Block, loop: loop}
	return loop, nil
}

func (b *blockTracker) els(tok ast.Token) error {
	f, ok := b.top()
	if !ok || f.kind != ast.KindIf || f.id != tok.Block {
		return malformed(tok, "else without an open if")
	}
	f.kind = ast.KindElse
	return nil
}

func (b *blockTracker) end(tok ast.Token) (frame, error) {
	f, ok := b.top()
	if !ok {
		return frame{}, malformed(tok, "end without an open block")
	}
	if f.id != tok.Block {
		return frame{}, malformed(tok, fmt.Sprintf("end closes block %d but block %d is open", tok.Block, f.id))
	}
	if f.kind == ast.KindWhile {
		return frame{}, malformed(tok, "end closes a while that has no do")
	}
	closed := *f
	b.open = b.open[:len(b.open)-1]
	return closed, nil
}

func (b *blockTracker) finish() error {
	f, ok := b.top()
	if !ok {
		return nil
	}
	return &diag.Error{
		Code:   diag.CodeMalformedStream,
		Text:   f.kind.String(),
		Detail: fmt.Sprintf("block %d is never closed", f.id),
	}
}

func malformed(tok ast.Token, detail string) error {
	return diag.New(diag.CodeMalformedStream, tok.Word, detail)
}
