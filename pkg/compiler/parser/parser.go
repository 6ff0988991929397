package parser

import (
	"strconv"

	"github.com/agenthands/stackc/pkg/compiler/ast"
	"github.com/agenthands/stackc/pkg/compiler/diag"
	"github.com/agenthands/stackc/pkg/compiler/lexer"
)

// StandardWords maps fixed symbols and keywords to their token kind.
var StandardWords = map[string]ast.Kind{
	"+":         ast.KindAdd,
	"-":         ast.KindSub,
	"*":         ast.KindMul,
	"/":         ast.KindDiv,
	"=":         ast.KindEqual,
	">":         ast.KindGreater,
	"<":         ast.KindLess,
	"dup":       ast.KindDup,
	"drop":      ast.KindDrop,
	"swp":       ast.KindSwap,
	"rot":       ast.KindRot,
	"over":      ast.KindOver,
	"dump":      ast.KindDump,
	"asciidump": ast.KindAsciiDump,
	"if":        ast.KindIf,
	"else":      ast.KindElse,
	"while":     ast.KindWhile,
	"do":        ast.KindDo,
	"end":       ast.KindEnd,
}

// CommentWord silences the rest of the line it appears on.
const CommentWord = "rem"

type scope uint8

const (
	scopeIf scope = iota
	scopeElse
	scopeWhile
	scopeDo
)

// block is one entry of the BlockStack.
type block struct {
	id    ast.BlockID
	scope scope
	word  lexer.Word
}

type Parser struct {
	scanner *lexer.Scanner

	blocks  []block
	nextID  ast.BlockID
	comment bool
	line    int
}

func NewParser(s *lexer.Scanner) *Parser {
	return &Parser{scanner: s}
}

// Parse classifies every word and resolves block ids. The first error
// aborts parsing and no tokens are returned with it.
func (p *Parser) Parse() ([]ast.Token, error) {
	var tokens []ast.Token

	for {
		w, ok := p.scanner.Next()
		if !ok {
			break
		}

		if w.Pos.Line != p.line {
			p.comment = false
			p.line = w.Pos.Line
		}
		if p.comment {
			continue
		}
		if w.Text == CommentWord {
			p.comment = true
			continue
		}

		tok, err := p.classify(w)
		if err != nil {
			return nil, err
		}
		if tok.Kind.IsBlock() {
			if err := p.resolveBlock(&tok); err != nil {
				return nil, err
			}
		}
		tokens = append(tokens, tok)
	}

	if len(p.blocks) > 0 {
		open := p.blocks[len(p.blocks)-1]
		return nil, diag.New(diag.CodeUnterminatedBlock, open.word, "no matching end")
	}

	return tokens, nil
}

func (p *Parser) classify(w lexer.Word) (ast.Token, error) {
	tok := ast.Token{Word: w, Block: ast.NoBlock}

	if v, err := strconv.ParseInt(w.Text, 10, 64); err == nil {
		tok.Kind = ast.KindInt
		tok.Value = v
		return tok, nil
	}

	switch w.Text {
	case "true":
		tok.Kind = ast.KindInt
		tok.Value = 1
		return tok, nil
	case "false":
		tok.Kind = ast.KindInt
		tok.Value = 0
		return tok, nil
	}

	kind, ok := StandardWords[w.Text]
	if !ok {
		return tok, diag.New(diag.CodeInvalidToken, w, "")
	}
	tok.Kind = kind
	return tok, nil
}

func (p *Parser) resolveBlock(tok *ast.Token) error {
	switch tok.Kind {
	case ast.KindIf:
		tok.Block = p.open(scopeIf, tok.Word)

	case ast.KindWhile:
		tok.Block = p.open(scopeWhile, tok.Word)

	case ast.KindDo:
		top, ok := p.pop()
		if !ok {
			return diag.New(diag.CodeUnexpectedDo, tok.Word, "no matching while")
		}
		if top.scope != scopeWhile {
			return diag.New(diag.CodeUnexpectedDo, tok.Word, "innermost open block is not a while")
		}
		// do gets an id of its own; the generators pair it with the
		// enclosing while through their own block tracker.
		tok.Block = p.open(scopeDo, tok.Word)

	case ast.KindElse:
		if len(p.blocks) == 0 || p.blocks[len(p.blocks)-1].scope != scopeIf {
			return diag.New(diag.CodeUnmatchedElse, tok.Word, "innermost open block is not an if")
		}
		top := &p.blocks[len(p.blocks)-1]
		top.scope = scopeElse
		tok.Block = top.id

	case ast.KindEnd:
		top, ok := p.pop()
		if !ok {
			return diag.New(diag.CodeUnexpectedEnd, tok.Word, "no open block")
		}
		if top.scope == scopeWhile {
			return diag.New(diag.CodeUnexpectedEnd, tok.Word, "while loop has no do")
		}
		tok.Block = top.id
	}
	return nil
}

func (p *Parser) open(s scope, w lexer.Word) ast.BlockID {
	id := p.nextID
	p.nextID++
	p.blocks = append(p.blocks, block{id: id, scope: s, word: w})
	return id
}

func (p *Parser) pop() (block, bool) {
	if len(p.blocks) == 0 {
		return block{}, false
	}
	top := p.blocks[len(p.blocks)-1]
	p.blocks = p.blocks[:len(p.blocks)-1]
	return top, true
}

// Parse is a convenience wrapper that lexes and parses src in one call.
func Parse(file string, src []byte) ([]ast.Token, error) {
	return NewParser(lexer.NewScanner(file, src)).Parse()
}
