// Package compiler wires the lexer, parser and emitters into one pipeline.
//
// Every stage is a pure function of its input; errors are returned as
// *diag.Error values and no partial output accompanies them.
package compiler

import (
	"log/slog"

	"github.com/agenthands/stackc/pkg/compiler/ast"
	"github.com/agenthands/stackc/pkg/compiler/emitter"
	"github.com/agenthands/stackc/pkg/compiler/lexer"
	"github.com/agenthands/stackc/pkg/compiler/parser"
	"github.com/agenthands/stackc/pkg/core/logging"
	"github.com/agenthands/stackc/pkg/vm"
)

type Compiler struct {
	logger *slog.Logger
}

// New returns a compiler that logs stage boundaries to logger.
// A nil logger discards them.
func New(logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Compiler{logger: logger}
}

// Tokens lexes and parses src into a block-resolved token stream.
func (c *Compiler) Tokens(file string, src []byte) ([]ast.Token, error) {
	tokens, err := parser.NewParser(lexer.NewScanner(file, src)).Parse()
	if err != nil {
		c.logger.Debug("parse failed", "file", file, "error", err)
		return nil, err
	}
	c.logger.Debug("parsed", "file", file, "bytes", len(src), "tokens", len(tokens))
	return tokens, nil
}

// Compile returns the assembly document for src.
func (c *Compiler) Compile(file string, src []byte) (string, error) {
	tokens, err := c.Tokens(file, src)
	if err != nil {
		return "", err
	}

	asm, err := emitter.NewAsmEmitter().Emit(tokens)
	if err != nil {
		return "", err
	}
	c.logger.Debug("emitted assembly", "file", file, "bytes", len(asm))
	return asm, nil
}

// Bytecode lowers src for the reference VM.
func (c *Compiler) Bytecode(file string, src []byte) (*vm.Bytecode, error) {
	tokens, err := c.Tokens(file, src)
	if err != nil {
		return nil, err
	}

	bc, err := emitter.NewBytecodeEmitter().Emit(tokens)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("emitted bytecode", "file", file, "instructions", len(bc.Instructions), "constants", len(bc.Constants))
	return bc, nil
}
