package emitter

import (
	"fmt"

	"github.com/agenthands/stackc/pkg/compiler/ast"
	"github.com/agenthands/stackc/pkg/vm"
)

var simpleOps = map[ast.Kind]uint8{
	ast.KindAdd:       vm.OP_ADD,
	ast.KindSub:       vm.OP_SUB,
	ast.KindMul:       vm.OP_MUL,
	ast.KindDiv:       vm.OP_DIV,
	ast.KindEqual:     vm.OP_EQ,
	ast.KindGreater:   vm.OP_GT,
	ast.KindLess:      vm.OP_LT,
	ast.KindDup:       vm.OP_DUP,
	ast.KindDrop:      vm.OP_DROP,
	ast.KindSwap:      vm.OP_SWAP,
	ast.KindRot:       vm.OP_ROT,
	ast.KindOver:      vm.OP_OVER,
	ast.KindDump:      vm.OP_DUMP,
	ast.KindAsciiDump: vm.OP_EMIT,
}

// BytecodeEmitter lowers a token stream for the reference VM. Jumps use
// the same label names as the assembly output and are patched once the
// whole stream has been seen.
type BytecodeEmitter struct {
	instructions []uint32
	constants    []int64
	labels       map[string]int
	fixups       map[string][]int
	blocks       blockTracker
}

func NewBytecodeEmitter() *BytecodeEmitter {
	return &BytecodeEmitter{}
}

func (e *BytecodeEmitter) Emit(tokens []ast.Token) (*vm.Bytecode, error) {
	e.instructions = nil
	e.constants = nil
	e.labels = make(map[string]int)
	e.fixups = make(map[string][]int)
	e.blocks = blockTracker{}

	for _, tok := range tokens {
		if err := e.emitToken(tok); err != nil {
			return nil, err
		}
	}
	if err := e.blocks.finish(); err != nil {
		return nil, err
	}
	e.emitOp(vm.OP_EXIT, 0)

	if len(e.instructions) > vm.MaxArg {
		return nil, fmt.Errorf("emitter: program too large (%d instructions)", len(e.instructions))
	}
	for name, sites := range e.fixups {
		target, ok := e.labels[name]
		if !ok {
			return nil, fmt.Errorf("emitter: unresolved label %s", name)
		}
		for _, at := range sites {
			e.instructions[at] |= uint32(target) & vm.MaxArg
		}
	}

	return &vm.Bytecode{
		Instructions: e.instructions,
		Constants:    e.constants,
	}, nil
}

func (e *BytecodeEmitter) emitToken(tok ast.Token) error {
	if op, ok := simpleOps[tok.Kind]; ok {
		e.emitOp(op, 0)
		return nil
	}

	switch tok.Kind {
	case ast.KindInt:
		idx := e.addConstant(tok.Value)
		if idx > vm.MaxArg {
			return malformed(tok, "constant pool overflow")
		}
		e.emitOp(vm.OP_PUSH_C, uint32(idx))

	case ast.KindIf:
		e.blocks.push(tok)
		e.emitJump(vm.OP_JMP_FALSE, labelEndIf(tok.Block))

	case ast.KindElse:
		if err := e.blocks.els(tok); err != nil {
			return err
		}
		e.emitJump(vm.OP_JMP, labelEndElse(tok.Block))
		e.bind(labelEndIf(tok.Block))

	case ast.KindWhile:
		e.blocks.push(tok)
		e.bind(labelLoopTop(tok.Block))

	case ast.KindDo:
		if _, err := e.blocks.do(tok); err != nil {
			return err
		}
		e.emitJump(vm.OP_JMP_FALSE, labelEndWhile(tok.Block))

	case ast.KindEnd:
		f, err := e.blocks.end(tok)
		if err != nil {
			return err
		}
		switch f.kind {
		case ast.KindIf:
			e.bind(labelEndIf(f.id))
		case ast.KindElse:
			e.bind(labelEndElse(f.id))
		case ast.KindDo:
			e.emitJump(vm.OP_JMP, labelLoopTop(f.loop))
			e.bind(labelEndWhile(f.id))
		}

	default:
		return malformed(tok, fmt.Sprintf("unknown token kind %v", tok.Kind))
	}
	return nil
}

func (e *BytecodeEmitter) emitOp(op uint8, arg uint32) {
	e.instructions = append(e.instructions, vm.Encode(op, arg))
}

func (e *BytecodeEmitter) emitJump(op uint8, label string) {
	e.fixups[label] = append(e.fixups[label], len(e.instructions))
	e.emitOp(op, 0)
}

func (e *BytecodeEmitter) bind(label string) {
	e.labels[label] = len(e.instructions)
}

func (e *BytecodeEmitter) addConstant(v int64) int {
	for i, c := range e.constants {
		if c == v {
			return i
		}
	}
	e.constants = append(e.constants, v)
	return len(e.constants) - 1
}
