package emitter

import (
	"fmt"
	"math"
	"strings"

	"github.com/agenthands/stackc/pkg/compiler/ast"
)

// preamble declares the executable image and the two runtime helpers.
// Both helpers take their argument in rdi and clobber rax, rcx, rdx, rsi,
// r8 and r11; the operand stack is the native stack.
const preamble = `format ELF64 executable 3
entry start
segment readable executable

; print_dec writes rdi as a signed decimal number followed by a newline.
print_dec:
    push rbp
    mov rbp, rsp
    sub rsp, 32
    mov rax, rdi
    lea rsi, [rbp-1]
    mov byte [rsi], 10
    mov rcx, 10
    xor r8, r8
    test rax, rax
    jns .digits
    neg rax
    mov r8, 1
.digits:
    xor rdx, rdx
    div rcx
    add dl, '0'
    dec rsi
    mov [rsi], dl
    test rax, rax
    jnz .digits
    test r8, r8
    jz .write
    dec rsi
    mov byte [rsi], '-'
.write:
    mov rax, 1
    mov rdi, 1
    mov rdx, rbp
    sub rdx, rsi
    syscall
    leave
    ret

; print_char writes the low byte of rdi.
print_char:
    push rdi
    mov rax, 1
    mov rdi, 1
    mov rsi, rsp
    mov rdx, 1
    syscall
    pop rdi
    ret

start:
`

// epilogue exits with the top of the operand stack as status.
const epilogue = `    ; exit
    mov rax, 60
    pop rdi
    syscall
`

// AsmEmitter lowers a token stream to FASM x86-64 assembly for Linux.
type AsmEmitter struct {
	out    strings.Builder
	blocks blockTracker
}

func NewAsmEmitter() *AsmEmitter {
	return &AsmEmitter{}
}

// Emit returns the complete assembly document. Nothing is returned
// alongside an error.
func (e *AsmEmitter) Emit(tokens []ast.Token) (string, error) {
	e.out.Reset()
	e.blocks = blockTracker{}

	e.out.WriteString(preamble)
	for _, tok := range tokens {
		if err := e.emitToken(tok); err != nil {
			return "", err
		}
	}
	if err := e.blocks.finish(); err != nil {
		return "", err
	}
	e.out.WriteString(epilogue)

	return e.out.String(), nil
}

func (e *AsmEmitter) emitToken(tok ast.Token) error {
	e.printf("    ; %s (%d:%d)\n", tok.Word.Text, tok.Pos().Line, tok.Pos().Col)

	switch tok.Kind {
	case ast.KindInt:
		if tok.Value >= math.MinInt32 && tok.Value <= math.MaxInt32 {
			e.emit("push %d", tok.Value)
		} else {
			// push only sign-extends a 32-bit immediate
			e.emit("mov rax, %d", tok.Value)
			e.emit("push rax")
		}

	case ast.KindAdd:
		e.binary("add rax, rbx")
	case ast.KindSub:
		e.binary("sub rax, rbx")
	case ast.KindMul:
		e.binary("imul rax, rbx")
	case ast.KindDiv:
		e.binary("cqo", "idiv rbx")

	case ast.KindEqual:
		e.compare("sete")
	case ast.KindGreater:
		e.compare("setg")
	case ast.KindLess:
		e.compare("setl")

	case ast.KindDup:
		e.emit("pop rax")
		e.emit("push rax")
		e.emit("push rax")
	case ast.KindDrop:
		e.emit("add rsp, 8")
	case ast.KindSwap:
		e.emit("pop rax")
		e.emit("pop rbx")
		e.emit("push rax")
		e.emit("push rbx")
	case ast.KindRot:
		// ( a b c -- b c a )
		e.emit("pop rcx")
		e.emit("pop rbx")
		e.emit("pop rax")
		e.emit("push rbx")
		e.emit("push rcx")
		e.emit("push rax")
	case ast.KindOver:
		e.emit("pop rbx")
		e.emit("pop rax")
		e.emit("push rax")
		e.emit("push rbx")
		e.emit("push rax")

	case ast.KindDump:
		e.emit("pop rdi")
		e.emit("call print_dec")
	case ast.KindAsciiDump:
		e.emit("pop rdi")
		e.emit("call print_char")

	case ast.KindIf:
		e.blocks.push(tok)
		e.emit("pop rax")
		e.emit("test rax, rax")
		e.emit("jz %s", labelEndIf(tok.Block))

	case ast.KindElse:
		if err := e.blocks.els(tok); err != nil {
			return err
		}
		e.emit("jmp %s", labelEndElse(tok.Block))
		e.label(labelEndIf(tok.Block))

	case ast.KindWhile:
		e.blocks.push(tok)
		e.label(labelLoopTop(tok.Block))

	case ast.KindDo:
		if _, err := e.blocks.do(tok); err != nil {
			return err
		}
		e.emit("pop rax")
		e.emit("test rax, rax")
		e.emit("jz %s", labelEndWhile(tok.Block))

	case ast.KindEnd:
		f, err := e.blocks.end(tok)
		if err != nil {
			return err
		}
		switch f.kind {
		case ast.KindIf:
			e.label(labelEndIf(f.id))
		case ast.KindElse:
			e.label(labelEndElse(f.id))
		case ast.KindDo:
			e.emit("jmp %s", labelLoopTop(f.loop))
			e.label(labelEndWhile(f.id))
		}

	default:
		return malformed(tok, fmt.Sprintf("unknown token kind %v", tok.Kind))
	}
	return nil
}

// binary pops b then a and pushes the result left in rax,
// so "a b -" computes a-b and "a b /" computes a/b.
func (e *AsmEmitter) binary(instrs ...string) {
	e.emit("pop rbx")
	e.emit("pop rax")
	for _, in := range instrs {
		e.emit("%s", in)
	}
	e.emit("push rax")
}

// compare pushes 1 when "a <op> b" holds for a pushed before b.
func (e *AsmEmitter) compare(set string) {
	e.emit("pop rbx")
	e.emit("pop rax")
	e.emit("cmp rax, rbx")
	e.emit("%s al", set)
	e.emit("movzx rax, al")
	e.emit("push rax")
}

func (e *AsmEmitter) emit(format string, args ...any) {
	e.out.WriteString("    ")
	e.printf(format, args...)
	e.out.WriteByte('\n')
}

func (e *AsmEmitter) label(name string) {
	e.out.WriteString(name)
	e.out.WriteString(":\n")
}

func (e *AsmEmitter) printf(format string, args ...any) {
	fmt.Fprintf(&e.out, format, args...)
}
