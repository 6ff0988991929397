package vm

import (
	"errors"
	"fmt"
	"io"
)

var (
	ErrStackOverflow  = errors.New("vm: stack overflow")
	ErrStackUnderflow = errors.New("vm: stack underflow")
	ErrGasExhausted   = errors.New("vm: gas exhausted")
	ErrDivideByZero   = errors.New("vm: division by zero")
)

const StackDepth = 1024

// Machine executes bytecode with the same observable behaviour as the
// native program: dump and asciidump write to Out, and the value left on
// top of the stack becomes the exit status.
// It uses a fixed-size array to ensure a predictable memory footprint.
type Machine struct {
	Stack [StackDepth]int64
	SP    int // Stack Pointer

	IP   int      // Instruction Pointer
	Code []uint32 // Bytecode instructions

	Constants []int64 // Constant pool

	Out      io.Writer
	ExitCode int
}

// Load installs a program and rewinds the machine.
func (m *Machine) Load(bc *Bytecode) {
	m.Reset()
	m.Code = bc.Instructions
	m.Constants = bc.Constants
}

// Reset clears the machine state for reuse.
func (m *Machine) Reset() {
	m.SP = 0
	m.IP = 0
	m.ExitCode = 0
	for i := range m.Stack {
		m.Stack[i] = 0
	}
}

// Push adds a value to the stack. Panics on overflow.
func (m *Machine) Push(v int64) {
	if m.SP >= StackDepth {
		panic(ErrStackOverflow)
	}
	m.Stack[m.SP] = v
	m.SP++
}

// Pop removes and returns the top value from the stack. Panics on underflow.
func (m *Machine) Pop() int64 {
	if m.SP <= 0 {
		panic(ErrStackUnderflow)
	}
	m.SP--
	return m.Stack[m.SP]
}

// Run executes instructions until HALT/EXIT, error, or gas exhaustion.
func (m *Machine) Run(gasLimit int) (err error) {
	// Convert stack panics to errors
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && (e == ErrStackOverflow || e == ErrStackUnderflow) {
				err = fmt.Errorf("%w (IP: %d)", e, m.IP)
				return
			}
			panic(r)
		}
	}()

	out := m.Out
	if out == nil {
		out = io.Discard
	}

	for i := 0; i < gasLimit; i++ {
		if m.IP < 0 || m.IP >= len(m.Code) {
			return fmt.Errorf("vm: instruction pointer %d out of range", m.IP)
		}

		instr := m.Code[m.IP]
		op := uint8(instr >> 24)
		arg := instr & MaxArg
		m.IP++

		switch op {
		case OP_HALT:
			return nil

		case OP_PUSH_C:
			if int(arg) >= len(m.Constants) {
				return fmt.Errorf("vm: constant %d out of range", arg)
			}
			m.Push(m.Constants[arg])

		case OP_ADD:
			b, a := m.Pop(), m.Pop()
			m.Push(a + b)

		case OP_SUB:
			b, a := m.Pop(), m.Pop()
			m.Push(a - b)

		case OP_MUL:
			b, a := m.Pop(), m.Pop()
			m.Push(a * b)

		case OP_DIV:
			b, a := m.Pop(), m.Pop()
			if b == 0 {
				return ErrDivideByZero
			}
			m.Push(a / b)

		case OP_EQ:
			b, a := m.Pop(), m.Pop()
			m.Push(boolInt(a == b))

		case OP_GT:
			b, a := m.Pop(), m.Pop()
			m.Push(boolInt(a > b))

		case OP_LT:
			b, a := m.Pop(), m.Pop()
			m.Push(boolInt(a < b))

		case OP_DUP:
			a := m.Pop()
			m.Push(a)
			m.Push(a)

		case OP_DROP:
			m.Pop()

		case OP_SWAP:
			b, a := m.Pop(), m.Pop()
			m.Push(b)
			m.Push(a)

		case OP_ROT:
			// ( a b c -- b c a )
			c, b, a := m.Pop(), m.Pop(), m.Pop()
			m.Push(b)
			m.Push(c)
			m.Push(a)

		case OP_OVER:
			b, a := m.Pop(), m.Pop()
			m.Push(a)
			m.Push(b)
			m.Push(a)

		case OP_DUMP:
			if _, err := fmt.Fprintf(out, "%d\n", m.Pop()); err != nil {
				return err
			}

		case OP_EMIT:
			if _, err := out.Write([]byte{byte(m.Pop())}); err != nil {
				return err
			}

		case OP_JMP:
			m.IP = int(arg)

		case OP_JMP_FALSE:
			if m.Pop() == 0 {
				m.IP = int(arg)
			}

		case OP_EXIT:
			if m.SP > 0 {
				m.ExitCode = int(m.Pop() & 0xFF)
			}
			return nil

		default:
			return fmt.Errorf("vm: unknown opcode 0x%02x", op)
		}
	}

	return ErrGasExhausted
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
