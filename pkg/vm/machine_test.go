package vm_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/agenthands/stackc/pkg/vm"
)

func TestMachineReset(t *testing.T) {
	m := &vm.Machine{}

	// Dirty the machine
	m.SP = 10
	m.IP = 5
	m.ExitCode = 3
	m.Stack[0] = 100

	m.Reset()

	if m.SP != 0 || m.IP != 0 || m.ExitCode != 0 {
		t.Errorf("Reset failed: SP=%d, IP=%d, ExitCode=%d", m.SP, m.IP, m.ExitCode)
	}
	if m.Stack[0] != 0 {
		t.Errorf("Reset failed to zero out stack")
	}
}

func TestMachineStackOps(t *testing.T) {
	m := &vm.Machine{}

	m.Push(42)
	if m.SP != 1 {
		t.Errorf("expected SP=1, got %d", m.SP)
	}

	if val := m.Pop(); val != 42 {
		t.Errorf("expected 42, got %d", val)
	}
	if m.SP != 0 {
		t.Errorf("expected SP=0, got %d", m.SP)
	}
}

func TestMachineStackOverflow(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic on stack overflow")
		}
	}()

	m := &vm.Machine{}
	for i := 0; i <= vm.StackDepth; i++ {
		m.Push(int64(i))
	}
}

func run(t *testing.T, constants []int64, code ...uint32) (*vm.Machine, string, error) {
	t.Helper()
	var out bytes.Buffer
	m := &vm.Machine{Out: &out}
	m.Load(&vm.Bytecode{Instructions: code, Constants: constants})
	err := m.Run(1000)
	return m, out.String(), err
}

func TestMachineArithmetic(t *testing.T) {
	tests := []struct {
		name string
		op   uint8
		a, b int64
		want int64
	}{
		{"Add", vm.OP_ADD, 2, 3, 5},
		{"Sub", vm.OP_SUB, 10, 3, 7},
		{"Mul", vm.OP_MUL, -4, 3, -12},
		{"Div", vm.OP_DIV, 17, 5, 3},
		{"Div Negative", vm.OP_DIV, -7, 2, -3},
		{"Eq True", vm.OP_EQ, 4, 4, 1},
		{"Eq False", vm.OP_EQ, 4, 5, 0},
		{"Gt", vm.OP_GT, 5, 4, 1},
		{"Gt Reversed", vm.OP_GT, 4, 5, 0},
		{"Lt", vm.OP_LT, 4, 5, 1},
		{"Lt Reversed", vm.OP_LT, 5, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, err := run(t, []int64{tt.a, tt.b},
				vm.Encode(vm.OP_PUSH_C, 0),
				vm.Encode(vm.OP_PUSH_C, 1),
				vm.Encode(tt.op, 0),
				vm.Encode(vm.OP_HALT, 0),
			)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.SP != 1 || m.Stack[0] != tt.want {
				t.Errorf("expected [%d], got %v", tt.want, m.Stack[:m.SP])
			}
		})
	}
}

func TestMachineStackWords(t *testing.T) {
	tests := []struct {
		name string
		op   uint8
		want []int64
	}{
		{"Dup", vm.OP_DUP, []int64{1, 2, 3, 3}},
		{"Drop", vm.OP_DROP, []int64{1, 2}},
		{"Swap", vm.OP_SWAP, []int64{1, 3, 2}},
		{"Rot", vm.OP_ROT, []int64{2, 3, 1}},
		{"Over", vm.OP_OVER, []int64{1, 2, 3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, err := run(t, []int64{1, 2, 3},
				vm.Encode(vm.OP_PUSH_C, 0),
				vm.Encode(vm.OP_PUSH_C, 1),
				vm.Encode(vm.OP_PUSH_C, 2),
				vm.Encode(tt.op, 0),
				vm.Encode(vm.OP_HALT, 0),
			)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := m.Stack[:m.SP]
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("expected %v, got %v", tt.want, got)
					break
				}
			}
		})
	}
}

func TestMachineOutput(t *testing.T) {
	_, out, err := run(t, []int64{-15, 'A'},
		vm.Encode(vm.OP_PUSH_C, 0),
		vm.Encode(vm.OP_DUMP, 0),
		vm.Encode(vm.OP_PUSH_C, 1),
		vm.Encode(vm.OP_EMIT, 0),
		vm.Encode(vm.OP_HALT, 0),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "-15\nA" {
		t.Errorf("expected %q, got %q", "-15\nA", out)
	}
}

func TestMachineJumps(t *testing.T) {
	// 0 PUSH 0 ; 1 JMP_FALSE 4 ; 2 PUSH 7 ; 3 DUMP ; 4 HALT
	_, out, err := run(t, []int64{0, 7},
		vm.Encode(vm.OP_PUSH_C, 0),
		vm.Encode(vm.OP_JMP_FALSE, 4),
		vm.Encode(vm.OP_PUSH_C, 1),
		vm.Encode(vm.OP_DUMP, 0),
		vm.Encode(vm.OP_HALT, 0),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("false branch should be skipped, got %q", out)
	}
}

func TestMachineExit(t *testing.T) {
	m, _, err := run(t, []int64{258},
		vm.Encode(vm.OP_PUSH_C, 0),
		vm.Encode(vm.OP_EXIT, 0),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ExitCode != 2 {
		t.Errorf("expected exit status 2 (low byte of 258), got %d", m.ExitCode)
	}

	m, _, err = run(t, nil, vm.Encode(vm.OP_EXIT, 0))
	if err != nil || m.ExitCode != 0 {
		t.Errorf("empty stack should exit 0, got %d (%v)", m.ExitCode, err)
	}
}

func TestMachineErrors(t *testing.T) {
	_, _, err := run(t, nil, vm.Encode(vm.OP_ADD, 0))
	if !errors.Is(err, vm.ErrStackUnderflow) {
		t.Errorf("expected underflow, got %v", err)
	}

	_, _, err = run(t, []int64{1, 0},
		vm.Encode(vm.OP_PUSH_C, 0),
		vm.Encode(vm.OP_PUSH_C, 1),
		vm.Encode(vm.OP_DIV, 0),
	)
	if !errors.Is(err, vm.ErrDivideByZero) {
		t.Errorf("expected division by zero, got %v", err)
	}

	_, _, err = run(t, nil, vm.Encode(vm.OP_JMP, 0))
	if !errors.Is(err, vm.ErrGasExhausted) {
		t.Errorf("expected gas exhaustion, got %v", err)
	}

	_, _, err = run(t, nil, vm.Encode(0x7F, 0))
	if err == nil {
		t.Errorf("expected unknown opcode error")
	}
}
