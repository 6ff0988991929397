package vm

// Bytecode represents the compiled output of a program.
type Bytecode struct {
	Instructions []uint32
	Constants    []int64
}
