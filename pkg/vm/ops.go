package vm

const (
	OP_HALT      uint8 = 0x00
	OP_PUSH_C    uint8 = 0x02
	OP_ADD       uint8 = 0x10
	OP_SUB       uint8 = 0x11
	OP_MUL       uint8 = 0x12
	OP_DIV       uint8 = 0x13
	OP_EQ        uint8 = 0x14
	OP_GT        uint8 = 0x15
	OP_LT        uint8 = 0x16
	OP_DUP       uint8 = 0x18
	OP_DROP      uint8 = 0x19
	OP_SWAP      uint8 = 0x1A
	OP_ROT       uint8 = 0x1B
	OP_OVER      uint8 = 0x1C
	OP_DUMP      uint8 = 0x1D
	OP_EMIT      uint8 = 0x1E
	OP_JMP       uint8 = 0x20
	OP_JMP_FALSE uint8 = 0x21
	OP_EXIT      uint8 = 0x30
)

// MaxArg is the largest operand that fits an instruction word.
const MaxArg = 0x00FFFFFF

// Encode packs an opcode and its operand into one instruction word.
func Encode(op uint8, arg uint32) uint32 {
	return (uint32(op) << 24) | (arg & MaxArg)
}
