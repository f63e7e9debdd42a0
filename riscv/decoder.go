package riscv

// Major opcode field values (bits 6:0), per the RV32I base encoding.
const (
	majorOpRType    = 0b0110011
	majorOpIType    = 0b0010011
	majorOpLoad     = 0b0000011
	majorOpStore    = 0b0100011
	majorOpBranch   = 0b1100011
	majorOpJAL      = 0b1101111
	majorOpJALR     = 0b1100111
	majorOpLUI      = 0b0110111
	majorOpAUIPC    = 0b0010111
	majorOpSystem   = 0b1110011
	majorOpDynamic  = 0b0001011 // custom R-type class, spec.md §4.2
)

func extractOpcode(raw uint32) uint8 { return uint8(raw & 0x7F) }
func extractRd(raw uint32) uint8     { return uint8((raw >> 7) & 0x1F) }
func extractFunct3(raw uint32) uint8 { return uint8((raw >> 12) & 0x7) }
func extractRs1(raw uint32) uint8    { return uint8((raw >> 15) & 0x1F) }
func extractRs2(raw uint32) uint8    { return uint8((raw >> 20) & 0x1F) }
func extractFunct7(raw uint32) uint8 { return uint8((raw >> 25) & 0x7F) }

func signExtend(value uint32, bits int) int32 {
	shift := 32 - bits
	return int32(value<<shift) >> shift
}

func immI(raw uint32) int32 {
	return signExtend(raw>>20, 12)
}

func immS(raw uint32) int32 {
	v := ((raw >> 25) << 5) | ((raw >> 7) & 0x1F)
	return signExtend(v, 12)
}

func immB(raw uint32) int32 {
	v := ((raw>>31)&1)<<12 | ((raw>>7)&1)<<11 | ((raw>>25)&0x3F)<<5 | ((raw>>8)&0xF)<<1
	return signExtend(v, 13)
}

func immU(raw uint32) int32 {
	return int32(raw & 0xFFFFF000)
}

func immJ(raw uint32) int32 {
	v := ((raw>>31)&1)<<20 | ((raw>>12)&0xFF)<<12 | ((raw>>20)&1)<<11 | ((raw>>21)&0x3FF)<<1
	return signExtend(v, 21)
}

var rTypeFuncts = map[[2]uint8]BuiltinOpcode{
	{0x0, 0x00}: ADD, {0x0, 0x20}: SUB, {0x1, 0x00}: SLL,
	{0x2, 0x00}: SLT, {0x3, 0x00}: SLTU, {0x4, 0x00}: XOR,
	{0x5, 0x00}: SRL, {0x5, 0x20}: SRA, {0x6, 0x00}: OR, {0x7, 0x00}: AND,
}

var iTypeArithFuncts = map[uint8]BuiltinOpcode{
	0x0: ADDI, 0x2: SLTI, 0x3: SLTIU, 0x4: XORI, 0x6: ORI, 0x7: ANDI,
}

var loadFuncts = map[uint8]BuiltinOpcode{
	0x0: LB, 0x1: LH, 0x2: LW, 0x4: LBU, 0x5: LHU,
}

var storeFuncts = map[uint8]BuiltinOpcode{
	0x0: SB, 0x1: SH, 0x2: SW,
}

var branchFuncts = map[uint8]BuiltinOpcode{
	0x0: BEQ, 0x1: BNE, 0x4: BLT, 0x5: BGE, 0x6: BLTU, 0x7: BGEU,
}

// Decode maps a raw 32-bit encoding to a structured Instruction. Unknown
// encodings never panic and are never silently dropped: they become the
// UNIMPL sentinel, which raises UndefinedInstruction if ever executed
// (spec.md §4.2, §4.3).
func Decode(raw uint32) Instruction {
	major := extractOpcode(raw)
	fn3 := extractFunct3(raw)
	fn7 := extractFunct7(raw)
	rd := extractRd(raw)
	rs1 := extractRs1(raw)
	rs2 := extractRs2(raw)

	switch major {
	case majorOpRType:
		if b, ok := rTypeFuncts[[2]uint8{fn3, fn7}]; ok {
			return Instruction{Opcode: Opcode{Builtin: b, Funct3: fn3, Funct7: fn7}, Rd: rd, Rs1: rs1, Rs2: rs2, Type: TypeR, Raw: raw}
		}
	case majorOpIType:
		if fn3 == 0x1 && fn7 == 0x00 {
			return Instruction{Opcode: Opcode{Builtin: SLLI, Funct3: fn3, Funct7: fn7}, Rd: rd, Rs1: rs1, Imm: int32(rs2), Type: TypeI, Raw: raw, HasImm: true}
		}
		if fn3 == 0x5 && (fn7 == 0x00 || fn7 == 0x20) {
			b := SRLI
			if fn7 == 0x20 {
				b = SRAI
			}
			return Instruction{Opcode: Opcode{Builtin: b, Funct3: fn3, Funct7: fn7}, Rd: rd, Rs1: rs1, Imm: int32(rs2), Type: TypeI, Raw: raw, HasImm: true}
		}
		if b, ok := iTypeArithFuncts[fn3]; ok {
			return Instruction{Opcode: Opcode{Builtin: b, Funct3: fn3}, Rd: rd, Rs1: rs1, Imm: immI(raw), Type: TypeI, Raw: raw, HasImm: true}
		}
	case majorOpLoad:
		if b, ok := loadFuncts[fn3]; ok {
			return Instruction{Opcode: Opcode{Builtin: b, Funct3: fn3}, Rd: rd, Rs1: rs1, Imm: immI(raw), Type: TypeI, Raw: raw, HasImm: true}
		}
	case majorOpStore:
		if b, ok := storeFuncts[fn3]; ok {
			return Instruction{Opcode: Opcode{Builtin: b, Funct3: fn3}, Rs1: rs1, Rs2: rs2, Imm: immS(raw), Type: TypeS, Raw: raw, HasImm: true}
		}
	case majorOpBranch:
		if b, ok := branchFuncts[fn3]; ok {
			return Instruction{Opcode: Opcode{Builtin: b, Funct3: fn3}, Rs1: rs1, Rs2: rs2, Imm: immB(raw), Type: TypeB, Raw: raw, HasImm: true}
		}
	case majorOpJAL:
		return Instruction{Opcode: Opcode{Builtin: JAL}, Rd: rd, Imm: immJ(raw), Type: TypeJ, Raw: raw, HasImm: true}
	case majorOpJALR:
		if fn3 == 0x0 {
			return Instruction{Opcode: Opcode{Builtin: JALR, Funct3: fn3}, Rd: rd, Rs1: rs1, Imm: immI(raw), Type: TypeI, Raw: raw, HasImm: true}
		}
	case majorOpLUI:
		return Instruction{Opcode: Opcode{Builtin: LUI}, Rd: rd, Imm: immU(raw), Type: TypeU, Raw: raw, HasImm: true}
	case majorOpAUIPC:
		return Instruction{Opcode: Opcode{Builtin: AUIPC}, Rd: rd, Imm: immU(raw), Type: TypeU, Raw: raw, HasImm: true}
	case majorOpSystem:
		if fn3 == 0 && rd == 0 && rs1 == 0 {
			switch extractI(raw) {
			case 0:
				return Instruction{Opcode: Opcode{Builtin: ECALL}, Type: TypeI, Raw: raw}
			case 1:
				return Instruction{Opcode: Opcode{Builtin: EBREAK}, Type: TypeI, Raw: raw}
			}
		}
	case majorOpDynamic:
		return Instruction{
			Opcode: Opcode{Builtin: CUSTOM0, Funct3: fn3, Funct7: fn7},
			Rd:     rd, Rs1: rs1, Rs2: rs2, Type: TypeR, Raw: raw,
		}
	}

	return Unimpl(raw)
}

func extractI(raw uint32) uint32 { return raw >> 20 }
