// Package asm 把栈机指令降级为 x86-64 机器码
//
// x86-64 指令编码格式：
// [前缀] [REX] [操作码] [ModR/M] [SIB] [位移] [立即数]
//
// REX 前缀：用于扩展寄存器和操作数大小
// - REX.W: 64 位操作数
// - REX.R: 扩展 ModR/M.reg 字段
// - REX.B: 扩展 ModR/M.r/m 或 SIB.base 字段
package asm

import (
	"debug/elf"
	"encoding/binary"

	"github.com/tangzhangming/elfc/internal/errors"
)

// ============================================================================
// 寄存器
// ============================================================================

// Reg x86-64 通用寄存器
type Reg int

const (
	RAX Reg = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

var regNames = [...]string{
	"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
}

// String 返回寄存器名称
func (r Reg) String() string {
	if r >= 0 && int(r) < len(regNames) {
		return regNames[r]
	}
	return "???"
}

// IsExtended 检查是否是扩展寄存器（需要 REX 前缀）
func (r Reg) IsExtended() bool {
	return r >= R8 && r <= R15
}

// LowBits 获取寄存器编码的低 3 位
func (r Reg) LowBits() byte {
	return byte(r) & 0x7
}

// ============================================================================
// 汇编器
// ============================================================================

// Reloc 需要链接器处理的重定位
type Reloc struct {
	Offset int          // 在代码中的偏移
	Symbol string       // 目标符号（节名或外部例程名）
	Type   elf.R_X86_64 // 重定位类型
	Addend int64        // 加数
}

// fixup 节内跳转的待回填位移
type fixup struct {
	offset int    // rel32 字段在代码中的偏移
	target string // 目标标签
}

// Assembler x86-64 汇编器
//
// 标签按名称记录；跳转和内部调用的 rel32 在 Finish 时回填，
// 引用节地址或外部例程的位置记录为 Reloc 交给目标文件。
type Assembler struct {
	code   []byte
	labels map[string]int
	fixups []fixup
	relocs []Reloc
	err    error // 第一个重复定义的标签，Finish 时返回
}

// NewAssembler 创建汇编器
func NewAssembler() *Assembler {
	return &Assembler{
		code:   make([]byte, 0, 1024),
		labels: make(map[string]int),
	}
}

// Len 返回当前代码长度
func (a *Assembler) Len() int {
	return len(a.code)
}

// Relocs 返回记录的重定位
func (a *Assembler) Relocs() []Reloc {
	return a.relocs
}

// LabelOffset 返回标签的代码偏移
func (a *Assembler) LabelOffset(name string) (int, bool) {
	off, ok := a.labels[name]
	return off, ok
}

// Label 在当前位置定义标签
//
// 同名标签只能定义一次；重复定义记为错误由 Finish 返回，
// 原有位置保持不变。
func (a *Assembler) Label(name string) {
	if _, ok := a.labels[name]; ok {
		if a.err == nil {
			a.err = errors.New(errors.E1005, name)
		}
		return
	}
	a.labels[name] = len(a.code)
}

// Finish 回填所有节内跳转并返回机器码
//
// 标签重复定义或目标标签未定义时返回 EmissionError。
func (a *Assembler) Finish() ([]byte, error) {
	if a.err != nil {
		return nil, a.err
	}
	for _, f := range a.fixups {
		target, ok := a.labels[f.target]
		if !ok {
			return nil, errors.New(errors.E1002, f.target)
		}
		// 相对偏移从 rel32 字段结束处算起
		rel := int64(target) - int64(f.offset+4)
		if rel < -1<<31 || rel > 1<<31-1 {
			return nil, errors.New(errors.E1003, rel)
		}
		binary.LittleEndian.PutUint32(a.code[f.offset:], uint32(int32(rel)))
	}
	return a.code, nil
}

// ============================================================================
// 底层编码
// ============================================================================

func (a *Assembler) emit(bytes ...byte) {
	a.code = append(a.code, bytes...)
}

func (a *Assembler) emitU32(v uint32) {
	a.code = binary.LittleEndian.AppendUint32(a.code, v)
}

// rex 构造 REX 前缀
func rex(w, r, x, b bool) byte {
	var v byte = 0x40
	if w {
		v |= 0x08
	}
	if r {
		v |= 0x04
	}
	if x {
		v |= 0x02
	}
	if b {
		v |= 0x01
	}
	return v
}

// modrm 构造 ModR/M 字节
func modrm(mod, reg, rm byte) byte {
	return (mod << 6) | ((reg & 0x7) << 3) | (rm & 0x7)
}

// emitMem 编码 [base+disp] 内存操作数
func (a *Assembler) emitMem(reg byte, base Reg, disp int32) {
	// RSP/R12 作为基址需要 SIB 字节
	needSIB := base == RSP || base == R12
	rm := base.LowBits()
	if needSIB {
		rm = 4
	}

	switch {
	case disp == 0 && base != RBP && base != R13:
		a.emit(modrm(0, reg, rm))
		if needSIB {
			a.emit(0x24)
		}
	case disp >= -128 && disp <= 127:
		a.emit(modrm(1, reg, rm))
		if needSIB {
			a.emit(0x24)
		}
		a.emit(byte(disp))
	default:
		a.emit(modrm(2, reg, rm))
		if needSIB {
			a.emit(0x24)
		}
		a.emitU32(uint32(disp))
	}
}

// emitRexB 扩展寄存器的单操作数指令需要 REX.B
func (a *Assembler) emitRexB(r Reg) {
	if r.IsExtended() {
		a.emit(rex(false, false, false, true))
	}
}

// ============================================================================
// 数据移动
// ============================================================================

// MovRegReg mov dst, src
func (a *Assembler) MovRegReg(dst, src Reg) {
	a.emit(rex(true, src.IsExtended(), false, dst.IsExtended()))
	a.emit(0x89)
	a.emit(modrm(3, src.LowBits(), dst.LowBits()))
}

// MovRegImm32 mov reg, imm32（符号扩展）
//
// 返回立即数字段的偏移，供调用方记录重定位。
func (a *Assembler) MovRegImm32(reg Reg, imm int32) int {
	a.emit(rex(true, false, false, reg.IsExtended()))
	a.emit(0xC7)
	a.emit(modrm(3, 0, reg.LowBits()))
	at := len(a.code)
	a.emitU32(uint32(imm))
	return at
}

// MovRegSym mov reg, symbol+addend（R_X86_64_32S）
func (a *Assembler) MovRegSym(reg Reg, sym string, addend int64) {
	at := a.MovRegImm32(reg, 0)
	a.relocs = append(a.relocs, Reloc{Offset: at, Symbol: sym, Type: elf.R_X86_64_32S, Addend: addend})
}

// MovRegMem mov dst, [base+disp]
func (a *Assembler) MovRegMem(dst, base Reg, disp int32) {
	a.emit(rex(true, dst.IsExtended(), false, base.IsExtended()))
	a.emit(0x8B)
	a.emitMem(dst.LowBits(), base, disp)
}

// MovzxReg8 movzx dst, src8
func (a *Assembler) MovzxReg8(dst, src Reg) {
	a.emit(rex(true, dst.IsExtended(), false, src.IsExtended()))
	a.emit(0x0F, 0xB6)
	a.emit(modrm(3, dst.LowBits(), src.LowBits()))
}

// ============================================================================
// 栈操作
// ============================================================================

// Push push reg
func (a *Assembler) Push(reg Reg) {
	a.emitRexB(reg)
	a.emit(0x50 + reg.LowBits())
}

// Pop pop reg
func (a *Assembler) Pop(reg Reg) {
	a.emitRexB(reg)
	a.emit(0x58 + reg.LowBits())
}

// PushImm32 push imm32（符号扩展到 64 位）
func (a *Assembler) PushImm32(imm int32) {
	if imm >= -128 && imm <= 127 {
		a.emit(0x6A, byte(imm))
		return
	}
	a.emit(0x68)
	a.emitU32(uint32(imm))
}

// PushMem push qword [base+disp]
func (a *Assembler) PushMem(base Reg, disp int32) {
	a.emitRexB(base)
	a.emit(0xFF)
	a.emitMem(6, base, disp)
}

// PopMem pop qword [base+disp]
func (a *Assembler) PopMem(base Reg, disp int32) {
	a.emitRexB(base)
	a.emit(0x8F)
	a.emitMem(0, base, disp)
}

// ============================================================================
// 算术与逻辑
// ============================================================================

// AddRegReg add dst, src
func (a *Assembler) AddRegReg(dst, src Reg) {
	a.emit(rex(true, src.IsExtended(), false, dst.IsExtended()))
	a.emit(0x01)
	a.emit(modrm(3, src.LowBits(), dst.LowBits()))
}

// SubRegReg sub dst, src
func (a *Assembler) SubRegReg(dst, src Reg) {
	a.emit(rex(true, src.IsExtended(), false, dst.IsExtended()))
	a.emit(0x29)
	a.emit(modrm(3, src.LowBits(), dst.LowBits()))
}

// group1Imm 编码 81/83 组立即数指令（add=0, or=1, and=4, sub=5, cmp=7）
func (a *Assembler) group1Imm(ext byte, reg Reg, imm int32) {
	a.emit(rex(true, false, false, reg.IsExtended()))
	if imm >= -128 && imm <= 127 {
		a.emit(0x83)
		a.emit(modrm(3, ext, reg.LowBits()))
		a.emit(byte(imm))
		return
	}
	a.emit(0x81)
	a.emit(modrm(3, ext, reg.LowBits()))
	a.emitU32(uint32(imm))
}

// SubRegImm32 sub reg, imm32
func (a *Assembler) SubRegImm32(reg Reg, imm int32) {
	a.group1Imm(5, reg, imm)
}

// AndRegImm32 and reg, imm32
func (a *Assembler) AndRegImm32(reg Reg, imm int32) {
	a.group1Imm(4, reg, imm)
}

// IMulRegReg imul dst, src
func (a *Assembler) IMulRegReg(dst, src Reg) {
	a.emit(rex(true, dst.IsExtended(), false, src.IsExtended()))
	a.emit(0x0F, 0xAF)
	a.emit(modrm(3, dst.LowBits(), src.LowBits()))
}

// CQO 符号扩展 RAX -> RDX:RAX
func (a *Assembler) CQO() {
	a.emit(0x48, 0x99)
}

// IDivReg idiv reg（RDX:RAX / reg -> RAX，余数 -> RDX）
func (a *Assembler) IDivReg(reg Reg) {
	a.emit(rex(true, false, false, reg.IsExtended()))
	a.emit(0xF7)
	a.emit(modrm(3, 7, reg.LowBits()))
}

// AndRegReg and dst, src
func (a *Assembler) AndRegReg(dst, src Reg) {
	a.emit(rex(true, src.IsExtended(), false, dst.IsExtended()))
	a.emit(0x21)
	a.emit(modrm(3, src.LowBits(), dst.LowBits()))
}

// OrRegReg or dst, src
func (a *Assembler) OrRegReg(dst, src Reg) {
	a.emit(rex(true, src.IsExtended(), false, dst.IsExtended()))
	a.emit(0x09)
	a.emit(modrm(3, src.LowBits(), dst.LowBits()))
}

// ShlRegImm shl reg, imm
func (a *Assembler) ShlRegImm(reg Reg, imm byte) {
	a.emit(rex(true, false, false, reg.IsExtended()))
	if imm == 1 {
		a.emit(0xD1)
		a.emit(modrm(3, 4, reg.LowBits()))
		return
	}
	a.emit(0xC1)
	a.emit(modrm(3, 4, reg.LowBits()))
	a.emit(imm)
}

// ============================================================================
// 比较
// ============================================================================

// CmpRegReg cmp left, right
func (a *Assembler) CmpRegReg(left, right Reg) {
	a.emit(rex(true, right.IsExtended(), false, left.IsExtended()))
	a.emit(0x39)
	a.emit(modrm(3, right.LowBits(), left.LowBits()))
}

// TestRegReg test reg1, reg2
func (a *Assembler) TestRegReg(reg1, reg2 Reg) {
	a.emit(rex(true, reg2.IsExtended(), false, reg1.IsExtended()))
	a.emit(0x85)
	a.emit(modrm(3, reg2.LowBits(), reg1.LowBits()))
}

// Cond 条件码（SETcc/Jcc 操作码的低 4 位）
type Cond byte

const (
	CondE  Cond = 0x4
	CondNE Cond = 0x5
	CondL  Cond = 0xC
	CondGE Cond = 0xD
	CondLE Cond = 0xE
	CondG  Cond = 0xF
)

// SetCC setcc reg8
func (a *Assembler) SetCC(cc Cond, reg Reg) {
	a.emitRexB(reg)
	a.emit(0x0F, 0x90|byte(cc))
	a.emit(modrm(3, 0, reg.LowBits()))
}

// ============================================================================
// 控制流
// ============================================================================

// Jmp jmp label
func (a *Assembler) Jmp(label string) {
	a.emit(0xE9)
	a.fixups = append(a.fixups, fixup{offset: len(a.code), target: label})
	a.emitU32(0)
}

// Jcc 条件跳转 jcc label
func (a *Assembler) Jcc(cc Cond, label string) {
	a.emit(0x0F, 0x80|byte(cc))
	a.fixups = append(a.fixups, fixup{offset: len(a.code), target: label})
	a.emitU32(0)
}

// Call 节内调用 call label
func (a *Assembler) Call(label string) {
	a.emit(0xE8)
	a.fixups = append(a.fixups, fixup{offset: len(a.code), target: label})
	a.emitU32(0)
}

// CallExternal 调用外部符号（R_X86_64_PC32，加数 -4）
func (a *Assembler) CallExternal(sym string) {
	a.emit(0xE8)
	a.relocs = append(a.relocs, Reloc{Offset: len(a.code), Symbol: sym, Type: elf.R_X86_64_PC32, Addend: -4})
	a.emitU32(0)
}

// Ret ret
func (a *Assembler) Ret() {
	a.emit(0xC3)
}
