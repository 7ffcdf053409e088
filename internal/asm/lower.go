package asm

import (
	"fmt"

	"github.com/tangzhangming/elfc/internal/codegen"
	"github.com/tangzhangming/elfc/internal/errors"
	"github.com/tangzhangming/elfc/internal/section"
	"github.com/tangzhangming/elfc/internal/symbol"
)

// ============================================================================
// 寄存器约定
// ============================================================================
//
//	RBX  全局帧基址（.data 起始地址）
//	R12  局部帧基址（.bss 中的帧栈，随调用前移）
//	RAX  返回值寄存器
//	R14  调用外部例程时保存 RSP
//	RCX  数组下标和二元运算的右操作数
//
// 操作数栈就是机器栈：每条语句执行完后栈是平衡的。
//
// ============================================================================

const (
	GlobalFrame = RBX
	LocalFrame  = R12
	ReturnReg   = RAX
	StackSave   = R14
)

// 节符号名
const (
	SymText   = ".text"
	SymRodata = ".rodata"
	SymData   = ".data"
	SymBss    = ".bss"
)

// System V 整数参数寄存器
var argRegs = [...]Reg{RDI, RSI, RDX, RCX, R8, R9}

// 入口例程共享的收尾代码
const epilogueLabel = symbol.LabelPrefix + "exit"

// Result 降级结果
//
// 偏移都是相对 .text 节起始的偏移。
type Result struct {
	Relocs    []Reloc
	Routines  map[string]int // 例程名 -> 偏移
	Entry     int            // 入口例程偏移
	EntrySize int            // 入口例程字节数（不含共享收尾）
	Size      int            // 追加到 .text 的字节数
	Literals  int            // 放入 .rodata 的宽立即数个数
}

// lowerer 单次降级的状态
type lowerer struct {
	asm      *Assembler
	rodata   *section.Buffer
	literals map[int64]int
	pows     int
}

// Lower 把程序降级为机器码，追加到 text；宽立即数放入 rodata
func Lower(prog *codegen.Program, text, rodata *section.Buffer) (*Result, error) {
	l := &lowerer{
		asm:      NewAssembler(),
		rodata:   rodata,
		literals: make(map[int64]int),
	}

	entrySize := 0
	for _, r := range prog.Routines {
		start := l.asm.Len()
		if err := l.routine(r); err != nil {
			return nil, err
		}
		if r.Entry {
			entrySize = l.asm.Len() - start
		}
	}
	l.epilogue()

	code, err := l.asm.Finish()
	if err != nil {
		return nil, err
	}
	base, err := text.Append(code)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Routines:  make(map[string]int, len(prog.Routines)),
		EntrySize: entrySize,
		Size:      len(code),
		Literals:  len(l.literals),
	}
	for _, r := range prog.Routines {
		off, _ := l.asm.LabelOffset(r.Name)
		res.Routines[r.Name] = base + off
		if r.Entry {
			res.Entry = base + off
		}
	}
	for _, rel := range l.asm.Relocs() {
		rel.Offset += base
		res.Relocs = append(res.Relocs, rel)
	}
	return res, nil
}

// routine 降级一个例程
func (l *lowerer) routine(r *codegen.Routine) error {
	a := l.asm
	a.Label(r.Name)
	if r.Entry {
		a.Push(GlobalFrame)
		a.Push(LocalFrame)
		a.Push(StackSave)
		a.MovRegSym(GlobalFrame, SymData, 0)
		a.MovRegSym(LocalFrame, SymBss, 0)
	}
	for _, in := range r.Code {
		if err := l.instr(r, in); err != nil {
			return err
		}
	}
	return nil
}

// epilogue 恢复入口例程保存的寄存器并返回
func (l *lowerer) epilogue() {
	a := l.asm
	a.Label(epilogueLabel)
	a.Pop(StackSave)
	a.Pop(LocalFrame)
	a.Pop(GlobalFrame)
	a.Ret()
}

var compareConds = map[codegen.Op]Cond{
	codegen.OpEq: CondE,
	codegen.OpNe: CondNE,
	codegen.OpGt: CondG,
	codegen.OpLt: CondL,
	codegen.OpGe: CondGE,
	codegen.OpLe: CondLE,
}

func (l *lowerer) instr(r *codegen.Routine, in codegen.Instruction) error {
	a := l.asm
	switch in.Op {
	case codegen.OpNop:

	case codegen.OpPush:
		return l.push(in.Arg)

	case codegen.OpPop:
		return l.pop(in.Arg)

	case codegen.OpAdd, codegen.OpSub, codegen.OpMul, codegen.OpDiv:
		a.Pop(RCX)
		a.Pop(RAX)
		switch in.Op {
		case codegen.OpAdd:
			a.AddRegReg(RAX, RCX)
		case codegen.OpSub:
			a.SubRegReg(RAX, RCX)
		case codegen.OpMul:
			a.IMulRegReg(RAX, RCX)
		case codegen.OpDiv:
			a.CQO()
			a.IDivReg(RCX)
		}
		a.Push(RAX)

	case codegen.OpPow:
		l.pow()

	case codegen.OpEq, codegen.OpNe, codegen.OpGt, codegen.OpLt, codegen.OpGe, codegen.OpLe:
		a.Pop(RCX)
		a.Pop(RAX)
		a.CmpRegReg(RAX, RCX)
		a.SetCC(compareConds[in.Op], RAX)
		a.MovzxReg8(RAX, RAX)
		a.Push(RAX)

	case codegen.OpAnd, codegen.OpOr:
		a.Pop(RCX)
		a.Pop(RAX)
		a.TestRegReg(RAX, RAX)
		a.SetCC(CondNE, RAX)
		a.TestRegReg(RCX, RCX)
		a.SetCC(CondNE, RCX)
		a.MovzxReg8(RAX, RAX)
		a.MovzxReg8(RCX, RCX)
		if in.Op == codegen.OpAnd {
			a.AndRegReg(RAX, RCX)
		} else {
			a.OrRegReg(RAX, RCX)
		}
		a.Push(RAX)

	case codegen.OpNot:
		a.Pop(RAX)
		a.TestRegReg(RAX, RAX)
		a.SetCC(CondE, RAX)
		a.MovzxReg8(RAX, RAX)
		a.Push(RAX)

	case codegen.OpCall:
		if in.External {
			l.callExternal(in)
		} else {
			a.Call(in.Arg.Label)
		}
		a.Push(ReturnReg)

	case codegen.OpRet:
		if r.Entry {
			a.Jmp(epilogueLabel)
		} else {
			a.Ret()
		}

	case codegen.OpLabel:
		a.Label(in.Arg.Label)

	case codegen.OpJmp:
		a.Jmp(in.Arg.Label)

	case codegen.OpJe:
		a.Pop(RCX)
		a.Pop(RAX)
		a.CmpRegReg(RAX, RCX)
		a.Jcc(CondE, in.Arg.Label)

	default:
		return fmt.Errorf("asm: cannot lower %s", in)
	}
	return nil
}

// callExternal 按 System V 约定调用外部例程
//
// 实参已经按调用协议写入 [r12 + 8*i]；调用前把 RSP 对齐到 16，
// RAX 清零以兼容可变参数例程。
func (l *lowerer) callExternal(in codegen.Instruction) {
	a := l.asm
	a.MovRegReg(StackSave, RSP)
	a.AndRegImm32(RSP, -16)
	for i := 0; i < in.Arity && i < len(argRegs); i++ {
		a.MovRegMem(argRegs[i], LocalFrame, int32(i*codegen.WordSize))
	}
	a.MovRegImm32(RAX, 0)
	a.CallExternal(in.Arg.Label)
	a.MovRegReg(RSP, StackSave)
}

// pow 内联乘法循环，指数 <= 0 时结果为 1
func (l *lowerer) pow() {
	a := l.asm
	loop := fmt.Sprintf("%spow%d", symbol.LabelPrefix, l.pows)
	done := loop + ".done"
	l.pows++

	a.Pop(RCX) // 指数
	a.Pop(RDX) // 底数
	a.MovRegImm32(RAX, 1)
	a.Label(loop)
	a.TestRegReg(RCX, RCX)
	a.Jcc(CondLE, done)
	a.IMulRegReg(RAX, RDX)
	a.SubRegImm32(RCX, 1)
	a.Jmp(loop)
	a.Label(done)
	a.Push(RAX)
}

// frameReg 返回帧对应的基址寄存器
func frameReg(frame symbol.ScopeKind) Reg {
	if frame == symbol.Global {
		return GlobalFrame
	}
	return LocalFrame
}

// disp 把字偏移换算成字节位移
func disp(shift int) (int32, error) {
	d := int64(shift) * codegen.WordSize
	if d < -1<<31 || d > 1<<31-1 {
		return 0, errors.New(errors.E1003, d)
	}
	return int32(d), nil
}

// address 计算内存操作数的基址寄存器和位移
//
// 带下标时从栈顶弹出下标到 RCX，RCX = base + index*8。
func (l *lowerer) address(op codegen.Operand) (Reg, int32, error) {
	d, err := disp(op.Shift)
	if err != nil {
		return 0, 0, err
	}
	base := frameReg(op.Frame)
	if !op.Indexed {
		return base, d, nil
	}
	a := l.asm
	a.Pop(RCX)
	a.ShlRegImm(RCX, 3)
	a.AddRegReg(RCX, base)
	return RCX, d, nil
}

func register(r codegen.Register) Reg {
	if r == codegen.RegFrame {
		return LocalFrame
	}
	return ReturnReg
}

func (l *lowerer) push(op codegen.Operand) error {
	a := l.asm
	switch op.Kind {
	case codegen.OperandImm:
		if op.Imm >= -1<<31 && op.Imm <= 1<<31-1 {
			a.PushImm32(int32(op.Imm))
			return nil
		}
		off, err := l.literal(op.Imm)
		if err != nil {
			return err
		}
		a.MovRegSym(RAX, SymRodata, int64(off))
		a.PushMem(RAX, 0)
	case codegen.OperandMem:
		base, d, err := l.address(op)
		if err != nil {
			return err
		}
		a.PushMem(base, d)
	case codegen.OperandReg:
		a.Push(register(op.Reg))
	default:
		return fmt.Errorf("asm: cannot push %s", op)
	}
	return nil
}

func (l *lowerer) pop(op codegen.Operand) error {
	a := l.asm
	switch op.Kind {
	case codegen.OperandMem:
		base, d, err := l.address(op)
		if err != nil {
			return err
		}
		a.PopMem(base, d)
	case codegen.OperandReg:
		a.Pop(register(op.Reg))
	default:
		return fmt.Errorf("asm: cannot pop into %s", op)
	}
	return nil
}

// literal 把 64 位立即数放入 .rodata，相同的值只存一份
func (l *lowerer) literal(v int64) (int, error) {
	if off, ok := l.literals[v]; ok {
		return off, nil
	}
	if err := l.rodata.AlignTo(codegen.WordSize); err != nil {
		return 0, err
	}
	off, _, err := l.rodata.Reserve(codegen.WordSize)
	if err != nil {
		return 0, err
	}
	if err := l.rodata.PatchU64(off, uint64(v)); err != nil {
		return 0, err
	}
	l.literals[v] = off
	return off, nil
}
