package codegen

import (
	"fmt"
	"strings"

	"github.com/tangzhangming/elfc/internal/symbol"
)

// ============================================================================
// 栈机指令定义
// ============================================================================

// WordSize 机器字大小（字节）
const WordSize = 8

// Op 指令操作码
type Op uint8

const (
	OpNop Op = iota

	// 栈操作
	OpPush
	OpPop

	// 算术运算（弹出两个，压入一个）
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpPow

	// 比较运算（结果为 0/1）
	OpEq
	OpNe
	OpGt
	OpLt
	OpGe
	OpLe

	// 逻辑运算（结果为 0/1）
	OpAnd
	OpOr
	OpNot

	// 控制流
	OpCall
	OpRet
	OpLabel
	OpJmp
	OpJe
)

var opNames = [...]string{
	OpNop:   "nop",
	OpPush:  "push",
	OpPop:   "pop",
	OpAdd:   "add",
	OpSub:   "sub",
	OpMul:   "mul",
	OpDiv:   "div",
	OpPow:   "pow",
	OpEq:    "eq",
	OpNe:    "ne",
	OpGt:    "gt",
	OpLt:    "lt",
	OpGe:    "ge",
	OpLe:    "le",
	OpAnd:   "and",
	OpOr:    "or",
	OpNot:   "not",
	OpCall:  "call",
	OpRet:   "ret",
	OpLabel: "label",
	OpJmp:   "jmp",
	OpJe:    "je",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", op)
}

// IsBinary 判断是否为消耗两个栈单元的运算
func (op Op) IsBinary() bool {
	return op >= OpAdd && op <= OpOr
}

// ============================================================================
// 操作数
// ============================================================================

// OperandKind 操作数种类
type OperandKind uint8

const (
	OperandNone  OperandKind = iota
	OperandImm               // 立即数
	OperandMem               // 帧内存 [frame+shift]
	OperandReg               // 寄存器
	OperandLabel             // 标签或函数名
)

// Register 栈机可见的寄存器
type Register uint8

const (
	RegReturn Register = iota // 返回值寄存器
	RegFrame                  // 局部帧基址寄存器
)

func (r Register) String() string {
	if r == RegReturn {
		return "rax"
	}
	return "rlocal"
}

// Operand 指令操作数
//
// Indexed 的内存操作数在运行时从操作数栈顶弹出下标，
// 地址为 frame + (Shift + index) * WordSize。
type Operand struct {
	Kind    OperandKind
	Imm     int64
	Frame   symbol.ScopeKind
	Shift   int
	Indexed bool
	Reg     Register
	Label   string
}

// Imm 立即数操作数
func Imm(v int64) Operand {
	return Operand{Kind: OperandImm, Imm: v}
}

// Mem 帧内存操作数
func Mem(frame symbol.ScopeKind, shift int) Operand {
	return Operand{Kind: OperandMem, Frame: frame, Shift: shift}
}

// Reg 寄存器操作数
func Reg(r Register) Operand {
	return Operand{Kind: OperandReg, Reg: r}
}

// Label 标签操作数
func Label(name string) Operand {
	return Operand{Kind: OperandLabel, Label: name}
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandImm:
		return fmt.Sprintf("%d", o.Imm)
	case OperandMem:
		if o.Indexed {
			return fmt.Sprintf("[%s+%d+rcx]", o.Frame, o.Shift)
		}
		return fmt.Sprintf("[%s+%d]", o.Frame, o.Shift)
	case OperandReg:
		return o.Reg.String()
	case OperandLabel:
		return o.Label
	}
	return ""
}

// ============================================================================
// 指令
// ============================================================================

// Instruction 栈机指令
//
// call 指令返回后，被调用者在返回寄存器中的结果被压入操作数栈。
// External 的 call 目标是外部运行时例程，参数按 Arity 个字
// 从局部帧窗口读取。
type Instruction struct {
	Op       Op
	Arg      Operand
	Arity    int
	External bool
}

func (in Instruction) String() string {
	switch in.Op {
	case OpLabel:
		return in.Arg.Label + ":"
	case OpPush, OpPop, OpCall, OpJmp, OpJe:
		return in.Op.String() + " " + in.Arg.String()
	}
	return in.Op.String()
}

// Routine 一段连续生成的代码：入口例程或一个用户函数
type Routine struct {
	Name      string
	Entry     bool
	Function  *symbol.Function // 入口例程为 nil
	Code      []Instruction
	FrameSize int // 局部帧大小（字）
}

// Listing 返回例程的指令文本，每行一条
func (r *Routine) Listing() []string {
	lines := make([]string, len(r.Code))
	for i, in := range r.Code {
		lines[i] = in.String()
	}
	return lines
}

// Program 代码生成结果
type Program struct {
	Routines   []*Routine
	Globals    []*symbol.Variable
	GlobalSize int                // 全局区大小（字）
	Externals  []*symbol.Function // 被引用的外部例程（首次引用顺序）
	Labels     int                // 分配的标签个数
}

// Entry 返回入口例程
func (p *Program) Entry() *Routine {
	for _, r := range p.Routines {
		if r.Entry {
			return r
		}
	}
	return nil
}

// Routine 按名称查找例程
func (p *Program) Routine(name string) *Routine {
	for _, r := range p.Routines {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// Len 返回全部例程的指令总数
func (p *Program) Len() int {
	n := 0
	for _, r := range p.Routines {
		n += len(r.Code)
	}
	return n
}

// String 返回整个程序的汇编风格清单
func (p *Program) String() string {
	var sb strings.Builder
	for i, r := range p.Routines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s:\n", r.Name)
		for _, in := range r.Code {
			if in.Op == OpLabel {
				sb.WriteString(in.String())
			} else {
				sb.WriteString("\t")
				sb.WriteString(in.String())
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
