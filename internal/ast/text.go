package ast

import (
	"strconv"
	"strings"

	"github.com/tangzhangming/elfc/internal/errors"
	"github.com/tangzhangming/elfc/internal/i18n"
	"github.com/tangzhangming/elfc/internal/token"
)

// ============================================================================
// 文本持久化形式
// ============================================================================
//
// 语法：
//
//	node := "(" node? DATA node? ")"
//	DATA := "'" name "'" | number | keyword-text
//
// 没有子节点的节点写作 (DATA)。左右子节点之间以单个空格分隔。
// 例如 x = 2 + 3 写作：
//
//	(('x') = ((2) + (3)))
//
// ============================================================================

// Format 把子树渲染为文本形式，空句柄返回空字符串
func Format(a *Arena, id NodeID) string {
	var sb strings.Builder
	write(&sb, a, id)
	return sb.String()
}

func write(sb *strings.Builder, a *Arena, id NodeID) {
	n := a.Node(id)
	if n == nil {
		return
	}
	sb.WriteByte('(')
	if !n.Left.IsNil() {
		write(sb, a, n.Left)
		sb.WriteByte(' ')
	}
	sb.WriteString(n.Data())
	if !n.Right.IsNil() {
		sb.WriteByte(' ')
		write(sb, a, n.Right)
	}
	sb.WriteByte(')')
}

// Parse 从文本形式读取一棵树，节点分配到 a 中
func Parse(a *Arena, filename, src string) (NodeID, error) {
	r := &reader{
		arena: a,
		src:   src,
		pos:   token.Position{Filename: filename, Line: 1, Column: 1},
	}
	root, err := r.node()
	if err != nil {
		return Nil, err
	}
	r.skipSpace()
	if !r.eof() {
		return Nil, r.errorf(i18n.ErrTrailingInput)
	}
	return root, nil
}

// reader 文本形式的递归下降读取器
type reader struct {
	arena *Arena
	src   string
	pos   token.Position
}

func (r *reader) eof() bool {
	return r.pos.Offset >= len(r.src)
}

func (r *reader) peek() byte {
	if r.eof() {
		return 0
	}
	return r.src[r.pos.Offset]
}

func (r *reader) advance() {
	if r.src[r.pos.Offset] == '\n' {
		r.pos.Line++
		r.pos.Column = 1
	} else {
		r.pos.Column++
	}
	r.pos.Offset++
}

func (r *reader) skipSpace() {
	for !r.eof() {
		switch r.peek() {
		case ' ', '\t', '\n', '\r':
			r.advance()
		default:
			return
		}
	}
}

func (r *reader) errorf(msgID string, args ...interface{}) error {
	return errors.NewMsg(errors.E0002, msgID, args...).At(r.pos)
}

func (r *reader) expect(c byte) error {
	r.skipSpace()
	if r.eof() {
		return r.errorf(i18n.ErrUnexpectedEOF)
	}
	if r.peek() != c {
		return r.errorf(i18n.ErrUnexpectedChar, rune(r.peek()))
	}
	r.advance()
	return nil
}

// node 读取一个完整节点 ( LEFT? DATA RIGHT? )
func (r *reader) node() (NodeID, error) {
	if err := r.expect('('); err != nil {
		return Nil, err
	}
	start := r.pos
	start.Column--
	start.Offset--

	var err error
	left := Nil
	r.skipSpace()
	if r.peek() == '(' {
		if left, err = r.node(); err != nil {
			return Nil, err
		}
	}

	r.skipSpace()
	n, err := r.data()
	if err != nil {
		return Nil, err
	}

	right := Nil
	r.skipSpace()
	if r.peek() == '(' {
		if right, err = r.node(); err != nil {
			return Nil, err
		}
	}

	if err := r.expect(')'); err != nil {
		return Nil, err
	}

	n.Left = left
	n.Right = right
	n.Pos = start
	return r.arena.alloc(n), nil
}

// data 读取 DATA 部分
func (r *reader) data() (Node, error) {
	if r.eof() {
		return Node{}, r.errorf(i18n.ErrUnexpectedEOF)
	}

	if r.peek() == '\'' {
		r.advance()
		begin := r.pos.Offset
		for !r.eof() && r.peek() != '\'' && r.peek() != '\n' {
			r.advance()
		}
		if r.eof() || r.peek() != '\'' {
			return Node{}, r.errorf(i18n.ErrUnterminatedName)
		}
		name := r.src[begin:r.pos.Offset]
		r.advance()
		return Node{Kind: KindIdent, Name: name}, nil
	}

	begin := r.pos.Offset
	for !r.eof() {
		c := r.peek()
		if c == '(' || c == ')' || c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			break
		}
		r.advance()
	}
	text := r.src[begin:r.pos.Offset]
	if text == "" {
		return Node{}, r.errorf(i18n.ErrUnexpectedChar, rune(r.peek()))
	}

	if looksNumeric(text) {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Node{}, r.errorf(i18n.ErrUnknownData, text)
		}
		return Node{Kind: KindNumber, Value: v}, nil
	}

	op := token.Lookup(text)
	if op == token.ILLEGAL {
		return Node{}, r.errorf(i18n.ErrUnknownData, text)
	}
	return Node{Kind: KindKeyword, Op: op}, nil
}

// looksNumeric 判断 DATA 是否为数字字面量
//
// 只接受以数字开头，或以符号/小数点紧跟数字开头的文本，
// 这样 "-" 仍然是减法关键字，"inf"/"nan" 不会被当作数字。
func looksNumeric(s string) bool {
	isDigit := func(c byte) bool { return c >= '0' && c <= '9' }
	switch {
	case isDigit(s[0]):
		return true
	case (s[0] == '-' || s[0] == '+' || s[0] == '.') && len(s) > 1:
		return isDigit(s[1]) || (s[1] == '.' && len(s) > 2 && isDigit(s[2]))
	}
	return false
}

// Equal 判断两棵子树结构是否相同（节点种类、数据和形状）
func Equal(a *Arena, x NodeID, b *Arena, y NodeID) bool {
	nx, ny := a.Node(x), b.Node(y)
	if nx == nil || ny == nil {
		return nx == nil && ny == nil
	}
	if nx.Kind != ny.Kind {
		return false
	}
	switch nx.Kind {
	case KindKeyword:
		if nx.Op != ny.Op {
			return false
		}
	case KindIdent:
		if nx.Name != ny.Name {
			return false
		}
	case KindNumber:
		if nx.Value != ny.Value {
			return false
		}
	}
	return Equal(a, nx.Left, b, ny.Left) && Equal(a, nx.Right, b, ny.Right)
}
