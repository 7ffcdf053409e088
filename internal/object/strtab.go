package object

import (
	"github.com/tangzhangming/elfc/internal/section"
)

// strtab 字符串表：按顺序追加以 NUL 结尾的名称
//
// 偏移 0 固定为空串。同名只追加一次。
type strtab struct {
	buf     *section.Buffer
	offsets map[string]uint32
}

func newStrtab(name string, limit int) (*strtab, error) {
	t := &strtab{
		buf:     section.New(name, 1, limit),
		offsets: map[string]uint32{"": 0},
	}
	if _, err := t.buf.Append([]byte{0}); err != nil {
		return nil, err
	}
	return t, nil
}

// add 追加名称并返回其偏移
func (t *strtab) add(name string) (uint32, error) {
	if off, ok := t.offsets[name]; ok {
		return off, nil
	}
	off, err := t.buf.Append(append([]byte(name), 0))
	if err != nil {
		return 0, err
	}
	t.offsets[name] = uint32(off)
	return uint32(off), nil
}
