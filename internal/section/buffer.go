// Package section 实现目标文件各节的字节缓冲区
package section

import (
	"encoding/binary"

	"github.com/tangzhangming/elfc/internal/errors"
)

// ============================================================================
// Buffer 节缓冲区
// ============================================================================
//
// Buffer 是只追加的字节存储，每个节一个：
// - 代码生成期间只能追加（Append）或预留（Reserve）后原地写入
// - Finalize 之后不可再修改，返回不可变视图
// - 容量从 256 字节开始按倍数增长
// - 超过上限视为资源耗尽（ResourceError，总是致命）
//
// NOBITS 节（.bss）没有文件内容，只记录声明大小。
//
// ============================================================================

// InitialCapacity 初始容量（字节）
const InitialCapacity = 256

// DefaultLimit 默认上限：1 GiB
const DefaultLimit = 1 << 30

// Buffer 节缓冲区
type Buffer struct {
	name   string // 节名（用于诊断）
	data   []byte // 文件内容
	size   int    // 声明大小（NOBITS 节不等于 len(data)）
	align  int    // 对齐要求
	limit  int    // 大小上限
	nobits bool   // 是否为 NOBITS 节
	frozen bool   // 是否已定稿
}

// New 创建节缓冲区
//
// 参数:
//   - name: 节名
//   - align: 对齐要求（sh_addralign），<= 0 时为 1
//   - limit: 大小上限，<= 0 时使用 DefaultLimit
func New(name string, align, limit int) *Buffer {
	if align <= 0 {
		align = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Buffer{
		name:  name,
		data:  make([]byte, 0, InitialCapacity),
		align: align,
		limit: limit,
	}
}

// NewNoBits 创建 NOBITS 节（只有声明大小，没有文件内容）
func NewNoBits(name string, align, limit int) *Buffer {
	b := New(name, align, limit)
	b.data = nil
	b.nobits = true
	return b
}

// Name 返回节名
func (b *Buffer) Name() string { return b.name }

// Align 返回对齐要求
func (b *Buffer) Align() int { return b.align }

// Size 返回声明大小
func (b *Buffer) Size() int { return b.size }

// Len 返回文件内容长度（NOBITS 节为 0）
func (b *Buffer) Len() int { return len(b.data) }

// NoBits 是否为 NOBITS 节
func (b *Buffer) NoBits() bool { return b.nobits }

// Frozen 是否已定稿
func (b *Buffer) Frozen() bool { return b.frozen }

// check 检查是否还能追加 n 字节
func (b *Buffer) check(n int) error {
	if b.frozen {
		return errors.New(errors.E0901, b.name)
	}
	if n < 0 || b.size+n > b.limit {
		return errors.New(errors.E0900, b.name, b.limit)
	}
	return nil
}

// grow 确保容量足够再容纳 n 字节，按倍数扩容
func (b *Buffer) grow(n int) {
	need := len(b.data) + n
	if need <= cap(b.data) {
		return
	}
	newCap := cap(b.data)
	if newCap < InitialCapacity {
		newCap = InitialCapacity
	}
	for newCap < need {
		newCap *= 2
	}
	if newCap > b.limit {
		newCap = b.limit
	}
	data := make([]byte, len(b.data), newCap)
	copy(data, b.data)
	b.data = data
}

// Append 把字节追加到节末尾，返回追加位置的偏移
func (b *Buffer) Append(p []byte) (int, error) {
	if b.nobits {
		return b.Grow(len(p))
	}
	if err := b.check(len(p)); err != nil {
		return 0, err
	}
	b.grow(len(p))
	offset := len(b.data)
	b.data = append(b.data, p...)
	b.size = len(b.data)
	return offset, nil
}

// Reserve 预留 n 个零字节，返回偏移和可原地写入的窗口
//
// 窗口只在下一次 Append/Reserve 之前有效（扩容可能搬移底层数组）。
func (b *Buffer) Reserve(n int) (int, []byte, error) {
	if b.nobits {
		offset, err := b.Grow(n)
		return offset, nil, err
	}
	if err := b.check(n); err != nil {
		return 0, nil, err
	}
	b.grow(n)
	offset := len(b.data)
	b.data = b.data[:offset+n]
	clear(b.data[offset:])
	b.size = len(b.data)
	return offset, b.data[offset:], nil
}

// Grow 增加声明大小而不写入内容（用于 NOBITS 节），返回增长前的大小
func (b *Buffer) Grow(n int) (int, error) {
	if !b.nobits {
		offset, _, err := b.Reserve(n)
		return offset, err
	}
	if err := b.check(n); err != nil {
		return 0, err
	}
	offset := b.size
	b.size += n
	return offset, nil
}

// AlignTo 用零字节把当前长度填充到 align 的倍数
func (b *Buffer) AlignTo(align int) error {
	if pad := AlignUp(b.size, align) - b.size; pad > 0 {
		_, err := b.Grow(pad)
		return err
	}
	return nil
}

// PatchU32 在已写入的偏移处原地写入 32 位小端值，定稿后失败
func (b *Buffer) PatchU32(offset int, v uint32) error {
	if b.frozen {
		return errors.New(errors.E0901, b.name)
	}
	binary.LittleEndian.PutUint32(b.data[offset:], v)
	return nil
}

// PatchU64 在已写入的偏移处原地写入 64 位小端值，定稿后失败
func (b *Buffer) PatchU64(offset int, v uint64) error {
	if b.frozen {
		return errors.New(errors.E0901, b.name)
	}
	binary.LittleEndian.PutUint64(b.data[offset:], v)
	return nil
}

// Bytes 返回当前内容（定稿前调用方不得保留）
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Finalize 定稿并返回不可变视图
//
// 定稿后 Append/Reserve/Grow/Patch 都会失败。
func (b *Buffer) Finalize() []byte {
	b.frozen = true
	return b.data[:len(b.data):len(b.data)]
}

// AlignUp 把 x 向上取整到 align 的倍数，已对齐时不加填充
func AlignUp(x, align int) int {
	if align <= 1 {
		return x
	}
	return (x + align - 1) / align * align
}
