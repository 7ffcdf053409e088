// Package object 生成 x86-64 ELF64 可重定位目标文件
//
// 生成顺序：
//  1. 代码生成期间向 .text/.rodata/.data/.bss 追加内容
//  2. Emit 时冻结这些节，建立符号表和字符串表
//  3. 符号表顺序确定后，第二遍把重定位的符号名解析为符号下标
//  4. 计算各节的文件偏移，依次写出 ELF 头、节头表和各节内容
package object

import (
	"debug/elf"
	"encoding/binary"
	"sort"

	"github.com/tangzhangming/elfc/internal/asm"
	"github.com/tangzhangming/elfc/internal/errors"
	"github.com/tangzhangming/elfc/internal/section"
)

// DefaultAlign 节在文件中的默认对齐
const DefaultAlign = 16

// Options 目标文件选项
type Options struct {
	Align      int    // 节在文件中的对齐
	FileSymbol string // FILE 符号名（通常是源文件名）
	Entry      string // 入口符号名
	Limit      int    // 每个节的大小上限
}

// Symbol 符号表条目
type Symbol struct {
	Name    string
	Bind    elf.SymBind
	Type    elf.SymType
	Section elf.SectionIndex
	Value   uint64
	Size    uint64
}

// Range 文件中的一段字节范围 [Start, End)
type Range struct {
	Name  string
	Start int
	End   int
}

// Layout 文件布局
type Layout struct {
	Offsets  [NumSections]int // 各节的文件偏移
	Sizes    [NumSections]int // 各节的大小（.bss 为声明大小）
	FileSize int
}

// Object 一次编译产生的目标文件
type Object struct {
	opts      Options
	sections  [NumSections]*section.Buffer
	externals []string
	entry     int
	entrySize int
	relocs    []asm.Reloc

	symbols []Symbol
	layout  Layout
}

// New 创建目标文件，.text/.rodata/.data/.bss 节缓冲区随之创建
func New(opts Options) *Object {
	if opts.Align <= 0 {
		opts.Align = DefaultAlign
	}
	if opts.Limit <= 0 {
		opts.Limit = section.DefaultLimit
	}
	if opts.Entry == "" {
		opts.Entry = "main"
	}

	o := &Object{opts: opts}
	for _, k := range []SectionKind{SecText, SecRodata, SecData} {
		o.sections[k] = section.New(k.Name(), sectionAttrs[k].align, opts.Limit)
	}
	o.sections[SecBss] = section.NewNoBits(SecBss.Name(), sectionAttrs[SecBss].align, opts.Limit)
	return o
}

// Section 返回内容节的缓冲区（.text/.rodata/.data/.bss），其它节返回 nil
func (o *Object) Section(k SectionKind) *section.Buffer {
	if k < SecText || k > SecBss {
		return nil
	}
	return o.sections[k]
}

// AddExternal 登记被引用的外部例程，重复登记忽略
func (o *Object) AddExternal(name string) {
	for _, e := range o.externals {
		if e == name {
			return
		}
	}
	o.externals = append(o.externals, name)
}

// SetEntry 设置入口符号在 .text 中的偏移和大小
func (o *Object) SetEntry(offset, size int) {
	o.entry = offset
	o.entrySize = size
}

// AddRelocs 添加 .text 的重定位
func (o *Object) AddRelocs(relocs ...asm.Reloc) {
	o.relocs = append(o.relocs, relocs...)
}

// Symbols 返回最终的符号表（Emit 之后有效）
func (o *Object) Symbols() []Symbol {
	return o.symbols
}

// Layout 返回文件布局（Emit 之后有效）
func (o *Object) Layout() Layout {
	return o.layout
}

// Relocs 返回 .text 的重定位
func (o *Object) Relocs() []asm.Reloc {
	return o.relocs
}

// Emit 生成完整的目标文件字节
//
// 节范围重叠或重定位引用未知符号时返回 EmissionError；
// 内容节已定稿（重复 Emit）时返回 ResourceError。
func (o *Object) Emit() ([]byte, error) {
	if o.sections[SecText].Frozen() {
		return nil, errors.New(errors.E0901, SecText.Name())
	}
	for _, k := range []SectionKind{SecText, SecRodata, SecData, SecBss} {
		o.sections[k].Finalize()
	}

	index, err := o.buildSymbols()
	if err != nil {
		return nil, err
	}
	if err := o.buildRelocs(index); err != nil {
		return nil, err
	}

	shstrtab, err := newStrtab(SecShstrtab.Name(), o.opts.Limit)
	if err != nil {
		return nil, err
	}
	var names [NumSections]uint32
	for k := SecText; k < NumSections; k++ {
		if names[k], err = shstrtab.add(k.Name()); err != nil {
			return nil, err
		}
	}
	o.sections[SecShstrtab] = shstrtab.buf
	o.sections[SecShstrtab].Finalize()

	if err := o.computeLayout(); err != nil {
		return nil, err
	}
	return o.serialize(names)
}

// buildSymbols 按固定顺序建立符号表和 .strtab，返回符号名到下标的映射
//
// 顺序：null、FILE、四个节符号、外部例程（GLOBAL NOTYPE）、入口符号（GLOBAL FUNC）。
func (o *Object) buildSymbols() (map[string]uint32, error) {
	syms := []Symbol{
		{},
		{Name: o.opts.FileSymbol, Bind: elf.STB_LOCAL, Type: elf.STT_FILE, Section: elf.SHN_ABS},
	}
	index := make(map[string]uint32)
	for _, k := range []SectionKind{SecText, SecRodata, SecData, SecBss} {
		index[k.Name()] = uint32(len(syms))
		syms = append(syms, Symbol{Bind: elf.STB_LOCAL, Type: elf.STT_SECTION, Section: k.Index()})
	}
	for _, name := range o.externals {
		index[name] = uint32(len(syms))
		syms = append(syms, Symbol{Name: name, Bind: elf.STB_GLOBAL, Type: elf.STT_NOTYPE, Section: elf.SHN_UNDEF})
	}
	index[o.opts.Entry] = uint32(len(syms))
	syms = append(syms, Symbol{
		Name:    o.opts.Entry,
		Bind:    elf.STB_GLOBAL,
		Type:    elf.STT_FUNC,
		Section: SecText.Index(),
		Value:   uint64(o.entry),
		Size:    uint64(o.entrySize),
	})

	strtab, err := newStrtab(SecStrtab.Name(), o.opts.Limit)
	if err != nil {
		return nil, err
	}
	symtab := section.New(SecSymtab.Name(), sectionAttrs[SecSymtab].align, o.opts.Limit)
	for _, s := range syms {
		nameOff, err := strtab.add(s.Name)
		if err != nil {
			return nil, err
		}
		_, window, err := symtab.Reserve(symSize)
		if err != nil {
			return nil, err
		}
		sym := elf.Sym64{
			Name:  nameOff,
			Info:  elf.ST_INFO(s.Bind, s.Type),
			Other: uint8(elf.STV_DEFAULT),
			Shndx: uint16(s.Section),
			Value: s.Value,
			Size:  s.Size,
		}
		if _, err := binary.Encode(window, binary.LittleEndian, sym); err != nil {
			return nil, err
		}
	}

	o.symbols = syms
	o.sections[SecStrtab] = strtab.buf
	o.sections[SecStrtab].Finalize()
	o.sections[SecSymtab] = symtab
	o.sections[SecSymtab].Finalize()
	return index, nil
}

// firstGlobal 返回第一个非局部符号的下标（.symtab 的 sh_info）
func (o *Object) firstGlobal() int {
	for i, s := range o.symbols {
		if i > 0 && s.Bind != elf.STB_LOCAL {
			return i
		}
	}
	return len(o.symbols)
}

// buildRelocs 在符号表冻结后把重定位的符号名解析为下标
func (o *Object) buildRelocs(index map[string]uint32) error {
	text := o.sections[SecText]
	rela := section.New(SecRelaText.Name(), sectionAttrs[SecRelaText].align, o.opts.Limit)
	for _, r := range o.relocs {
		sym, ok := index[r.Symbol]
		if !ok || r.Offset < 0 || r.Offset+4 > text.Size() {
			return errors.New(errors.E1001, r.Offset, r.Symbol)
		}
		_, window, err := rela.Reserve(relaSize)
		if err != nil {
			return err
		}
		entry := elf.Rela64{
			Off:    uint64(r.Offset),
			Info:   elf.R_INFO(sym, uint32(r.Type)),
			Addend: r.Addend,
		}
		if _, err := binary.Encode(window, binary.LittleEndian, entry); err != nil {
			return err
		}
	}
	o.sections[SecRelaText] = rela
	o.sections[SecRelaText].Finalize()
	return nil
}

// computeLayout 计算各节的文件偏移并检查重叠
//
// ELF 头在 0，节头表紧随其后，之后每个节从上一个节的末尾
// 向上对齐开始；.bss 不占文件字节。文件大小为最后一个节的对齐末尾。
func (o *Object) computeLayout() error {
	align := o.opts.Align
	var l Layout
	cursor := headerSize + int(NumSections)*shdrSize
	for k := SecText; k < NumSections; k++ {
		buf := o.sections[k]
		off := section.AlignUp(cursor, align)
		l.Offsets[k] = off
		l.Sizes[k] = buf.Size()
		if !buf.NoBits() {
			cursor = off + buf.Size()
		} else {
			cursor = off
		}
	}
	l.FileSize = section.AlignUp(cursor, align)
	o.layout = l

	ranges := o.FileRanges()
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	for i := 1; i < len(ranges); i++ {
		prev, cur := ranges[i-1], ranges[i]
		if cur.Start < prev.End {
			return errors.New(errors.E1000, cur.Name, cur.Start, cur.End, prev.Name)
		}
	}
	if n := len(ranges); n > 0 && ranges[n-1].End > l.FileSize {
		last := ranges[n-1]
		return errors.New(errors.E1000, last.Name, last.Start, last.End, "end of file")
	}
	return nil
}

// FileRanges 返回占用文件字节的所有范围（ELF 头、节头表和非空节），按节顺序
func (o *Object) FileRanges() []Range {
	ranges := []Range{
		{Name: "ELF header", Start: 0, End: headerSize},
		{Name: "section headers", Start: headerSize, End: headerSize + int(NumSections)*shdrSize},
	}
	for k := SecText; k < NumSections; k++ {
		buf := o.sections[k]
		if buf == nil || buf.NoBits() || buf.Size() == 0 {
			continue
		}
		start := o.layout.Offsets[k]
		ranges = append(ranges, Range{Name: k.Name(), Start: start, End: start + buf.Size()})
	}
	return ranges
}

// serialize 按布局写出 ELF 头、节头表和各节内容
func (o *Object) serialize(names [NumSections]uint32) ([]byte, error) {
	out := section.New("object", 1, o.opts.Limit)
	_, file, err := out.Reserve(o.layout.FileSize)
	if err != nil {
		return nil, err
	}

	hdr := elf.Header64{
		Type:      uint16(elf.ET_REL),
		Machine:   uint16(elf.EM_X86_64),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     headerSize,
		Ehsize:    headerSize,
		Shentsize: shdrSize,
		Shnum:     uint16(NumSections),
		Shstrndx:  uint16(SecShstrtab),
	}
	copy(hdr.Ident[:], elf.ELFMAG)
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	hdr.Ident[elf.EI_OSABI] = byte(elf.ELFOSABI_NONE)
	if _, err := binary.Encode(file[:headerSize], binary.LittleEndian, hdr); err != nil {
		return nil, err
	}

	for k := SecText; k < NumSections; k++ {
		attr := sectionAttrs[k]
		buf := o.sections[k]
		shdr := elf.Section64{
			Name:      names[k],
			Type:      uint32(attr.typ),
			Flags:     uint64(attr.flags),
			Off:       uint64(o.layout.Offsets[k]),
			Size:      uint64(o.layout.Sizes[k]),
			Addralign: uint64(buf.Align()),
			Entsize:   uint64(attr.entsize),
		}
		switch k {
		case SecSymtab:
			shdr.Link = uint32(SecStrtab)
			shdr.Info = uint32(o.firstGlobal())
		case SecRelaText:
			shdr.Link = uint32(SecSymtab)
			shdr.Info = uint32(SecText)
		}
		at := headerSize + int(k)*shdrSize
		if _, err := binary.Encode(file[at:at+shdrSize], binary.LittleEndian, shdr); err != nil {
			return nil, err
		}

		if !buf.NoBits() {
			copy(file[o.layout.Offsets[k]:], buf.Bytes())
		}
	}
	return out.Finalize(), nil
}
