package object

import (
	"debug/elf"
)

// ============================================================================
// 固定节表
// ============================================================================
//
// 节的顺序是固定的，用枚举标签索引，既可按名称查找也可按顺序遍历：
//
//	0 null  1 .text  2 .rodata  3 .data  4 .bss
//	5 .shstrtab  6 .symtab  7 .strtab  8 .rela.text
//
// ============================================================================

// SectionKind 节的枚举标签，值即节头表中的下标
type SectionKind int

const (
	SecNull SectionKind = iota
	SecText
	SecRodata
	SecData
	SecBss
	SecShstrtab
	SecSymtab
	SecStrtab
	SecRelaText

	NumSections
)

// sectionAttr 节头的静态属性
type sectionAttr struct {
	name    string
	typ     elf.SectionType
	flags   elf.SectionFlag
	align   int
	entsize int
}

var sectionAttrs = [NumSections]sectionAttr{
	SecNull:     {"", elf.SHT_NULL, 0, 0, 0},
	SecText:     {".text", elf.SHT_PROGBITS, elf.SHF_ALLOC | elf.SHF_EXECINSTR, 16, 0},
	SecRodata:   {".rodata", elf.SHT_PROGBITS, elf.SHF_ALLOC, 8, 0},
	SecData:     {".data", elf.SHT_PROGBITS, elf.SHF_ALLOC | elf.SHF_WRITE, 8, 0},
	SecBss:      {".bss", elf.SHT_NOBITS, elf.SHF_ALLOC | elf.SHF_WRITE, 16, 0},
	SecShstrtab: {".shstrtab", elf.SHT_STRTAB, 0, 1, 0},
	SecSymtab:   {".symtab", elf.SHT_SYMTAB, 0, 8, symSize},
	SecStrtab:   {".strtab", elf.SHT_STRTAB, 0, 1, 0},
	SecRelaText: {".rela.text", elf.SHT_RELA, elf.SHF_INFO_LINK, 8, relaSize},
}

// Name 返回节名
func (k SectionKind) Name() string {
	if k >= 0 && k < NumSections {
		return sectionAttrs[k].name
	}
	return ""
}

func (k SectionKind) String() string {
	if k == SecNull {
		return "null"
	}
	return k.Name()
}

// Index 返回节头表下标
func (k SectionKind) Index() elf.SectionIndex {
	return elf.SectionIndex(k)
}

// LookupSection 按名称查找节
func LookupSection(name string) (SectionKind, bool) {
	for k := SecText; k < NumSections; k++ {
		if sectionAttrs[k].name == name {
			return k, true
		}
	}
	return SecNull, false
}

// 固定结构大小
const (
	headerSize = 64
	shdrSize   = 64
	symSize    = 24
	relaSize   = 24
)
