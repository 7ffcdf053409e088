package ast

// ============================================================================
// Arena 节点池
// ============================================================================
//
// Arena 持有一次编译会话中的全部 AST 节点，节点之间通过整数句柄（NodeID）引用。
//
// 设计目标：
// - 节点生命周期与会话一致：会话结束时整体丢弃，不存在逐节点释放
// - 句柄 0 保留为空节点，Left/Right 为 0 即表示没有子节点
// - 部分失败不会造成泄漏或重复释放
//
// 使用方式：
//   arena := NewArena(256)
//   x := arena.NewIdent("x", Nil)
//   n := arena.NewKeyword(token.ASSIGN, x, arena.NewNumber(2))
//
// ============================================================================

// 默认初始容量（节点个数）
const defaultCapacity = 256

// NodeID 节点句柄
type NodeID int32

// Nil 空句柄
const Nil NodeID = 0

// IsNil 判断句柄是否为空
func (id NodeID) IsNil() bool {
	return id == Nil
}

// Arena 节点池
type Arena struct {
	nodes []Node // nodes[0] 为保留的空节点
}

// NewArena 创建节点池
//
// 参数:
//   - capacity: 预分配的节点个数，<= 0 时使用默认值
func NewArena(capacity int) *Arena {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	a := &Arena{
		nodes: make([]Node, 1, capacity+1),
	}
	return a
}

// alloc 追加一个节点并返回其句柄
func (a *Arena) alloc(n Node) NodeID {
	a.nodes = append(a.nodes, n)
	return NodeID(len(a.nodes) - 1)
}

// Node 返回句柄对应的节点
//
// 对空句柄或越界句柄返回 nil。
func (a *Arena) Node(id NodeID) *Node {
	if id <= Nil || int(id) >= len(a.nodes) {
		return nil
	}
	return &a.nodes[id]
}

// Len 返回已分配的节点数（不含保留的空节点）
func (a *Arena) Len() int {
	return len(a.nodes) - 1
}

// Reset 丢弃所有节点，保留底层存储以便复用
//
// 调用 Reset 后，之前分配的所有句柄都将失效。
func (a *Arena) Reset() {
	a.nodes = a.nodes[:1]
}

// ArenaStats 节点池统计信息（用于调试日志）
type ArenaStats struct {
	Nodes    int // 节点数
	Keywords int // 关键字节点数
	Idents   int // 标识符节点数
	Numbers  int // 数字节点数
}

// Stats 获取节点池的统计信息
func (a *Arena) Stats() ArenaStats {
	stats := ArenaStats{Nodes: a.Len()}
	for i := 1; i < len(a.nodes); i++ {
		switch a.nodes[i].Kind {
		case KindKeyword:
			stats.Keywords++
		case KindIdent:
			stats.Idents++
		case KindNumber:
			stats.Numbers++
		}
	}
	return stats
}
