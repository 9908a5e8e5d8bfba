package ir

// CFNode is a node of the structured control-flow tree: a Block, an
// If, or a Loop.
type CFNode interface {
	cfNode()
}

// Block is a basic block: a straight-line instruction sequence.
type Block struct {
	Instrs []Instr
}

func (*Block) cfNode() {}

// Append links instr to the end of the block, recording instr as the
// parent of its sources and registering their uses. Sources attached
// after insertion (phi edges) register themselves instead.
func (b *Block) Append(instr Instr) {
	b.Instrs = append(b.Instrs, instr)
	instr.eachSrc(func(s *Src) {
		s.Parent = instr
		if s.SSA != nil {
			s.SSA.Uses = append(s.SSA.Uses, s)
		}
	})
}

// If is a two-way branch over nested control-flow lists.
type If struct {
	Condition Src
	Then      CFList
	Else      CFList
}

func (*If) cfNode() {}

// NewIf returns an if-node whose branches each start with one empty
// block.
func NewIf() *If {
	return &If{Then: NewCFList(), Else: NewCFList()}
}

// Loop is an infinite loop over a nested control-flow list, exited by
// break jumps.
type Loop struct {
	Body CFList
}

func (*Loop) cfNode() {}

// NewLoop returns a loop whose body starts with one empty block.
func NewLoop() *Loop {
	return &Loop{Body: NewCFList()}
}

// CFList is an ordered control-flow list. It alternates blocks and
// non-block nodes and always begins and ends with a Block; the append
// helpers preserve that invariant by inserting fresh tail blocks
// around If and Loop nodes.
type CFList struct {
	Nodes []CFNode
}

// NewCFList returns a list holding a single empty block.
func NewCFList() CFList {
	return CFList{Nodes: []CFNode{&Block{}}}
}

// StartBlock returns the first node, which is always a block.
func (l *CFList) StartBlock() *Block {
	return l.Nodes[0].(*Block)
}

// TailBlock returns the last node, which is always a block.
func (l *CFList) TailBlock() *Block {
	b, ok := l.Nodes[len(l.Nodes)-1].(*Block)
	if !ok {
		panic("nir/ir: control-flow list does not end with a block")
	}
	return b
}

// AppendIf appends n followed by a fresh empty tail block, and
// registers the condition's use.
func (l *CFList) AppendIf(n *If) {
	n.Condition.Parent = nil
	if n.Condition.SSA != nil {
		n.Condition.SSA.Uses = append(n.Condition.SSA.Uses, &n.Condition)
	}
	l.Nodes = append(l.Nodes, n, &Block{})
}

// AppendLoop appends n followed by a fresh empty tail block.
func (l *CFList) AppendLoop(n *Loop) {
	l.Nodes = append(l.Nodes, n, &Block{})
}
