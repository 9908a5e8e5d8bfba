package serialize

import (
	"fmt"

	"github.com/gogpu/nir/ir"
)

// MaxObjects is the hard ceiling on distinct serialized objects per
// shader. Source words reference objects through a 20-bit index, so
// the ceiling doubles as a wire-format limit.
const MaxObjects = 1 << 20

// writeIndex assigns dense integer IDs to objects in discovery order.
// It lives for exactly one Serialize call.
type writeIndex struct {
	next uint32
	ids  map[any]uint32
}

func newWriteIndex() *writeIndex {
	return &writeIndex{ids: make(map[any]uint32, 64)}
}

// assign gives obj the next dense ID. Assigning the same object twice
// or overflowing the ceiling is a bug in the caller's traversal.
func (x *writeIndex) assign(obj any) uint32 {
	if x.next >= MaxObjects {
		panic("nir/serialize: shader exceeds the object ceiling")
	}
	if _, ok := x.ids[obj]; ok {
		panic("nir/serialize: object assigned an id twice")
	}
	id := x.next
	x.ids[obj] = id
	x.next++
	return id
}

// lookup returns the ID previously assigned to obj. Looking up an
// unassigned object means the traversal emitted a reference before
// its referent, which only the phi fixup path may do.
func (x *writeIndex) lookup(obj any) uint32 {
	id, ok := x.ids[obj]
	if !ok {
		panic("nir/serialize: reference to an object without an id")
	}
	return id
}

// count returns the number of IDs assigned so far.
func (x *writeIndex) count() uint32 {
	return x.next
}

// readIndex maps dense IDs back to reconstructed objects. Its capacity
// comes from the blob's object-count header; objects register
// sequentially, mirroring the writer's assignment order.
type readIndex struct {
	objs []any
	next uint32
}

func newReadIndex(count uint32) *readIndex {
	if count > MaxObjects {
		panic("nir/serialize: blob object count exceeds the ceiling")
	}
	return &readIndex{objs: make([]any, count)}
}

// add registers obj under the next sequential ID.
func (x *readIndex) add(obj any) uint32 {
	if int(x.next) >= len(x.objs) {
		panic("nir/serialize: more objects than the blob header declared")
	}
	id := x.next
	x.objs[id] = obj
	x.next++
	return id
}

func (x *readIndex) get(id uint32) any {
	if int(id) >= len(x.objs) {
		panic(fmt.Sprintf("nir/serialize: object id %d out of range", id))
	}
	obj := x.objs[id]
	if obj == nil {
		panic(fmt.Sprintf("nir/serialize: object id %d referenced before registration", id))
	}
	return obj
}

func (x *readIndex) def(id uint32) *ir.Def {
	d, ok := x.get(id).(*ir.Def)
	if !ok {
		panic(fmt.Sprintf("nir/serialize: object id %d is not a value", id))
	}
	return d
}

func (x *readIndex) block(id uint32) *ir.Block {
	b, ok := x.get(id).(*ir.Block)
	if !ok {
		panic(fmt.Sprintf("nir/serialize: object id %d is not a block", id))
	}
	return b
}

func (x *readIndex) register(id uint32) *ir.Register {
	r, ok := x.get(id).(*ir.Register)
	if !ok {
		panic(fmt.Sprintf("nir/serialize: object id %d is not a register", id))
	}
	return r
}

func (x *readIndex) variable(id uint32) *ir.Variable {
	v, ok := x.get(id).(*ir.Variable)
	if !ok {
		panic(fmt.Sprintf("nir/serialize: object id %d is not a variable", id))
	}
	return v
}

func (x *readIndex) function(id uint32) *ir.Function {
	f, ok := x.get(id).(*ir.Function)
	if !ok {
		panic(fmt.Sprintf("nir/serialize: object id %d is not a function", id))
	}
	return f
}
