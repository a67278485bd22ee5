// Package view implements a minimal flat encoding of a Circuit and a
// read-only, zero-copy decoder over it: a byte buffer a consumer can
// inspect without materializing the full Node/Circuit object graph.
//
// The layout is a header (node count, circuit name) followed by one
// variable-length record per node; every variable-length field (inputs,
// output types, names, constant data) is count- or length-prefixed. Decode
// builds an index of record offsets but does not copy node contents.
// There is no forward-compatible field numbering or compression
// variant here; this is a flat struct-of-primitives view, not a
// general-purpose wire format.
package view

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/fuse-ir/fuse"
	"github.com/fuse-ir/fuse/payload"
)

var order = binary.LittleEndian

// Encode flattens c into a self-contained byte buffer: a header (node
// count and circuit name), followed by one variable-length record per node
// in circuit order.
func Encode(c *fuse.Circuit) []byte {
	buf := make([]byte, 0, 64*c.Len())
	buf = appendUint32(buf, uint32(c.Len()))
	buf = appendString(buf, c.Name)
	for _, n := range c.Nodes() {
		buf = encodeNode(buf, n)
	}
	return buf
}

func encodeNode(buf []byte, n fuse.Node) []byte {
	buf = appendUint32(buf, uint32(n.ID))
	buf = append(buf, byte(n.Op))
	buf = appendUint32(buf, uint32(len(n.Inputs)))
	for _, in := range n.Inputs {
		buf = appendUint32(buf, uint32(in.Producer))
		buf = appendUint32(buf, uint32(in.Offset))
	}
	buf = appendUint32(buf, uint32(len(n.Outputs)))
	for _, dt := range n.Outputs {
		buf = encodeDataType(buf, dt)
	}
	buf = appendString(buf, n.Subcircuit)
	buf = appendString(buf, n.InputName)
	if n.Payload != nil {
		buf = append(buf, 1)
		buf = encodePayload(buf, *n.Payload)
	} else {
		buf = append(buf, 0)
	}
	return buf
}

func encodeDataType(buf []byte, dt fuse.DataType) []byte {
	buf = append(buf, byte(dt.Type), byte(dt.Security))
	buf = appendUint32(buf, uint32(len(dt.Shape)))
	for _, d := range dt.Shape {
		buf = appendUint64(buf, uint64(d))
	}
	return buf
}

func encodePayload(buf []byte, v payload.Value) []byte {
	buf = append(buf, byte(v.Declared))
	buf = appendUint32(buf, uint32(len(v.Shape)))
	for _, d := range v.Shape {
		buf = appendUint64(buf, uint64(d))
	}
	buf = appendUint32(buf, uint32(v.Len()))
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		switch {
		case v.Declared == fuse.Bool:
			b := byte(0)
			if elem.Bool() {
				b = 1
			}
			buf = append(buf, b)
		case v.Declared.IsSigned():
			buf = appendUint64(buf, uint64(elem.Int()))
		case v.Declared == fuse.Float:
			buf = appendUint32(buf, math.Float32bits(elem.Float32()))
		case v.Declared == fuse.Double:
			buf = appendUint64(buf, math.Float64bits(elem.Float64()))
		default:
			buf = appendUint64(buf, elem.UInt())
		}
	}
	return buf
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	order.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	order.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendString(buf []byte, s string) []byte {
	buf = appendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// reader walks an encoded buffer sequentially; every Circuit/Node accessor
// reads directly from the backing slice, never copying into the object
// model's Node/Circuit types.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) uint32() uint32 {
	v := order.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) uint64() uint64 {
	v := order.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v
}

func (r *reader) byte() byte {
	b := r.buf[r.pos]
	r.pos++
	return b
}

func (r *reader) string() string {
	n := r.uint32()
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s
}

// Circuit is a read-only, zero-copy view over one Encode-d buffer.
type Circuit struct {
	Name      string
	nodeCount int
	nodeAt    []int // byte offset of each node record, indexed by position
	buf       []byte
}

// Decode parses buf's header and indexes every node's byte offset without
// copying node contents; node fields are read lazily by Node/Node.
func Decode(buf []byte) (*Circuit, error) {
	if len(buf) < 8 {
		return nil, fmt.Errorf("view: buffer too short (%d bytes)", len(buf))
	}
	r := &reader{buf: buf}
	count := int(r.uint32())
	name := r.string()

	offsets := make([]int, count)
	for i := 0; i < count; i++ {
		offsets[i] = r.pos
		skipNode(r)
	}
	return &Circuit{Name: name, nodeCount: count, nodeAt: offsets, buf: buf}, nil
}

func skipNode(r *reader) {
	r.uint32() // id
	r.byte()   // op
	numInputs := r.uint32()
	for i := uint32(0); i < numInputs; i++ {
		r.uint32()
		r.uint32()
	}
	numOutputs := r.uint32()
	for i := uint32(0); i < numOutputs; i++ {
		r.byte()
		r.byte()
		numDims := r.uint32()
		for d := uint32(0); d < numDims; d++ {
			r.uint64()
		}
	}
	r.string() // subcircuit name
	r.string() // input name
	hasPayload := r.byte()
	if hasPayload == 1 {
		skipPayload(r)
	}
}

func skipPayload(r *reader) {
	declared := fuse.PrimitiveType(r.byte())
	numDims := r.uint32()
	for d := uint32(0); d < numDims; d++ {
		r.uint64()
	}
	n := r.uint32()
	for i := uint32(0); i < n; i++ {
		switch {
		case declared == fuse.Bool:
			r.byte()
		case declared == fuse.Float:
			r.uint32()
		default:
			r.uint64()
		}
	}
}

// NodeCount returns the number of node records in the view.
func (c *Circuit) NodeCount() int {
	return c.nodeCount
}

// NodeView is a read-only accessor over one node record's bytes.
type NodeView struct {
	r *reader
}

// Node returns a view over the i-th node record (0-indexed, in original
// circuit order), reading lazily from the backing buffer on each accessor
// call.
func (c *Circuit) Node(i int) NodeView {
	return NodeView{r: &reader{buf: c.buf, pos: c.nodeAt[i]}}
}

// ID returns the node's NodeId.
func (n NodeView) ID() fuse.NodeId {
	r := *n.r
	return fuse.NodeId(r.uint32())
}

// Op returns the node's operation.
func (n NodeView) Op() fuse.PrimitiveOperation {
	r := *n.r
	r.uint32()
	return fuse.PrimitiveOperation(r.byte())
}

// Inputs returns the node's input edges.
func (n NodeView) Inputs() []fuse.Edge {
	r := *n.r
	r.uint32() // id
	r.byte()   // op
	count := r.uint32()
	var out []fuse.Edge
	for i := uint32(0); i < count; i++ {
		out = append(out, fuse.Edge{Producer: fuse.NodeId(r.uint32()), Offset: fuse.Offset(r.uint32())})
	}
	return out
}
