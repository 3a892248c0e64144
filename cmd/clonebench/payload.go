package main

import "fmt"

// Decimal 定点小数，注册为 scalar
type Decimal struct {
	Units int64
	Scale int32
}

type Record struct {
	Label    string
	Amount   Decimal
	Serial   int64
	Rank     int
	Nested   *Record
	Children []*Record
}

type generator struct {
	counter int
	depth   int
	breadth int
}

func (g *generator) build(level int) *Record {
	if level > g.depth {
		return nil
	}
	g.counter++
	r := &Record{
		Label:    fmt.Sprintf("%d: %d", level, g.counter),
		Amount:   Decimal{Units: int64(g.counter), Scale: 2},
		Serial:   int64(g.counter),
		Rank:     g.counter,
		Children: make([]*Record, 0, g.breadth),
	}
	r.Nested = g.build(level + 1)
	for i := 0; i < g.breadth; i++ {
		r.Children = append(r.Children, g.build(level+1))
	}
	return r
}

// Clone 手写的深拷贝，作为对照
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{
		Label:  r.Label,
		Amount: r.Amount,
		Serial: r.Serial,
		Rank:   r.Rank,
		Nested: r.Nested.Clone(),
	}
	if r.Children != nil {
		out.Children = make([]*Record, len(r.Children))
		for i, child := range r.Children {
			out.Children[i] = child.Clone()
		}
	}
	return out
}

func (r *Record) countFields() int {
	if r == nil {
		return 0
	}
	n := 6 + r.Nested.countFields()
	for _, child := range r.Children {
		n += child.countFields()
	}
	return n
}
