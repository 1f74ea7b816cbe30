// Package ranges maps element numbers to the contiguous block of global DOF
// indices each element owns.
package ranges

import (
	"fmt"
	"iter"
)

// ElementRange is the half-open DOF interval [Start, End) of one element.
type ElementRange struct {
	Start, End int
}

func (er ElementRange) Len() int { return er.End - er.Start }

func (er ElementRange) String() string {
	return fmt.Sprintf("[%d,%d)", er.Start, er.End)
}

// ElementRanges is an ordered, read-only view of per-element DOF ranges.
// Position i always refers to element i of the owning element group.
type ElementRanges interface {
	Len() int
	At(i int) ElementRange
	All() iter.Seq2[int, ElementRange]
}

// Nonuniform stores one range per element, in insertion order. Sizes are
// arbitrary and overlap is not checked.
type Nonuniform struct {
	ranges []ElementRange
}

func NewNonuniform(capacity ...int) (nr *Nonuniform) {
	var c int
	if len(capacity) != 0 {
		c = capacity[0]
	}
	return &Nonuniform{ranges: make([]ElementRange, 0, c)}
}

func (nr *Nonuniform) Len() int { return len(nr.ranges) }

func (nr *Nonuniform) Clear() { nr.ranges = nr.ranges[:0] }

func (nr *Nonuniform) Append(start, end int) {
	if start < 0 || end < start {
		panic(fmt.Errorf("invalid element range [%d,%d)", start, end))
	}
	nr.ranges = append(nr.ranges, ElementRange{Start: start, End: end})
}

func (nr *Nonuniform) At(i int) ElementRange { return nr.ranges[i] }

func (nr *Nonuniform) All() iter.Seq2[int, ElementRange] {
	return func(yield func(int, ElementRange) bool) {
		for i, er := range nr.ranges {
			if !yield(i, er) {
				return
			}
		}
	}
}

// Uniform computes ranges arithmetically from a start offset, an element
// size and an element count. Nothing per element is stored.
type Uniform struct {
	start, elSize, elCount int
}

func NewUniform(start, elSize, elCount int) Uniform {
	if start < 0 || elSize < 0 || elCount < 0 {
		panic(fmt.Errorf("invalid uniform ranges: start = %d, el_size = %d, el_count = %d",
			start, elSize, elCount))
	}
	return Uniform{start: start, elSize: elSize, elCount: elCount}
}

func (ur Uniform) Start() int  { return ur.start }
func (ur Uniform) ElSize() int { return ur.elSize }
func (ur Uniform) Len() int    { return ur.elCount }

// End is one past the last DOF covered by the ranges.
func (ur Uniform) End() int { return ur.start + ur.elSize*ur.elCount }

func (ur Uniform) At(i int) ElementRange {
	if i < 0 || i >= ur.elCount {
		panic(fmt.Errorf("element %d out of range [0,%d)", i, ur.elCount))
	}
	elStart := ur.start + i*ur.elSize
	return ElementRange{Start: elStart, End: elStart + ur.elSize}
}

func (ur Uniform) All() iter.Seq2[int, ElementRange] {
	return func(yield func(int, ElementRange) bool) {
		elStart := ur.start
		for i := 0; i < ur.elCount; i++ {
			if !yield(i, ElementRange{Start: elStart, End: elStart + ur.elSize}) {
				return
			}
			elStart += ur.elSize
		}
	}
}

// AsUniform reports whether r is a contiguous sequence of equally sized
// ranges and, if so, returns the arithmetic equivalent.
func AsUniform(r ElementRanges) (ur Uniform, ok bool) {
	switch v := r.(type) {
	case Uniform:
		return v, true
	case *Uniform:
		return *v, true
	}
	if r.Len() == 0 {
		return Uniform{}, true
	}
	var (
		first  = r.At(0)
		elSize = first.Len()
		next   = first.Start
	)
	for _, er := range r.All() {
		if er.Start != next || er.Len() != elSize {
			return Uniform{}, false
		}
		next = er.End
	}
	return NewUniform(first.Start, elSize, r.Len()), true
}

// Slice returns the ranges of elements [lo, hi) of r as a new view.
func Slice(r ElementRanges, lo, hi int) ElementRanges {
	if lo < 0 || hi > r.Len() || hi < lo {
		panic(fmt.Errorf("invalid element slice [%d,%d) of %d elements", lo, hi, r.Len()))
	}
	switch v := r.(type) {
	case Uniform:
		return Uniform{start: v.start + lo*v.elSize, elSize: v.elSize, elCount: hi - lo}
	case *Nonuniform:
		return &Nonuniform{ranges: v.ranges[lo:hi:hi]}
	}
	nr := NewNonuniform(hi - lo)
	for i := lo; i < hi; i++ {
		er := r.At(i)
		nr.Append(er.Start, er.End)
	}
	return nr
}

// Extent returns the smallest and one past the largest DOF index touched by
// r, or (0, 0) when r is empty.
func Extent(r ElementRanges) (lo, hi int) {
	for i, er := range r.All() {
		if i == 0 || er.Start < lo {
			lo = er.Start
		}
		if er.End > hi {
			hi = er.End
		}
	}
	return
}
