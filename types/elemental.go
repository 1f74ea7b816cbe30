package types

import (
	"fmt"
	"math"
)

/*
FaceKey is a stable identifier for one local face of one element, packed as
element index in the high 32 bits and local face number in the low 32 bits.
Keys survive reordering of any face sequence built from them, which makes
them the lookup key from (element, face) to a position in a face group.
*/
type FaceKey uint64

func NewFaceKey(element, face int) (packed FaceKey) {
	var (
		limit = math.MaxUint32
	)
	if element < 0 || element > limit || face < 0 || face > limit {
		panic(fmt.Errorf("unable to pack element %d and face %d into a uint64",
			element, face))
	}
	packed = FaceKey(uint64(face) + uint64(element)<<32)
	return
}

func (fk FaceKey) Element() int {
	return int(fk >> 32)
}

func (fk FaceKey) Face() int {
	return int(fk & math.MaxUint32)
}

func (fk FaceKey) String() string {
	return fmt.Sprintf("[%d:%d]", fk.Element(), fk.Face())
}
