/*
Package faces holds the face records of a discretization and applies the
face-mass coupling terms of the numerical flux. Each FaceInfo pairs the DOF
indices on one side of a face with the node-aligned DOF indices on the other
side, and refers to its opposing face by position in the owning group.
*/
package faces

import (
	"fmt"

	"github.com/notargets/dgops/flux"
	"github.com/notargets/dgops/types"
)

type FaceInfo struct {
	FaceIndices     []int
	OppositeIndices []int
	Face            flux.Face
	opposite        int
	linked          bool
}

// OppositeID returns the group position of the opposing face, with ok false
// for a boundary face.
func (fi *FaceInfo) OppositeID() (id int, ok bool) {
	return fi.opposite, fi.linked
}

// Connection directs face Local to use face Opposite as its neighbor.
type Connection struct {
	Local, Opposite int
}

type FaceGroup struct {
	faces []FaceInfo
}

func NewFaceGroup(capacity ...int) *FaceGroup {
	var c int
	if len(capacity) != 0 {
		c = capacity[0]
	}
	return &FaceGroup{faces: make([]FaceInfo, 0, c)}
}

func (fg *FaceGroup) Len() int { return len(fg.faces) }

func (fg *FaceGroup) Clear() { fg.faces = fg.faces[:0] }

// At returns the record of face i. The pointer is valid until the next
// AddFace.
func (fg *FaceGroup) At(i int) *FaceInfo { return &fg.faces[i] }

// AddFace appends a face with no opposite and returns its position.
func (fg *FaceGroup) AddFace(local, neighbor []int, face flux.Face) (id int, err error) {
	if len(local) != len(neighbor) {
		err = fmt.Errorf("%w: face has %d local and %d neighbor indices",
			types.ErrSizeMismatch, len(local), len(neighbor))
		return
	}
	id = len(fg.faces)
	fg.faces = append(fg.faces, FaceInfo{
		FaceIndices:     local,
		OppositeIndices: neighbor,
		Face:            face,
	})
	return
}

// ConnectFaces wires each connection one way. A two-sided coupling needs
// both (i, j) and (j, i). Either every connection is applied or none is.
func (fg *FaceGroup) ConnectFaces(conns []Connection) error {
	for _, c := range conns {
		if c.Local < 0 || c.Local >= len(fg.faces) || c.Opposite < 0 || c.Opposite >= len(fg.faces) {
			return fmt.Errorf("%w: connection (%d, %d) in a group of %d faces",
				types.ErrInvalidReference, c.Local, c.Opposite, len(fg.faces))
		}
	}
	for _, c := range conns {
		fg.faces[c.Local].opposite = c.Opposite
		fg.faces[c.Local].linked = true
	}
	return nil
}

// Opposite returns the flux view of face i's neighbor, absent on boundaries.
func (fg *FaceGroup) Opposite(i int) flux.Opposite {
	fi := &fg.faces[i]
	if !fi.linked {
		return flux.Boundary()
	}
	return flux.Across(fg.faces[fi.opposite].Face)
}
