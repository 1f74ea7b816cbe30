package types

import "strings"

type BCFLAG uint8

const (
	BC_None BCFLAG = iota
	BC_In
	BC_Out
	BC_Dirichlet
	BC_Neuman
)

var BCNameMap = map[string]BCFLAG{
	"inflow":    BC_In,
	"in":        BC_In,
	"out":       BC_Out,
	"outflow":   BC_Out,
	"dirichlet": BC_Dirichlet,
	"neuman":    BC_Neuman,
}

func (bf BCFLAG) String() string {
	switch bf {
	case BC_In:
		return "inflow"
	case BC_Out:
		return "outflow"
	case BC_Dirichlet:
		return "dirichlet"
	case BC_Neuman:
		return "neuman"
	}
	return "none"
}

// NewBCFLAG resolves a boundary tag name, case insensitive. Unknown names map
// to BC_None.
func NewBCFLAG(name string) (bf BCFLAG) {
	var ok bool
	if bf, ok = BCNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		bf = BC_None
	}
	return
}
