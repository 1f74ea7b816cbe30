package utils

type Index []int

// NewRange returns the half-open sequence rmin, rmin+1, ..., rmax-1.
func NewRange(rmin, rmax int) (r Index) {
	if rmax < rmin {
		return Index{}
	}
	r = make(Index, rmax-rmin)
	for i := range r {
		r[i] = i + rmin
	}
	return
}

func (I Index) Add(val int) (r Index) {
	r = make(Index, len(I))
	for i, ival := range I {
		r[i] = val + ival
	}
	return r
}

func (I Index) Copy() (r Index) {
	r = make(Index, len(I))
	copy(r, I)
	return
}

func (I Index) Subset(J Index) (r Index) {
	r = make(Index, len(J))
	for j, val := range J {
		r[j] = I[val]
	}
	return
}

// Max returns the largest entry, or -1 for an empty index.
func (I Index) Max() (imax int) {
	imax = -1
	for _, val := range I {
		if val > imax {
			imax = val
		}
	}
	return
}

// Min returns the smallest entry, or -1 for an empty index.
func (I Index) Min() (imin int) {
	if len(I) == 0 {
		return -1
	}
	imin = I[0]
	for _, val := range I[1:] {
		if val < imin {
			imin = val
		}
	}
	return
}
