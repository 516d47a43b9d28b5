package utils

type Index []int

func NewIndex(N int) (I Index) {
	return make(Index, N)
}

// NewRange produces the indices [rmin, rmax] inclusive.
func NewRange(rmin, rmax int) (r Index) {
	r = make(Index, rmax-rmin+1)
	for i := range r {
		r[i] = rmin + i
	}
	return
}

func NewOnes(N int) (r Index) {
	r = make(Index, N)
	for i := range r {
		r[i] = 1
	}
	return
}

func (I Index) Add(val int) (r Index) {
	r = make(Index, len(I))
	for i, ival := range I {
		r[i] = ival + val
	}
	return
}

func (I Index) Subset(J Index) (r Index) {
	r = make(Index, len(J))
	for j, jval := range J {
		r[j] = I[jval]
	}
	return
}

func (I Index) Apply(f func(val int) int) (r Index) {
	r = make(Index, len(I))
	for i, ival := range I {
		r[i] = f(ival)
	}
	return
}
