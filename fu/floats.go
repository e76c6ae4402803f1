package fu

func Mean(a []float64) float64 {
	var c float64
	for _, x := range a {
		c += x
	}
	return c / float64(len(a))
}

// Fnzi returns the first non-zero integer
func Fnzi(a ...int) int {
	for _, x := range a {
		if x != 0 {
			return x
		}
	}
	return 0
}

// Fnzi64 returns the first non-zero 64-bit integer
func Fnzi64(a ...int64) int64 {
	for _, x := range a {
		if x != 0 {
			return x
		}
	}
	return 0
}

// Fnzd returns the first non-zero float
func Fnzd(a ...float64) float64 {
	for _, x := range a {
		if x != 0 {
			return x
		}
	}
	return 0
}

func Mini(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func Maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Indmaxd returns the index of the maximal value
func Indmaxd(a []float64) int {
	j := 0
	for i, x := range a {
		if x > a[j] {
			j = i
		}
	}
	return j
}
