package game

// ClassicLayout returns the traditional opening: 1 through 9, followed by
// the pairs (1, k) for k = 1..9.
func ClassicLayout() []int {
	values := make([]int, 0, 27)
	for k := 1; k <= 9; k++ {
		values = append(values, k)
	}
	for k := 1; k <= 9; k++ {
		values = append(values, 1, k)
	}
	return values
}
