package searchkey

// SearchChars returns, for each rune in chars, the rune indexes at which it
// occurs in text. Parsers use this to pair demarcation characters such as
// quotes and parentheses.
func SearchChars(text string, chars []rune) [][]int {
	positions := make([][]int, len(chars))
	for i := range positions {
		positions[i] = []int{}
	}
	lookup := make(map[rune][]int, len(chars))
	for i, c := range chars {
		lookup[c] = append(lookup[c], i)
	}
	for idx, r := range []rune(text) {
		for _, slot := range lookup[r] {
			positions[slot] = append(positions[slot], idx)
		}
	}
	return positions
}
