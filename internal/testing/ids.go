package testing

// PairWithFirst splits ids into pairs whose first element is ids[0]
// e.g. [0, 1, 2, 3] -> [[0,1], [0,2], [0,3]]
func PairWithFirst(ids []int64) [][2]int64 {
	if len(ids) < 2 {
		return nil
	}
	pairs := make([][2]int64, 0, len(ids)-1)
	for i := 1; i < len(ids); i++ {
		pairs = append(pairs, [2]int64{ids[0], ids[i]})
	}
	return pairs
}
