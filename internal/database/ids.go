package database

// NextID returns one more than the largest id in items, or 1 when items is empty
func NextID[T any](items []T, idOf func(T) int) int {
	maxID := 0
	for _, item := range items {
		if id := idOf(item); id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}
