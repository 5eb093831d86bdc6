package slice

func Remove[T any](slice []T, stId int, endId int) []T {
	newSlice := make([]T, len(slice)-endId+stId)

	copy(newSlice, slice[:stId])
	copy(newSlice[stId:], slice[endId:])

	return newSlice
}

func TrimSpaces(line string, id int) int {
	for id < len(line) && line[id] == ' ' {
		id++
	}

	return id
}

func NextSpace(line string, id int) int {
	for id < len(line) && line[id] != ' ' {
		id++
	}

	return id
}

func Last[T any](slice []T) (T, bool) {
	var zero T
	if len(slice) == 0 {
		return zero, false
	}

	return slice[len(slice)-1], true
}
