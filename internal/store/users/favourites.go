package users

// AddFavourite appends roomID unless it is already present.
func AddFavourite(list []int64, roomID int64) []int64 {
	out := make([]int64, 0, len(list)+1)
	seen := make(map[int64]bool, len(list)+1)
	for _, id := range list {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	if !seen[roomID] {
		out = append(out, roomID)
	}
	return out
}

// RemoveFavourite drops every occurrence of roomID.
func RemoveFavourite(list []int64, roomID int64) []int64 {
	out := make([]int64, 0, len(list))
	for _, id := range list {
		if id != roomID {
			out = append(out, id)
		}
	}
	return out
}
