package reservation

// ChooseSlot returns the first preferred time that is bookable, trying
// preferences in order. If preferred is empty, returns the earliest bookable slot.
func ChooseSlot(preferred []TimeOfDay, available []TimeOfDay) (TimeOfDay, bool) {
	if len(available) == 0 {
		return 0, false
	}
	if len(preferred) == 0 {
		best := available[0]
		for _, s := range available[1:] {
			if s < best {
				best = s
			}
		}
		return best, true
	}

	m := make(map[TimeOfDay]bool, len(available))
	for _, s := range available {
		m[s] = true
	}
	for _, p := range preferred {
		if m[p] {
			return p, true
		}
	}
	return 0, false
}

// NearestSlot returns the bookable slot closest to desired. Ties go to the earlier slot.
func NearestSlot(desired TimeOfDay, available []TimeOfDay) (TimeOfDay, bool) {
	if len(available) == 0 {
		return 0, false
	}
	best := available[0]
	for _, s := range available[1:] {
		ds, db := absDiff(s, desired), absDiff(best, desired)
		if ds < db || (ds == db && s < best) {
			best = s
		}
	}
	return best, true
}

func absDiff(a, b TimeOfDay) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
