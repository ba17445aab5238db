package shelf

import "sort"

// View returns the shelf as displayed: optionally only favorites, then
// favorites first, then by next watering date ascending with undated plants
// last, then newest first. The input slice is not modified.
func View(plants []Plant, favoritesOnly bool) []Plant {
	out := make([]Plant, 0, len(plants))
	for _, p := range plants {
		if favoritesOnly && !p.Favorite {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func less(a, b Plant) bool {
	if a.Favorite != b.Favorite {
		return a.Favorite
	}
	aDated, bDated := !a.NextWaterAt.IsZero(), !b.NextWaterAt.IsZero()
	if aDated != bDated {
		return aDated
	}
	if aDated {
		if c := a.NextWaterAt.Compare(b.NextWaterAt); c != 0 {
			return c < 0
		}
	}
	return a.CreatedAt.After(b.CreatedAt)
}
