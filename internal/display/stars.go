package display

import "math"

// StarRating is the discrete star display for a numeric rating out of 5.
type StarRating struct {
	Full  int `json:"full"`
	Half  int `json:"half"`
	Empty int `json:"empty"`
}

// DecomposeRating maps a rating in [0,5] to its star display: Full is the
// integer part, Half is 1 when the fractional part reaches 0.5, and Empty
// pads the total to five stars. The second return is false when no rating
// is present, which renders as no stars at all rather than zero stars.
// Callers are expected to clamp or reject ratings outside [0,5].
func DecomposeRating(rating *float64) (StarRating, bool) {
	if rating == nil {
		return StarRating{}, false
	}

	full := int(math.Floor(*rating))
	half := 0
	if *rating-float64(full) >= 0.5 {
		half = 1
	}

	return StarRating{
		Full:  full,
		Half:  half,
		Empty: 5 - full - half,
	}, true
}
