package achievements

import (
	"fmt"
	"math"

	"smartbeans/level"
)

// BalanceRatio compares the area of the user's skill polygon with the area
// of the maximum polygon. Skills are the vertices of a regular polygon in
// lexicographic order; consecutive vertices span a triangle of area
// 0.5*a*b*sin(2π/n). Both areas use the skill order of max.
func BalanceRatio(user, max level.Points) (float64, error) {
	names := max.Skills()
	n := len(names)
	if n == 0 {
		return 0, fmt.Errorf("%w: no skills defined", ErrMalformedInput)
	}

	edge := math.Sin(2 * math.Pi / float64(n))
	var userArea, maxArea float64
	for i, name := range names {
		next := names[(i+1)%n]
		userArea += 0.5 * float64(user[name]) * float64(user[next]) * edge
		maxArea += 0.5 * float64(max[name]) * float64(max[next]) * edge
	}

	if maxArea == 0 {
		return 0, nil
	}
	return userArea / maxArea, nil
}
