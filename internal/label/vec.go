package label

import (
	"fmt"
	"strconv"
	"strings"
)

// Vec3i identifies a brick by its world position. Two positions are
// equal iff all three components are equal.
type Vec3i struct {
	X, Y, Z int
}

// Key is the canonical map-key encoding of a position.
func (v Vec3i) Key() string {
	return strconv.Itoa(v.X) + "," + strconv.Itoa(v.Y) + "," + strconv.Itoa(v.Z)
}

func (v Vec3i) Array() [3]int { return [3]int{v.X, v.Y, v.Z} }

func FromArray(a [3]int) Vec3i { return Vec3i{X: a[0], Y: a[1], Z: a[2]} }

// ParseKey inverts Key. Rejects anything that is not three integers.
func ParseKey(s string) (Vec3i, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Vec3i{}, fmt.Errorf("position key %q: want 3 components", s)
	}
	var out [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Vec3i{}, fmt.Errorf("position key %q: %w", s, err)
		}
		out[i] = n
	}
	return FromArray(out), nil
}
