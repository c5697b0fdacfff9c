package graph

import (
	"encoding/binary"
	"hash/fnv"
	"math"
)

// ViewportFraction bounds the outermost ring radius as a fraction of
// min(width, height).
const ViewportFraction = 0.45

// ringCapacity returns how many nodes ring k (1-based) holds.
func ringCapacity(k int) int {
	return 6 * k
}

// ringSizes splits n nodes over as few rings as possible, filling inner
// rings first.
func ringSizes(n int) []int {
	var sizes []int
	for k := 1; n > 0; k++ {
		size := min(ringCapacity(k), n)
		sizes = append(sizes, size)
		n -= size
	}
	return sizes
}

// ringOffset derives a stable angular offset in [0, 2π) from the seed id and
// ring index.
func ringOffset(seedID string, ring int) float64 {
	h := fnv.New64a()
	h.Write([]byte(seedID))
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(ring))
	h.Write(buf[:])
	// Top 53 bits give an exact fraction in [0, 1).
	return float64(h.Sum64()>>11) / (1 << 53) * 2 * math.Pi
}

// RingLayout places the seed at the canvas center and the ordered nodes on
// concentric rings around it, the first nodes on the innermost ring. The
// outermost ring has radius ViewportFraction * min(width, height).
func RingLayout(seedID string, ordered []string, width, height float64) map[string]Position {
	cx, cy := width/2, height/2
	positions := make(map[string]Position, len(ordered)+1)
	positions[seedID] = Position{X: cx, Y: cy}

	sizes := ringSizes(len(ordered))
	if len(sizes) == 0 {
		return positions
	}

	maxR := ViewportFraction * math.Min(width, height)
	rings := len(sizes)
	next := 0
	for i, size := range sizes {
		k := i + 1
		radius := maxR * (float64(k) / float64(rings))
		offset := ringOffset(seedID, k)
		step := 2 * math.Pi / float64(size)
		for j := 0; j < size; j++ {
			theta := offset + step*float64(j)
			positions[ordered[next]] = Position{
				X: cx + radius*math.Cos(theta),
				Y: cy + radius*math.Sin(theta),
			}
			next++
		}
	}
	return positions
}
