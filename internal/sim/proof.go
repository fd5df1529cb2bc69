package sim

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeebo/xxh3"
)

// ProofDigest hashes a score proof into a short hex string. Each point
// contributes its x and y as little-endian IEEE-754 bits, in order, so
// any change to a recorded position or to the number of points changes
// the digest.
func ProofDigest(proof []mgl64.Vec2) string {
	buf := make([]byte, 0, len(proof)*16)
	for _, p := range proof {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p.X()))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p.Y()))
	}
	return fmt.Sprintf("%016x", xxh3.Hash(buf))
}
