package sim

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/flapline/internal/config"
)

var (
	// ErrReplayDiverged is returned when a replayed run does not reproduce
	// the recorded result.
	ErrReplayDiverged = errors.New("sim: replay diverged")
	// ErrInvalidHistory is returned for jump histories that cannot come from a run.
	ErrInvalidHistory = errors.New("sim: invalid jump history")
)

// maxReplayFrames bounds a replay; a run with no flaps hits the ground long before.
const maxReplayFrames = 1 << 22

// ReplayResult is the outcome of re-simulating a jump history.
type ReplayResult struct {
	Phase       Phase
	Score       int
	Frames      int
	Proof       []mgl64.Vec2
	Digest      string
	JumpHistory []int
}

// Replay re-simulates a run headlessly from its jump history. Offsets are
// frames relative to the run start, ascending, and the first must be 0
// (the launch flap).
func Replay(cfg config.FlapConfig, jumps []int, opts ...Option) (ReplayResult, error) {
	if len(jumps) == 0 || jumps[0] != 0 {
		return ReplayResult{}, fmt.Errorf("%w: must start with offset 0", ErrInvalidHistory)
	}
	for i := 1; i < len(jumps); i++ {
		if jumps[i] <= jumps[i-1] {
			return ReplayResult{}, fmt.Errorf("%w: offsets not strictly ascending at %d", ErrInvalidHistory, i)
		}
	}

	e := New(cfg, opts...)
	next := 0
	for !e.Terminal() {
		offset := 0
		if e.Phase() == Started {
			offset = e.frame - e.startFrame
		}
		if offset > maxReplayFrames {
			return ReplayResult{}, fmt.Errorf("%w: no result after %d frames", ErrReplayDiverged, maxReplayFrames)
		}
		if next < len(jumps) && jumps[next] == offset {
			e.EnqueueFlap()
			next++
		}
		if !e.Tick() {
			break
		}
	}

	return ReplayResult{
		Phase:       e.Phase(),
		Score:       e.Score(),
		Frames:      e.frame - e.startFrame,
		Proof:       e.ScoreProof(),
		Digest:      ProofDigest(e.proof),
		JumpHistory: e.LastRun(),
	}, nil
}

// Verify replays jumps and checks the result against a recorded score and
// proof digest. An empty digest skips the digest comparison.
func Verify(cfg config.FlapConfig, jumps []int, score int, digest string) (ReplayResult, error) {
	res, err := Replay(cfg, jumps)
	if err != nil {
		return res, err
	}
	if res.Score != score {
		return res, fmt.Errorf("%w: score %d, recorded %d", ErrReplayDiverged, res.Score, score)
	}
	if digest != "" && res.Digest != digest {
		return res, fmt.Errorf("%w: proof digest %s, recorded %s", ErrReplayDiverged, res.Digest, digest)
	}
	return res, nil
}
