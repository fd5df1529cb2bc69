package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownEventType is returned by Decode for an unrecognized "t" tag.
var ErrUnknownEventType = errors.New("broadcast: unknown event type")

// Message is the JSON wire form of an Envelope.
type Message struct {
	Type        Kind        `json:"t" jsonschema:"enum=s,enum=pg,enum=c,description=s started / pg point gained / c ended"`
	RunID       string      `json:"id" jsonschema:"description=run identifier"`
	FrameCount  *int        `json:"fc,omitempty" jsonschema:"description=frame count (started) or frame offset (point gained)"`
	Score       *int        `json:"s,omitempty" jsonschema:"description=score after the point was gained"`
	Position    *[2]float64 `json:"sp,omitempty" jsonschema:"description=x and y of the bird when the point was gained"`
	JumpHistory *[]int      `json:"jh,omitempty" jsonschema:"description=frame offsets of every flap in the run"`
	FinalScore  *int        `json:"fs,omitempty" jsonschema:"description=final score of the run"`
	Timestamp   int64       `json:"__t" jsonschema:"description=capture time in Unix milliseconds"`
}

// ToMessage converts an envelope into its wire form.
func ToMessage(env Envelope) Message {
	msg := Message{
		Type:      env.Event.Kind(),
		RunID:     env.Event.Run(),
		Timestamp: env.At.UnixMilli(),
	}
	switch e := env.Event.(type) {
	case Started:
		fc := e.FrameCount
		msg.FrameCount = &fc
	case PointGained:
		fc, s, sp := e.FrameOffset, e.Score, e.Position
		msg.FrameCount = &fc
		msg.Score = &s
		msg.Position = &sp
	case Ended:
		fs := e.FinalScore
		jh := e.JumpHistory
		if jh == nil {
			jh = []int{}
		}
		msg.FinalScore = &fs
		msg.JumpHistory = &jh
	}
	return msg
}

// Envelope converts a wire message back into an envelope.
func (m Message) Envelope() (Envelope, error) {
	env := Envelope{At: time.UnixMilli(m.Timestamp)}
	switch m.Type {
	case KindStarted:
		env.Event = Started{RunID: m.RunID, FrameCount: deref(m.FrameCount)}
	case KindPointGained:
		e := PointGained{RunID: m.RunID, FrameOffset: deref(m.FrameCount), Score: deref(m.Score)}
		if m.Position != nil {
			e.Position = *m.Position
		}
		env.Event = e
	case KindEnded:
		e := Ended{RunID: m.RunID, FinalScore: deref(m.FinalScore)}
		if m.JumpHistory != nil {
			e.JumpHistory = *m.JumpHistory
		}
		env.Event = e
	default:
		return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownEventType, m.Type)
	}
	return env, nil
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// Encode serializes an envelope as a single JSON object.
func Encode(env Envelope) ([]byte, error) {
	data, err := json.Marshal(ToMessage(env))
	if err != nil {
		return nil, fmt.Errorf("broadcast: cannot encode %s event: %w", env.Event.Kind(), err)
	}
	return data, nil
}

// Decode parses a JSON object produced by Encode.
func Decode(data []byte) (Envelope, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Envelope{}, fmt.Errorf("broadcast: cannot decode event: %w", err)
	}
	return msg.Envelope()
}
