// Package sound synthesises the short procedural effects played by the
// desktop host. Buffers are interleaved stereo float32 little endian.
package sound

import (
	"io"
	"math"

	"worms/internal/worm"
)

const (
	SampleRate   = 44100
	ChannelCount = 2
	BitDepth     = 0 // 32-bit float (oto.FormatFloat32LE)

	bytesPerFrame = 8
)

// StepDuration is the length of one step pluck in seconds.
const StepDuration = 0.12

// stepPitch gives each heading its own note, an A minor pentatonic spread.
var stepPitch = map[worm.MoveType]float64{
	worm.Up:    659.25, // E5
	worm.Right: 587.33, // D5
	worm.Down:  493.88, // B4
	worm.Left:  440.00, // A4
}

// StepFrequency returns the pluck pitch for a worm heading.
func StepFrequency(t worm.MoveType) float64 {
	if f, ok := stepPitch[t]; ok {
		return f
	}
	return 523.25
}

// Reader plays a prepared buffer once.
type Reader struct {
	data []byte
	pos  int
}

func NewReader(data []byte) *Reader { return &Reader{data: data} }

func (r *Reader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

// putStereoF32 writes a [-1,1] sample as float32 LE to both stereo channels at frame i.
func putStereoF32(buf []byte, i int, sample float64) {
	v := math.Float32bits(float32(sample))
	buf[i*8] = byte(v)
	buf[i*8+1] = byte(v >> 8)
	buf[i*8+2] = byte(v >> 16)
	buf[i*8+3] = byte(v >> 24)
	buf[i*8+4] = byte(v)
	buf[i*8+5] = byte(v >> 8)
	buf[i*8+6] = byte(v >> 16)
	buf[i*8+7] = byte(v >> 24)
}

// softSat applies gentle saturation without hard clipping.
func softSat(x float64) float64 {
	if x > 1.0 {
		return 1.0 - 0.5/(x)
	}
	if x < -1.0 {
		return -1.0 + 0.5/(-x)
	}
	return x - x*x*x/3.0
}

// adsr returns an envelope at normalized progress [0,1].
// attack/decay/release are fractions of the total duration.
func adsr(progress, attack, decay, sustain, release float64) float64 {
	switch {
	case progress < attack:
		return progress / attack
	case progress < attack+decay:
		return 1.0 - (progress-attack)/decay*(1.0-sustain)
	case progress < 1.0-release:
		return sustain
	default:
		return sustain * (1.0 - (progress-(1.0-release))/release)
	}
}

// fm returns an FM-synthesized sample.
func fm(t, carrier, modRatio, modIdx float64) float64 {
	mod := math.Sin(2 * math.Pi * carrier * modRatio * t)
	return math.Sin(2*math.Pi*carrier*t + modIdx*mod)
}

func makeBuf(n int) []byte { return make([]byte, n*bytesPerFrame) }

// Step renders a soft bell pluck at freq.
func Step(freq float64) []byte {
	n := int(StepDuration * SampleRate)
	buf := makeBuf(n)
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		p := float64(i) / float64(n)
		env := adsr(p, 0.02, 0.45, 0.15, 0.35)
		s := fm(t, freq, 2.0, 1.6*env) * env * 0.35
		s += math.Sin(2*math.Pi*freq*2*t) * env * 0.05
		putStereoF32(buf, i, softSat(s))
	}
	return buf
}

// StepBank renders one pluck per heading.
func StepBank() map[worm.MoveType][]byte {
	bank := make(map[worm.MoveType][]byte, len(stepPitch))
	for _, t := range []worm.MoveType{worm.Up, worm.Down, worm.Left, worm.Right} {
		bank[t] = Step(StepFrequency(t))
	}
	return bank
}
