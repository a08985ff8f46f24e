//go:build !android

package game

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"worms/internal/worm"
)

// glOffset converts a byte offset to unsafe.Pointer for OpenGL VBO offset params.
func glOffset(n int) unsafe.Pointer { return unsafe.Pointer(uintptr(n)) }

// Renderer batches worm strokes into one GL_LINES draw per frame. It
// implements worm.Canvas in window pixels.
type Renderer struct {
	prog uint32
	vao  uint32
	vbo  uint32

	uResolution int32

	verts    []float32
	capVerts int

	w, h    float64
	r, g, b float32

	arc []worm.Point
}

func NewRenderer() (*Renderer, error) {
	prog, err := linkProgram(lineVertSrc, lineFragSrc)
	if err != nil {
		return nil, fmt.Errorf("line program: %w", err)
	}
	r := &Renderer{
		prog:     prog,
		capVerts: initialLineVerts,
		verts:    make([]float32, 0, initialLineVerts*lineVertexFloats),
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)

	stride := int32(lineVertexFloats * 4)
	gl.BufferData(gl.ARRAY_BUFFER, r.capVerts*int(stride), nil, gl.STREAM_DRAW)
	// aPos (vec2)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, glOffset(0))
	// aColor (vec3)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, glOffset(2*4))

	gl.UseProgram(prog)
	r.uResolution = gl.GetUniformLocation(prog, gl.Str("uResolution\x00"))

	gl.BindVertexArray(0)
	return r, nil
}

func (r *Renderer) Destroy() {
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.prog != 0 {
		gl.DeleteProgram(r.prog)
	}
}

// BeginFrame clears to bg and starts a new batch. Strokes are given in
// window pixels; the viewport covers the framebuffer.
func (r *Renderer) BeginFrame(winW, winH, fbW, fbH int, bg worm.RGB) {
	gl.Viewport(0, 0, int32(fbW), int32(fbH))
	cr, cg, cb := bg.Floats()
	gl.ClearColor(cr, cg, cb, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	r.w, r.h = float64(winW), float64(winH)
	r.verts = r.verts[:0]
}

func (r *Renderer) Size() (float64, float64) { return r.w, r.h }

func (r *Renderer) SetColor(c worm.RGB) {
	r.r, r.g, r.b = c.Floats()
}

func (r *Renderer) vertex(x, y float64) {
	r.verts = append(r.verts, float32(x), float32(y), r.r, r.g, r.b)
}

func (r *Renderer) DrawLine(x1, y1, x2, y2 float64) {
	r.vertex(x1, y1)
	r.vertex(x2, y2)
}

// DrawArc tessellates the arc into line pairs. Worm arcs are circular, so
// w is used as the diameter.
func (r *Renderer) DrawArc(cx, cy, w, h, start, end float64) {
	r.arc = worm.ArcPoints(r.arc[:0], cx, cy, w/2, start, end, 0)
	for i := 1; i < len(r.arc); i++ {
		r.vertex(r.arc[i-1].X, r.arc[i-1].Y)
		r.vertex(r.arc[i].X, r.arc[i].Y)
	}
}

// EndFrame uploads the batch and draws it.
func (r *Renderer) EndFrame() {
	n := len(r.verts) / lineVertexFloats
	if n == 0 {
		return
	}
	gl.UseProgram(r.prog)
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.Uniform2f(r.uResolution, float32(r.w), float32(r.h))

	stride := lineVertexFloats * 4
	if n > r.capVerts {
		for r.capVerts < n {
			r.capVerts *= 2
		}
		gl.BufferData(gl.ARRAY_BUFFER, r.capVerts*stride, nil, gl.STREAM_DRAW)
	}
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, n*stride, gl.Ptr(&r.verts[0]))
	gl.DrawArrays(gl.LINES, 0, int32(n))
	gl.BindVertexArray(0)
}
