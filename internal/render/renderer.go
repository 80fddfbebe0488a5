package render

import (
	"fmt"
	"image"
	"image/draw"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/curvetex/internal/logger"
	m "github.com/Faultbox/curvetex/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Renderer draws terrain meshes and debug lines with one textured shader.
// It must be created after the OpenGL context.
type Renderer struct {
	config  Config
	program uint32

	locProjection int32
	locModel      int32
	locTexture    int32
	locTint       int32
	locUseTexture int32

	lineVAO uint32
	lineVBO uint32

	// Camera is the world point at the center of the viewport.
	Camera m.Vec2
	// Zoom is pixels per world unit.
	Zoom float32

	log *zap.Logger
}

// New initialises OpenGL and compiles the mesh shader.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{config: cfg, Zoom: 1, log: logger.Named("render")}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	var err error
	r.program, err = compileProgram(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	r.locProjection = uniform(r.program, "uProjection")
	r.locModel = uniform(r.program, "uModel")
	r.locTexture = uniform(r.program, "uTexture")
	r.locTint = uniform(r.program, "uTint")
	r.locUseTexture = uniform(r.program, "uUseTexture")

	gl.GenVertexArrays(1, &r.lineVAO)
	gl.BindVertexArray(r.lineVAO)
	gl.GenBuffers(1, &r.lineVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttrib2f(1, 0, 0)
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

// Close frees GL resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	if r.lineVBO != 0 {
		gl.DeleteBuffers(1, &r.lineVBO)
	}
	if r.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &r.lineVAO)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Projection returns the orthographic camera matrix.
func (r *Renderer) Projection() m.Mat4 {
	hw := float32(r.config.Width) / 2 / r.Zoom
	hh := float32(r.config.Height) / 2 / r.Zoom
	return m.Ortho(r.Camera.X-hw, r.Camera.X+hw, r.Camera.Y-hh, r.Camera.Y+hh, -1, 1)
}

// ScreenToWorld converts window pixel coordinates (origin top left) to world
// coordinates.
func (r *Renderer) ScreenToWorld(x, y int) m.Vec2 {
	wx := (float32(x) - float32(r.config.Width)/2) / r.Zoom
	wy := (float32(r.config.Height)/2 - float32(y)) / r.Zoom
	return m.V2(r.Camera.X+wx, r.Camera.Y+wy)
}

// Begin clears the frame and binds the shader.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(r.program)
	proj := r.Projection()
	gl.UniformMatrix4fv(r.locProjection, 1, false, proj.Ptr())
	gl.Uniform1i(r.locTexture, 0)
}

// DrawMesh draws a mesh with the given model matrix. A zero texture draws
// the tint only.
func (r *Renderer) DrawMesh(mesh *GPUMesh, world m.Mat4, texture uint32, tint Color) {
	gl.UniformMatrix4fv(r.locModel, 1, false, world.Ptr())
	gl.Uniform4f(r.locTint, tint[0], tint[1], tint[2], tint[3])
	if texture != 0 {
		gl.Uniform1i(r.locUseTexture, 1)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, texture)
	} else {
		gl.Uniform1i(r.locUseTexture, 0)
	}
	mesh.Draw()
}

// DrawLines draws a polyline, or a loop when closed. Points are drawn as
// dots when asPoints is set.
func (r *Renderer) DrawLines(points []m.Vec2, world m.Mat4, color Color, closed, asPoints bool) {
	if len(points) == 0 {
		return
	}
	data := make([]float32, 0, len(points)*3)
	for _, p := range points {
		data = append(data, p.X, p.Y, 0)
	}

	gl.UniformMatrix4fv(r.locModel, 1, false, world.Ptr())
	gl.Uniform4f(r.locTint, color[0], color[1], color[2], color[3])
	gl.Uniform1i(r.locUseTexture, 0)

	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STREAM_DRAW)
	mode := uint32(gl.LINE_STRIP)
	switch {
	case asPoints:
		mode = gl.POINTS
	case closed:
		mode = gl.LINE_LOOP
	}
	gl.DrawArrays(mode, 0, int32(len(points)))
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// UploadTexture creates a repeating RGBA texture from img.
func UploadTexture(img image.Image) uint32 {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != rgba.Rect.Dx()*4 {
		rgba = image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(rgba.Rect.Dx()), int32(rgba.Rect.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&rgba.Pix[0]))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

// DeleteTexture frees a texture created by UploadTexture.
func DeleteTexture(tex uint32) {
	gl.DeleteTextures(1, &tex)
}
