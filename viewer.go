package grabview

import (
	"image"
	"image/png"
	"os"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

var ErrViewerClosed = errors.New("grabview: viewer is closed")

// MeshViewer is an offscreen render session. It holds exactly one set of
// static meshes and one camera; SetStaticMeshes replaces the set wholesale.
// A MeshViewer is not safe for concurrent use.
type MeshViewer struct {
	Width, Height int
	// Scale is the supersampling factor; frames are rasterized at
	// Scale times the output size and downsampled.
	Scale int

	Background   Color
	FovY         float64
	Near, Far    float64
	AmbientColor Color
	DiffuseColor Color
	LineWidth    float64
	// WireframeBias pulls wireframe depth toward the camera so edges
	// win against the surface they lie on.
	WireframeBias float64

	ctx    *Context
	pose   Matrix
	view   Matrix
	meshes []*MeshView
	closed bool
}

// NewMeshViewer returns an offscreen viewer with the camera at the origin
// looking down -Z.
func NewMeshViewer(width, height, scale int) *MeshViewer {
	if scale < 1 {
		scale = 1
	}
	ctx := NewContext(width*scale, height*scale, nil)
	ctx.LineWidth = float64(scale)
	return &MeshViewer{
		Width:         width,
		Height:        height,
		Scale:         scale,
		Background:    White,
		FovY:          60,
		Near:          0.05,
		Far:           100,
		AmbientColor:  Color{0.3, 0.3, 0.3, 1},
		DiffuseColor:  Color{0.7, 0.7, 0.7, 1},
		LineWidth:     1,
		WireframeBias: 2e-5,
		ctx:           ctx,
		pose:          Identity(),
		view:          Identity(),
	}
}

// UpdateCameraPose sets the camera-to-world transform.
func (mv *MeshViewer) UpdateCameraPose(pose Matrix) error {
	if mv.closed {
		return ErrViewerClosed
	}
	mv.pose = pose
	mv.view = pose.Inverse()
	return nil
}

// SetStaticMeshes makes meshes the current set, dropping the previous one.
func (mv *MeshViewer) SetStaticMeshes(meshes []*MeshView) error {
	if mv.closed {
		return ErrViewerClosed
	}
	mv.meshes = append([]*MeshView(nil), meshes...)
	return nil
}

// Matrix returns the combined projection and view transform.
func (mv *MeshViewer) Matrix() Matrix {
	aspect := float64(mv.Width) / float64(mv.Height)
	return Perspective(mv.FovY, aspect, mv.Near, mv.Far).Mul(mv.view)
}

// Render draws the current mesh set and returns a new image of
// Width x Height pixels. The returned image does not alias viewer memory.
func (mv *MeshViewer) Render() (image.Image, error) {
	if mv.closed {
		return nil, ErrViewerClosed
	}
	dc := mv.ctx
	dc.ClearColorBufferWith(mv.Background)
	dc.ClearDepthBuffer()

	matrix := mv.Matrix()
	eye := Vector{mv.pose.X03, mv.pose.X13, mv.pose.X23}
	// headlight along the camera's viewing axis
	light := Vector{mv.pose.X02, mv.pose.X12, mv.pose.X22}
	phong := NewPhongShader(matrix, light, eye, mv.AmbientColor, mv.DiffuseColor)
	solid := NewSolidColorShader(matrix)

	for _, m := range mv.meshes {
		if m.Wireframe {
			dc.Shader = solid
			dc.DepthBias = -mv.WireframeBias
			dc.LineWidth = mv.LineWidth * float64(mv.Scale)
			dc.DrawLines(m.Lines())
			continue
		}
		dc.Shader = phong
		dc.DepthBias = 0
		dc.DrawTriangles(m.Triangles())
	}
	dc.DepthBias = 0

	if mv.Scale == 1 {
		src := dc.ColorBuffer
		dst := image.NewNRGBA(src.Rect)
		copy(dst.Pix, src.Pix)
		return dst, nil
	}
	return resize.Resize(uint(mv.Width), uint(mv.Height), dc.Image(), resize.Bilinear), nil
}

// SaveSnapshot renders the current mesh set, writes it to path as PNG and
// returns the image.
func (mv *MeshViewer) SaveSnapshot(path string) (image.Image, error) {
	img, err := mv.Render()
	if err != nil {
		return nil, err
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "grabview: create snapshot")
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return nil, errors.Wrap(err, "grabview: encode snapshot")
	}
	return img, file.Close()
}

// Close releases the render buffers. Further calls other than Close fail
// with ErrViewerClosed.
func (mv *MeshViewer) Close() error {
	if mv.closed {
		return nil
	}
	mv.closed = true
	mv.ctx = nil
	mv.meshes = nil
	return nil
}
