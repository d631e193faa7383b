package engine

import "fmt"

// Render command types, matching the wire shape consumed from the host.
const (
	CommandClear      = "clear"
	CommandDrawRect   = "drawRect"
	CommandDrawCircle = "drawCircle"
)

// CommandParams carries the union of per-type parameters. Only the fields
// relevant to the command type are read; coordinates are in pixel space with
// the origin at the top left.
type CommandParams struct {
	Color  Color   `json:"color"`
	X      float32 `json:"x,omitempty"`
	Y      float32 `json:"y,omitempty"`
	W      float32 `json:"w,omitempty"`
	H      float32 `json:"h,omitempty"`
	Radius float32 `json:"radius,omitempty"`
}

// RenderCommand is a one-shot draw instruction. It is not retained after
// execution.
type RenderCommand struct {
	Type      string        `json:"type"`
	Params    CommandParams `json:"params"`
	Timestamp float64       `json:"timestamp,omitempty"`
}

// CommandExecutor turns render commands into backend draw calls. It holds
// the current viewport size for the pixel-to-NDC conversion; the renderer
// updates it on resize.
type CommandExecutor struct {
	backend Backend
	width   int
	height  int
}

func NewCommandExecutor(backend Backend, width, height int) *CommandExecutor {
	return &CommandExecutor{backend: backend, width: width, height: height}
}

func (e *CommandExecutor) setViewport(w, h int) {
	e.width = w
	e.height = h
}

// Execute performs the command's draw side effect. Color components are
// handed to the backend as-is, unclamped.
func (e *CommandExecutor) Execute(cmd RenderCommand) error {
	switch cmd.Type {
	case CommandClear:
		e.backend.Clear(cmd.Params.Color)
	case CommandDrawRect:
		p := cmd.Params
		e.fillQuad(p.X, p.Y, p.W, p.H, p.Color)
	case CommandDrawCircle:
		// Placeholder: the circle degrades to its bounding square. Kept
		// that way on purpose; see DESIGN.md.
		p := cmd.Params
		e.fillQuad(p.X-p.Radius, p.Y-p.Radius, 2*p.Radius, 2*p.Radius, p.Color)
	default:
		return fmt.Errorf("unknown render command type %q", cmd.Type)
	}
	return nil
}

// ndcX and ndcY convert pixel coordinates (top-left origin) to normalized
// device coordinates. The y axis flips: pixel y grows downward, NDC y grows
// upward.
func (e *CommandExecutor) ndcX(x float32) float32 {
	return x/float32(e.width)*2 - 1
}

func (e *CommandExecutor) ndcY(y float32) float32 {
	return 1 - y/float32(e.height)*2
}

// fillQuad uploads a two-triangle quad covering the pixel rectangle.
func (e *CommandExecutor) fillQuad(x, y, w, h float32, c Color) {
	x0, y0 := e.ndcX(x), e.ndcY(y)
	x1, y1 := e.ndcX(x+w), e.ndcY(y+h)
	e.backend.DrawTriangles([]float32{
		x0, y0, x1, y0, x0, y1,
		x1, y0, x1, y1, x0, y1,
	}, c)
}

// fullscreenQuad covers the whole viewport without going through the pixel
// conversion.
func fullscreenQuad(b Backend, c Color) {
	b.DrawTriangles([]float32{
		-1, 1, 1, 1, -1, -1,
		1, 1, 1, -1, -1, -1,
	}, c)
}
