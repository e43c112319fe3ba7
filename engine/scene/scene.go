// package scene owns the demo's vector scene data and everything needed to
// turn it into renderable form: build options, per-viewport render
// transforms, the built outputs with their statistics, and the background
// build worker that owns the mutable scene exclusively.
package scene

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/vectra-gfx/vectra/common"
)

// stemDarkeningFactors are the horizontal and vertical dilation factors per
// point of font size used by the stem darkening effect.
var stemDarkeningFactors = [2]float32{0.0121, 0.015125}

// maxBuildChunks bounds how many tasks a single parallel build fans out to,
// keeping the pool queue depth independent of scene size.
const maxBuildChunks = 64

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// ToFloats returns the color as normalized RGBA components.
func (c Color) ToFloats() [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}

// PathObject is a single drawable path: a polyline contour with a fill color.
type PathObject struct {
	Name   string
	Color  Color
	Closed bool
	Points []common.Vec2
}

// Scene is the mutable vector scene. After construction it is handed to the
// build worker, which owns it exclusively; the control thread never touches
// it again.
type Scene struct {
	Objects []PathObject

	// ViewBox is the logical bounding rectangle used for camera setup,
	// independent of viewport pixel size.
	ViewBox common.RectF

	// Bounds is the union of all object bounds.
	Bounds common.RectF
}

// MonochromeColor returns the single color shared by every object, if the
// scene is monochrome.
//
// Returns:
//   - Color: the shared color (zero value if not monochrome)
//   - bool: true if all objects share one color
func (s *Scene) MonochromeColor() (Color, bool) {
	if len(s.Objects) == 0 {
		return Color{}, false
	}
	first := s.Objects[0].Color
	for _, obj := range s.Objects[1:] {
		if obj.Color != first {
			return Color{}, false
		}
	}
	return first, true
}

// Dump returns a full diagnostic description of the scene, used when a build
// fault makes the scene state suspect.
func (s *Scene) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scene: %d objects, view box %+v, bounds %+v\n", len(s.Objects), s.ViewBox, s.Bounds)
	for i, obj := range s.Objects {
		fmt.Fprintf(&b, "  [%d] %q color=%+v closed=%v points=%d: %v\n",
			i, obj.Name, obj.Color, obj.Closed, len(obj.Points), obj.Points)
	}
	return b.String()
}

// TransformKind discriminates the per-viewport render transform variants.
type TransformKind int

const (
	// TransformKind2D is a 2D affine transform.
	TransformKind2D TransformKind = iota

	// TransformKindPerspective is a 3D perspective transform.
	TransformKindPerspective
)

// RenderTransform is the tagged per-viewport projection description used to
// build one renderable scene: either a 2D affine transform or a perspective.
type RenderTransform struct {
	Kind        TransformKind
	Affine      common.Matrix2D
	Perspective common.Perspective
}

// Transform2D wraps a 2D affine transform as a RenderTransform.
func Transform2D(m common.Matrix2D) RenderTransform {
	return RenderTransform{Kind: TransformKind2D, Affine: m}
}

// TransformPerspective wraps a perspective as a RenderTransform.
func TransformPerspective(p common.Perspective) RenderTransform {
	return RenderTransform{Kind: TransformKindPerspective, Perspective: p}
}

// BuildOptions describes one build request. Immutable once sent to the
// worker.
type BuildOptions struct {
	// RenderTransforms holds one transform per viewport, in viewport order.
	RenderTransforms []RenderTransform

	// StemDarkeningFontSize enables stem darkening dilation when > 0.
	StemDarkeningFontSize float32

	// SubpixelAA enables subpixel antialiasing.
	SubpixelAA bool

	// BarrelDistortion applies lens distortion to perspective builds when set.
	BarrelDistortion *common.DistortionCoefficients
}

// preparedOptions is a BuildOptions resolved against a single transform, with
// derived dilation.
type preparedOptions struct {
	transform  RenderTransform
	dilation   common.Vec2
	distortion *common.DistortionCoefficients
	subpixelAA bool
}

func prepare(options BuildOptions, transform RenderTransform) preparedOptions {
	p := preparedOptions{
		transform:  transform,
		subpixelAA: options.SubpixelAA,
	}
	if options.StemDarkeningFontSize > 0 {
		p.dilation = common.Vec2{
			X: stemDarkeningFactors[0] * options.StemDarkeningFontSize,
			Y: stemDarkeningFactors[1] * options.StemDarkeningFontSize,
		}
	}
	if transform.Kind == TransformKindPerspective {
		p.distortion = options.BarrelDistortion
	}
	return p
}

// BuiltObject is one path object transformed into viewport space.
type BuiltObject struct {
	Name     string
	Color    Color
	Closed   bool
	Vertices []common.Vec2
	Bounds   common.RectF
}

// Stats aggregates counters describing one or more built scenes.
type Stats struct {
	ObjectCount int
	VertexCount int
}

// Add returns the sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		ObjectCount: s.ObjectCount + o.ObjectCount,
		VertexCount: s.VertexCount + o.VertexCount,
	}
}

// BuiltScene is the renderable form of a scene for one viewport transform.
type BuiltScene struct {
	ViewBox common.RectF
	Objects []BuiltObject
	Stats   Stats
}

// RenderScene pairs a built scene with the transform it was built for, so the
// caller can match output viewports back to requested transforms.
type RenderScene struct {
	Built     *BuiltScene
	Transform RenderTransform
}

// BuiltFrame is one build result: the ordered per-viewport scenes plus the
// wall-clock duration the whole build took.
type BuiltFrame struct {
	Scenes    []RenderScene
	BuildTime time.Duration
}

// buildObject transforms a single path object into viewport space. An empty
// contour is a programming error upstream and faults the build.
func buildObject(obj PathObject, options preparedOptions) BuiltObject {
	vertices := make([]common.Vec2, len(obj.Points))
	for i, p := range obj.Points {
		vertices[i] = transformPoint(p, options)
	}

	bounds := common.RectF{Origin: vertices[0]}
	for _, v := range vertices[1:] {
		bounds = bounds.Union(common.RectF{Origin: v})
	}

	return BuiltObject{
		Name:     obj.Name,
		Color:    obj.Color,
		Closed:   obj.Closed,
		Vertices: vertices,
		Bounds:   bounds.Dilate(options.dilation),
	}
}

func transformPoint(p common.Vec2, options preparedOptions) common.Vec2 {
	switch options.transform.Kind {
	case TransformKindPerspective:
		v := options.transform.Perspective.Apply(p)
		if options.distortion != nil {
			v = distortPoint(v, options.transform.Perspective.ViewportSize, *options.distortion)
		}
		return v
	default:
		return options.transform.Affine.Apply(p)
	}
}

// distortPoint applies radial barrel distortion about the viewport center.
func distortPoint(p common.Vec2, viewportSize common.Vec2i, coeffs common.DistortionCoefficients) common.Vec2 {
	size := viewportSize.ToVec2()
	center := size.Scale(0.5)
	// Normalize so the shorter half-dimension has unit radius.
	radius := center.Min()
	n := p.Sub(center).Scale(1 / radius)
	r2 := n.X*n.X + n.Y*n.Y
	factor := 1 + coeffs.K1*r2 + coeffs.K2*r2*r2
	return n.Scale(factor * radius).Add(center)
}

// buildObjectsSequentially builds every object in order on the calling
// goroutine.
func (s *Scene) buildObjectsSequentially(options preparedOptions) []BuiltObject {
	built := make([]BuiltObject, len(s.Objects))
	for i, obj := range s.Objects {
		built[i] = buildObject(obj, options)
	}
	return built
}

// buildObjects builds objects concurrently on the given pool. Each task fills
// a contiguous range of the output slice, so the result order always equals
// the object order regardless of completion order. Results are identical to
// the sequential variant for the same input.
func (s *Scene) buildObjects(options preparedOptions, pool worker.DynamicWorkerPool, taskID func() int) []BuiltObject {
	built := make([]BuiltObject, len(s.Objects))
	if len(s.Objects) == 0 {
		return built
	}

	chunks := maxBuildChunks
	if len(s.Objects) < chunks {
		chunks = len(s.Objects)
	}
	chunkSize := (len(s.Objects) + chunks - 1) / chunks
	faults := make([]any, (len(s.Objects)+chunkSize-1)/chunkSize)

	var wg sync.WaitGroup
	slot := 0
	for start := 0; start < len(s.Objects); start += chunkSize {
		end := start + chunkSize
		if end > len(s.Objects) {
			end = len(s.Objects)
		}

		wg.Add(1)
		lo, hi, si := start, end, slot
		slot++
		pool.SubmitTask(worker.Task{
			ID: taskID(),
			Do: func() (any, error) {
				defer wg.Done()
				// A fault inside a pool task must reach the build boundary on
				// the worker goroutine, not die with the pool worker.
				defer func() {
					if r := recover(); r != nil {
						faults[si] = r
					}
				}()
				for i := lo; i < hi; i++ {
					built[i] = buildObject(s.Objects[i], options)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	for _, f := range faults {
		if f != nil {
			panic(f)
		}
	}

	return built
}
