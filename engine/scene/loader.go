package scene

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vectra-gfx/vectra/common"
)

// LoadFile reads an SVG document from disk and converts the supported subset
// into a Scene. Unsupported elements are skipped and reported as warnings so
// the UI can surface them without failing the load.
//
// Parameters:
//   - path: path to the SVG file
//
// Returns:
//   - *Scene: the loaded scene
//   - []string: names of unsupported features that were skipped
//   - error: error if the file cannot be read or parsed
func LoadFile(path string) (*Scene, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read scene file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse converts SVG bytes into a Scene. Supported elements: rect, line,
// polyline, polygon, and path with absolute M/L/Z commands. Everything else
// is skipped and reported by name.
func Parse(data []byte) (*Scene, []string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	s := &Scene{}
	var unsupported []string
	seen := make(map[string]bool)
	haveViewBox := false

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "svg":
			if vb, ok := attr(start, "viewBox"); ok {
				if box, err := parseViewBox(vb); err == nil {
					s.ViewBox = box
					haveViewBox = true
				}
			}
		case "g", "title", "desc", "defs":
			// Structural elements carry no geometry of their own.
		case "rect":
			x := attrFloat(start, "x")
			y := attrFloat(start, "y")
			w := attrFloat(start, "width")
			h := attrFloat(start, "height")
			s.Objects = append(s.Objects, PathObject{
				Name:   attrOr(start, "id", "rect"),
				Color:  attrColor(start),
				Closed: true,
				Points: []common.Vec2{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}},
			})
		case "line":
			s.Objects = append(s.Objects, PathObject{
				Name:  attrOr(start, "id", "line"),
				Color: attrColor(start),
				Points: []common.Vec2{
					{X: attrFloat(start, "x1"), Y: attrFloat(start, "y1")},
					{X: attrFloat(start, "x2"), Y: attrFloat(start, "y2")},
				},
			})
		case "polyline", "polygon":
			points, err := parsePoints(attrOrEmpty(start, "points"))
			if err != nil || len(points) == 0 {
				continue
			}
			s.Objects = append(s.Objects, PathObject{
				Name:   attrOr(start, "id", start.Name.Local),
				Color:  attrColor(start),
				Closed: start.Name.Local == "polygon",
				Points: points,
			})
		case "path":
			points, closed, err := parsePathData(attrOrEmpty(start, "d"))
			if err != nil {
				if !seen["path commands"] {
					seen["path commands"] = true
					unsupported = append(unsupported, "path commands")
				}
				continue
			}
			if len(points) == 0 {
				continue
			}
			s.Objects = append(s.Objects, PathObject{
				Name:   attrOr(start, "id", "path"),
				Color:  attrColor(start),
				Closed: closed,
				Points: points,
			})
		default:
			if !seen[start.Name.Local] {
				seen[start.Name.Local] = true
				unsupported = append(unsupported, start.Name.Local)
			}
		}
	}

	s.Bounds = boundsOf(s.Objects)
	if !haveViewBox {
		s.ViewBox = s.Bounds
	}

	return s, unsupported, nil
}

// DefaultScene returns the procedural scene rendered when no input path is
// given: a frame, a diagonal ribbon, and a diamond.
func DefaultScene() *Scene {
	s := &Scene{
		Objects: []PathObject{
			{
				Name:   "frame",
				Color:  Color{R: 32, G: 32, B: 32, A: 255},
				Closed: true,
				Points: []common.Vec2{{X: 16, Y: 16}, {X: 624, Y: 16}, {X: 624, Y: 464}, {X: 16, Y: 464}},
			},
			{
				Name:   "ribbon",
				Color:  Color{R: 220, G: 80, B: 60, A: 255},
				Closed: true,
				Points: []common.Vec2{{X: 48, Y: 416}, {X: 256, Y: 96}, {X: 320, Y: 96}, {X: 112, Y: 416}},
			},
			{
				Name:   "diamond",
				Color:  Color{R: 60, G: 120, B: 220, A: 255},
				Closed: true,
				Points: []common.Vec2{{X: 448, Y: 128}, {X: 544, Y: 240}, {X: 448, Y: 352}, {X: 352, Y: 240}},
			},
		},
		ViewBox: common.NewRectF(0, 0, 640, 480),
	}
	s.Bounds = boundsOf(s.Objects)
	return s
}

func boundsOf(objects []PathObject) common.RectF {
	var bounds common.RectF
	first := true
	for _, obj := range objects {
		for _, p := range obj.Points {
			if first {
				bounds = common.RectF{Origin: p}
				first = false
				continue
			}
			bounds = bounds.Union(common.RectF{Origin: p})
		}
	}
	return bounds
}

func attr(e xml.StartElement, name string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func attrOr(e xml.StartElement, name, fallback string) string {
	if v, ok := attr(e, name); ok && v != "" {
		return v
	}
	return fallback
}

func attrOrEmpty(e xml.StartElement, name string) string {
	v, _ := attr(e, name)
	return v
}

func attrFloat(e xml.StartElement, name string) float32 {
	v, _ := attr(e, name)
	f, _ := strconv.ParseFloat(strings.TrimSpace(v), 32)
	return float32(f)
}

// attrColor parses a fill attribute of the form #rgb or #rrggbb. Anything
// else falls back to opaque black.
func attrColor(e xml.StartElement) Color {
	v, ok := attr(e, "fill")
	if !ok || !strings.HasPrefix(v, "#") {
		return Color{A: 255}
	}
	hex := v[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{A: 255}
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{A: 255}
	}
	return Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}
}

func parseViewBox(v string) (common.RectF, error) {
	fields := strings.Fields(strings.ReplaceAll(v, ",", " "))
	if len(fields) != 4 {
		return common.RectF{}, fmt.Errorf("malformed viewBox %q", v)
	}
	var nums [4]float32
	for i, f := range fields {
		parsed, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return common.RectF{}, fmt.Errorf("malformed viewBox %q: %w", v, err)
		}
		nums[i] = float32(parsed)
	}
	return common.NewRectF(nums[0], nums[1], nums[2], nums[3]), nil
}

func parsePoints(v string) ([]common.Vec2, error) {
	fields := strings.Fields(strings.ReplaceAll(v, ",", " "))
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("odd coordinate count in points %q", v)
	}
	points := make([]common.Vec2, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		y, err := strconv.ParseFloat(fields[i+1], 32)
		if err != nil {
			return nil, err
		}
		points = append(points, common.Vec2{X: float32(x), Y: float32(y)})
	}
	return points, nil
}

// parsePathData handles the absolute moveto/lineto subset of SVG path data:
// a single M followed by L segments (or bare coordinate pairs), optionally
// closed with Z. Any other command is unsupported.
func parsePathData(d string) ([]common.Vec2, bool, error) {
	var normalized strings.Builder
	for _, r := range d {
		switch {
		case r == ',':
			normalized.WriteRune(' ')
		case r == 'M' || r == 'L' || r == 'Z' || r == 'z':
			normalized.WriteRune(' ')
			normalized.WriteRune(r)
			normalized.WriteRune(' ')
		case (r >= 'a' && r <= 'y') || (r >= 'A' && r <= 'Y'):
			return nil, false, fmt.Errorf("unsupported path command %q", r)
		default:
			normalized.WriteRune(r)
		}
	}

	fields := strings.Fields(normalized.String())
	var points []common.Vec2
	closed := false
	i := 0
	for i < len(fields) {
		switch fields[i] {
		case "M", "L":
			i++
		case "Z", "z":
			closed = true
			i++
		default:
			if i+1 >= len(fields) {
				return nil, false, fmt.Errorf("dangling coordinate in path data %q", d)
			}
			x, err := strconv.ParseFloat(fields[i], 32)
			if err != nil {
				return nil, false, err
			}
			y, err := strconv.ParseFloat(fields[i+1], 32)
			if err != nil {
				return nil, false, err
			}
			points = append(points, common.Vec2{X: float32(x), Y: float32(y)})
			i += 2
		}
	}
	return points, closed, nil
}
