package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/user/posestream/pkg/ports"
)

// Point is a parsed "WxH" resolution. A component of -1 means "derive
// from the other component and the input aspect ratio".
type Point struct {
	X int
	Y int
}

// String returns the "WxH" form.
func (p Point) String() string {
	return fmt.Sprintf("%dx%d", p.X, p.Y)
}

// ParsePoint parses a "WxH" string such as "-1x368".
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(strings.TrimSpace(strings.ToLower(s)), "x")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("resolution %q is not in WxH form", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Point{}, fmt.Errorf("resolution %q: width: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Point{}, fmt.Errorf("resolution %q: height: %w", s, err)
	}
	return Point{X: x, Y: y}, nil
}

// Resolve fills -1 components from the given input size keeping its
// aspect ratio. When align > 1 derived components are rounded to a
// multiple of align. "-1x-1" resolves to the input size.
func (p Point) Resolve(width, height, align int) (int, int) {
	if align < 1 {
		align = 1
	}
	w, h := p.X, p.Y
	switch {
	case w <= 0 && h <= 0:
		return width, height
	case w <= 0 && height > 0:
		w = roundTo(float64(h)*float64(width)/float64(height), align)
	case h <= 0 && width > 0:
		h = roundTo(float64(w)*float64(height)/float64(width), align)
	}
	return w, h
}

func roundTo(v float64, align int) int {
	n := int(math.Round(v/float64(align))) * align
	if n < align {
		n = align
	}
	return n
}

// SourceKind selects the FrameSource implementation.
type SourceKind string

const (
	SourcePattern   SourceKind = "pattern"
	SourceDirectory SourceKind = "dir"
)

// PoseModel selects the body keypoint layout.
type PoseModel string

const (
	ModelBody25     PoseModel = "BODY_25"
	ModelCOCO       PoseModel = "COCO"
	ModelMPI        PoseModel = "MPI"
	ModelMPI4Layers PoseModel = "MPI_4_layers"
)

// ParsePoseModel parses a model name.
func ParsePoseModel(s string) (PoseModel, error) {
	switch PoseModel(s) {
	case ModelBody25, ModelCOCO, ModelMPI, ModelMPI4Layers:
		return PoseModel(s), nil
	default:
		return "", fmt.Errorf("unknown pose model %q", s)
	}
}

// RenderMode selects how keypoints are rendered.
type RenderMode int

const (
	RenderAuto RenderMode = -1
	RenderNone RenderMode = 0
	RenderCPU  RenderMode = 1
	RenderGPU  RenderMode = 2
)

// String returns the string representation of the render mode.
func (m RenderMode) String() string {
	switch m {
	case RenderAuto:
		return "auto"
	case RenderNone:
		return "none"
	case RenderCPU:
		return "cpu"
	case RenderGPU:
		return "gpu"
	default:
		return strconv.Itoa(int(m))
	}
}

// ToRenderMode converts a render flag. -1 inherits parent, or CPU when
// parent is itself auto since no GPU renderer is available.
func ToRenderMode(flag int, parent RenderMode) (RenderMode, error) {
	switch RenderMode(flag) {
	case RenderAuto:
		if parent == RenderAuto {
			return RenderCPU, nil
		}
		return parent, nil
	case RenderNone, RenderCPU, RenderGPU:
		return RenderMode(flag), nil
	default:
		return RenderNone, fmt.Errorf("render mode %d not in {-1,0,1,2}", flag)
	}
}

// Detector selects how face or hand regions are located.
type Detector int

const (
	DetectorBody             Detector = 0
	DetectorOpenCV           Detector = 1
	DetectorProvided         Detector = 2
	DetectorBodyWithTracking Detector = 3
)

// String returns the string representation of the detector.
func (d Detector) String() string {
	switch d {
	case DetectorBody:
		return "body"
	case DetectorOpenCV:
		return "opencv"
	case DetectorProvided:
		return "provided"
	case DetectorBodyWithTracking:
		return "body_with_tracking"
	default:
		return strconv.Itoa(int(d))
	}
}

// UsesBody reports whether the detector derives regions from body keypoints.
func (d Detector) UsesBody() bool {
	return d == DetectorBody || d == DetectorBodyWithTracking
}

// DisplayMode selects what the display stage shows.
type DisplayMode int

const (
	DisplayAuto DisplayMode = -1
	DisplayNone DisplayMode = 0
	DisplayAll  DisplayMode = 1
	Display2D   DisplayMode = 2
	Display3D   DisplayMode = 3
)

// String returns the string representation of the display mode.
func (m DisplayMode) String() string {
	switch m {
	case DisplayAuto:
		return "auto"
	case DisplayNone:
		return "none"
	case DisplayAll:
		return "all"
	case Display2D:
		return "2d"
	case Display3D:
		return "3d"
	default:
		return strconv.Itoa(int(m))
	}
}

// ToDisplayMode converts a display flag; auto becomes All when 3D
// reconstruction is on, 2D otherwise.
func ToDisplayMode(flag int, enable3D bool) (DisplayMode, error) {
	switch DisplayMode(flag) {
	case DisplayAuto:
		if enable3D {
			return DisplayAll, nil
		}
		return Display2D, nil
	case DisplayNone, DisplayAll, Display2D, Display3D:
		return DisplayMode(flag), nil
	default:
		return DisplayNone, fmt.Errorf("display mode %d not in {-1,0,1,2,3}", flag)
	}
}

// ScaleMode selects the coordinate space written keypoints are expressed in.
type ScaleMode int

const (
	ScaleInputResolution  ScaleMode = 0
	ScaleNetOutput        ScaleMode = 1
	ScaleOutputResolution ScaleMode = 2
	ScaleZeroToOne        ScaleMode = 3
	ScalePlusMinusOne     ScaleMode = 4
)

// HeatmapScaleMode selects how heatmap values are mapped to pixels.
type HeatmapScaleMode int

const (
	HeatmapPlusMinusOne HeatmapScaleMode = 0
	HeatmapZeroToOne    HeatmapScaleMode = 1
	HeatmapUnsignedChar HeatmapScaleMode = 2
	HeatmapNoScale      HeatmapScaleMode = 3
)

// HeatmapTypes is the set of heatmap channels requested from the estimator.
type HeatmapTypes struct {
	Parts      bool
	Background bool
	PAFs       bool
}

// Any reports whether at least one channel is requested.
func (h HeatmapTypes) Any() bool {
	return h.Parts || h.Background || h.PAFs
}

// Kinds returns the requested channels in canonical order.
func (h HeatmapTypes) Kinds() []ports.HeatmapKind {
	var kinds []ports.HeatmapKind
	if h.Parts {
		kinds = append(kinds, ports.HeatmapParts)
	}
	if h.Background {
		kinds = append(kinds, ports.HeatmapBackground)
	}
	if h.PAFs {
		kinds = append(kinds, ports.HeatmapPAFs)
	}
	return kinds
}

// DataFormat is the serialisation of legacy keypoint files.
type DataFormat string

const (
	DataJSON DataFormat = "json"
	DataYML  DataFormat = "yml"
	DataYAML DataFormat = "yaml"
)

// ParseDataFormat parses a keypoint file format.
func ParseDataFormat(s string) (DataFormat, error) {
	switch DataFormat(strings.ToLower(s)) {
	case DataJSON:
		return DataJSON, nil
	case DataYML:
		return DataYML, nil
	case DataYAML:
		return DataYAML, nil
	default:
		return "", fmt.Errorf("keypoint format %q not in {json,yml,yaml}", s)
	}
}

// ParseImageFormat parses an image file format.
func ParseImageFormat(s string) (ports.ImageFormat, error) {
	switch strings.ToLower(s) {
	case "png":
		return ports.FormatPNG, nil
	case "jpg", "jpeg":
		return ports.FormatJPEG, nil
	default:
		return ports.FormatPNG, fmt.Errorf("image format %q not in {png,jpg}", s)
	}
}
