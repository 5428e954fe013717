package pipeline

import (
	"image"
	"image/draw"
	"time"

	"github.com/google/uuid"

	"github.com/user/posestream/pkg/ports"
)

// =============================================================================
// Work Item
// =============================================================================

// WorkItem is one frame's unit of work flowing through the pipeline.
//
// It is created by the producer, mutated in place by each stage in order,
// and consumed by the last output or display stage. Only one stage touches
// an item at a time, so no locking is needed.
type WorkItem struct {
	// ID is a unique trace identifier.
	ID string

	// FrameNumber is the hardware frame number of the source frame.
	// Stages never change it.
	FrameNumber uint64
	Timestamp   time.Time

	// Input is the item's own copy of the captured frame.
	Input *image.RGBA

	// Output starts equal to Input and receives the rendering.
	Output *image.RGBA

	Annotations Annotations
}

// NewWorkItem wraps img into a new WorkItem. Output is seeded with a copy
// of img so rendering never touches Input.
func NewWorkItem(frameNumber uint64, ts time.Time, img *image.RGBA) *WorkItem {
	return &WorkItem{
		ID:          uuid.NewString(),
		FrameNumber: frameNumber,
		Timestamp:   ts,
		Input:       img,
		Output:      CloneRGBA(img),
	}
}

// Annotations holds everything the estimation stages attach to a frame.
type Annotations struct {
	Pose []ports.Person

	// PoseIDs holds one identity per Pose entry when identification or
	// tracking is enabled, otherwise nil.
	PoseIDs []int64

	FaceRects []image.Rectangle
	Face      []ports.Person

	// HandRects and Hands are indexed [person][side], side 0 left, 1 right.
	HandRects [][2]image.Rectangle
	Hands     [][2]ports.Person

	Heatmaps []ports.Heatmap
}

// PeopleCount returns the number of detected people.
func (a Annotations) PeopleCount() int {
	return len(a.Pose)
}

// CloneRGBA returns a deep copy of img with its bounds moved to the origin.
func CloneRGBA(img *image.RGBA) *image.RGBA {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// ToRGBA converts any image into an *image.RGBA with origin bounds.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// =============================================================================
// Frame Records
// =============================================================================

// KeypointRecord is the serialised form of a frame's keypoints, shared by
// the JSON, YAML and UDP writers.
type KeypointRecord struct {
	Version     string         `json:"version" yaml:"version"`
	FrameNumber uint64         `json:"frame_number" yaml:"frame_number"`
	ID          string         `json:"id" yaml:"id"`
	People      []PersonRecord `json:"people" yaml:"people"`
}

// PersonRecord holds the flattened keypoints of one person, laid out as
// x0,y0,c0,x1,y1,c1,...
type PersonRecord struct {
	PersonID             int64     `json:"person_id" yaml:"person_id"`
	PoseKeypoints2D      []float64 `json:"pose_keypoints_2d" yaml:"pose_keypoints_2d"`
	FaceKeypoints2D      []float64 `json:"face_keypoints_2d" yaml:"face_keypoints_2d"`
	HandLeftKeypoints2D  []float64 `json:"hand_left_keypoints_2d" yaml:"hand_left_keypoints_2d"`
	HandRightKeypoints2D []float64 `json:"hand_right_keypoints_2d" yaml:"hand_right_keypoints_2d"`
}

// RecordVersion is the keypoint record format version.
const RecordVersion = "1.3"

// NewKeypointRecord flattens the item's annotations. A frame without body
// keypoints still gets one person per face or hand region.
func NewKeypointRecord(item *WorkItem) KeypointRecord {
	a := item.Annotations
	n := max(len(a.Pose), len(a.Face), len(a.Hands))
	rec := KeypointRecord{
		Version:     RecordVersion,
		FrameNumber: item.FrameNumber,
		ID:          item.ID,
		People:      make([]PersonRecord, 0, n),
	}
	for i := 0; i < n; i++ {
		pr := PersonRecord{PersonID: -1}
		if i < len(a.Pose) {
			pr.PoseKeypoints2D = flatten(a.Pose[i].Keypoints)
		}
		if i < len(a.PoseIDs) {
			pr.PersonID = a.PoseIDs[i]
		}
		if i < len(a.Face) {
			pr.FaceKeypoints2D = flatten(a.Face[i].Keypoints)
		}
		if i < len(a.Hands) {
			pr.HandLeftKeypoints2D = flatten(a.Hands[i][0].Keypoints)
			pr.HandRightKeypoints2D = flatten(a.Hands[i][1].Keypoints)
		}
		rec.People = append(rec.People, pr)
	}
	return rec
}

// MapKeypoints returns a copy of rec with every detected keypoint passed
// through fn. Undetected keypoints (score 0) are left untouched.
func (rec KeypointRecord) MapKeypoints(fn func(x, y float64) (float64, float64)) KeypointRecord {
	out := rec
	out.People = make([]PersonRecord, len(rec.People))
	for i, p := range rec.People {
		out.People[i] = PersonRecord{
			PersonID:             p.PersonID,
			PoseKeypoints2D:      mapFlat(p.PoseKeypoints2D, fn),
			FaceKeypoints2D:      mapFlat(p.FaceKeypoints2D, fn),
			HandLeftKeypoints2D:  mapFlat(p.HandLeftKeypoints2D, fn),
			HandRightKeypoints2D: mapFlat(p.HandRightKeypoints2D, fn),
		}
	}
	return out
}

func mapFlat(flat []float64, fn func(x, y float64) (float64, float64)) []float64 {
	if flat == nil {
		return nil
	}
	out := make([]float64, len(flat))
	copy(out, flat)
	for i := 0; i+2 < len(out); i += 3 {
		if out[i+2] > 0 {
			out[i], out[i+1] = fn(out[i], out[i+1])
		}
	}
	return out
}

func flatten(kps []ports.Keypoint) []float64 {
	out := make([]float64, 0, len(kps)*3)
	for _, kp := range kps {
		out = append(out, kp.X, kp.Y, kp.Score)
	}
	return out
}
