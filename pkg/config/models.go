package config

// Keypoint counts of the face and hand models.
const (
	FaceParts = 70
	HandParts = 21
)

// partNone marks a body part the model does not have.
const partNone = -1

// BodyParts holds the indices of the parts used to locate faces and hands.
type BodyParts struct {
	Nose, Neck                int
	REye, LEye, REar, LEar    int
	RShoulder, RElbow, RWrist int
	LShoulder, LElbow, LWrist int
}

var (
	body25Parts = BodyParts{
		Nose: 0, Neck: 1,
		REye: 15, LEye: 16, REar: 17, LEar: 18,
		RShoulder: 2, RElbow: 3, RWrist: 4,
		LShoulder: 5, LElbow: 6, LWrist: 7,
	}
	cocoParts = BodyParts{
		Nose: 0, Neck: 1,
		REye: 14, LEye: 15, REar: 16, LEar: 17,
		RShoulder: 2, RElbow: 3, RWrist: 4,
		LShoulder: 5, LElbow: 6, LWrist: 7,
	}
	mpiParts = BodyParts{
		Nose: 0, Neck: 1,
		REye: partNone, LEye: partNone, REar: partNone, LEar: partNone,
		RShoulder: 2, RElbow: 3, RWrist: 4,
		LShoulder: 5, LElbow: 6, LWrist: 7,
	}

	body25Pairs = [][2]int{
		{1, 8}, {1, 2}, {1, 5}, {2, 3}, {3, 4}, {5, 6}, {6, 7}, {8, 9}, {9, 10}, {10, 11},
		{8, 12}, {12, 13}, {13, 14}, {1, 0}, {0, 15}, {15, 17}, {0, 16}, {16, 18},
		{14, 19}, {19, 20}, {14, 21}, {11, 22}, {22, 23}, {11, 24},
	}
	cocoPairs = [][2]int{
		{1, 2}, {1, 5}, {2, 3}, {3, 4}, {5, 6}, {6, 7}, {1, 8}, {8, 9}, {9, 10},
		{1, 11}, {11, 12}, {12, 13}, {1, 0}, {0, 14}, {14, 16}, {0, 15}, {15, 17},
	}
	mpiPairs = [][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 4}, {1, 5}, {5, 6}, {6, 7}, {1, 14},
		{14, 8}, {8, 9}, {9, 10}, {14, 11}, {11, 12}, {12, 13},
	}
)

// NumParts returns the number of body keypoints of the model.
func (m PoseModel) NumParts() int {
	switch m {
	case ModelCOCO:
		return 18
	case ModelMPI, ModelMPI4Layers:
		return 15
	default:
		return 25
	}
}

// Parts returns the indices of landmark parts.
func (m PoseModel) Parts() BodyParts {
	switch m {
	case ModelCOCO:
		return cocoParts
	case ModelMPI, ModelMPI4Layers:
		return mpiParts
	default:
		return body25Parts
	}
}

// Pairs returns the skeleton limbs as part index pairs. The returned
// slice is a copy.
func (m PoseModel) Pairs() [][2]int {
	var src [][2]int
	switch m {
	case ModelCOCO:
		src = cocoPairs
	case ModelMPI, ModelMPI4Layers:
		src = mpiPairs
	default:
		src = body25Pairs
	}
	return append([][2]int(nil), src...)
}

// HasPart reports whether idx is a real part index.
func HasPart(idx int) bool {
	return idx != partNone
}

// FacePairs returns the contour segments of the face model: jaw, brows,
// nose, eyes and lips.
func FacePairs() [][2]int {
	var pairs [][2]int
	pairs = chain(pairs, 0, 16, false)
	pairs = chain(pairs, 17, 21, false)
	pairs = chain(pairs, 22, 26, false)
	pairs = chain(pairs, 27, 30, false)
	pairs = chain(pairs, 31, 35, false)
	pairs = chain(pairs, 36, 41, true)
	pairs = chain(pairs, 42, 47, true)
	pairs = chain(pairs, 48, 59, true)
	pairs = chain(pairs, 60, 67, true)
	return pairs
}

// HandPairs returns the finger segments of the hand model, each finger
// starting at the wrist.
func HandPairs() [][2]int {
	var pairs [][2]int
	for finger := 0; finger < 5; finger++ {
		base := 1 + finger*4
		pairs = append(pairs, [2]int{0, base})
		pairs = chain(pairs, base, base+3, false)
	}
	return pairs
}

func chain(pairs [][2]int, from, to int, closed bool) [][2]int {
	for i := from; i < to; i++ {
		pairs = append(pairs, [2]int{i, i + 1})
	}
	if closed {
		pairs = append(pairs, [2]int{to, from})
	}
	return pairs
}
