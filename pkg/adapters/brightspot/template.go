package brightspot

// figure is a stick figure in head-radius units relative to the head
// centre, in BODY_25 part order. Index 25 is the chest, which only MPI
// uses.
var figure = [26][2]float64{
	{0, 0}, {0, 2},
	{-1.5, 2}, {-2, 4}, {-2.2, 6},
	{1.5, 2}, {2, 4}, {2.2, 6},
	{0, 7},
	{-0.8, 7}, {-0.9, 10}, {-1, 13},
	{0.8, 7}, {0.9, 10}, {1, 13},
	{-0.35, -0.3}, {0.35, -0.3},
	{-0.8, 0}, {0.8, 0},
	{1.3, 13.6}, {1.5, 13.5}, {0.9, 13.4},
	{-1.3, 13.6}, {-1.5, 13.5}, {-0.9, 13.4},
	{0, 4.5},
}

// layouts maps each model's part order onto figure indices.
var layouts = map[string][]int{
	"BODY_25":      {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24},
	"COCO":         {0, 1, 2, 3, 4, 5, 6, 7, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18},
	"MPI":          {0, 1, 2, 3, 4, 5, 6, 7, 9, 10, 11, 12, 13, 14, 25},
	"MPI_4_layers": {0, 1, 2, 3, 4, 5, 6, 7, 9, 10, 11, 12, 13, 14, 25},
}

func layout(model string) []int {
	if l, ok := layouts[model]; ok {
		return l
	}
	return layouts["BODY_25"]
}
