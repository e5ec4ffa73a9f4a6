package service

// Weighted reward tables. Each draw consumes one uniform sample in [0,100)
// and walks a cumulative-probability table; lower point values carry more
// probability mass. The sample is an explicit argument so callers inject
// their own randomness and tests stay deterministic.

type rewardBracket struct {
	upTo   float64 // cumulative upper bound, exclusive
	points int64
}

var checkinBrackets = []rewardBracket{
	{30, 1},
	{50, 2},
	{65, 3},
	{77, 4},
	{87, 5},
	{93, 6},
	{97, 7},
	{99, 8},
	{99.5, 9},
	{100, 10},
}

var messageBrackets = []rewardBracket{
	{80, 1},
	{90, 2},
	{95, 3},
	{98, 4},
	{100, 5},
}

func drawFromTable(sample float64, brackets []rewardBracket) int64 {
	for _, b := range brackets {
		if sample < b.upTo {
			return b.points
		}
	}
	// Sample at or above 100 only happens on caller misuse; award the top
	// bracket rather than failing.
	return brackets[len(brackets)-1].points
}

// DrawCheckinPoints maps a uniform sample in [0,100) to a daily check-in
// reward of 1-10 points.
func DrawCheckinPoints(sample float64) int64 {
	return drawFromTable(sample, checkinBrackets)
}

// DrawMessagePoints maps a uniform sample in [0,100) to a message-activity
// reward of 1-5 points.
func DrawMessagePoints(sample float64) int64 {
	return drawFromTable(sample, messageBrackets)
}
