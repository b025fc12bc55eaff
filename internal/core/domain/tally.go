package domain

import "math"

type Tally struct {
	Yes int64 `json:"yes"`
	No  int64 `json:"no"`
}

func (t Tally) Total() int64 {
	return t.Yes + t.No
}

// Increment returns a copy of t with one more vote for c.
func (t Tally) Increment(c Choice) Tally {
	switch c {
	case ChoiceYes:
		t.Yes++
	case ChoiceNo:
		t.No++
	}
	return t
}

// YesPercent is the share of yes votes rounded to a whole percent.
func (t Tally) YesPercent() int {
	return percent(t.Yes, t.Total())
}

func (t Tally) NoPercent() int {
	return percent(t.No, t.Total())
}

func percent(n, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(n)*100/float64(total) + 0.5))
}
