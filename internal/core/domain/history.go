package domain

// RiverSeries is a static historical display series. These values are
// published figures and are never derived from stored votes.
type RiverSeries struct {
	Label  string `json:"label"`
	Values []int  `json:"values"`
}

var HistoryYears = []string{"2016", "2017", "2018", "2019", "2020", "2021", "2022", "2023", "2024"}

var RiverHistory = []RiverSeries{
	{Label: "Tigris (%)", Values: []int{100, 95, 88, 82, 75, 68, 58, 48, 35}},
	{Label: "Euphrates (%)", Values: []int{100, 92, 85, 78, 68, 55, 45, 35, 30}},
}
