package models

// Series is the draw-ready line for one plant. The chart plots Data with the
// normalized Log_Time on the x-axis and Greeness on the y-axis.
type Series struct {
	PlantID PlantID             `json:"plant_id"`
	Label   string              `json:"label"`
	Data    []NormalizedReading `json:"data"`
	Color   string              `json:"color"`
}

// SeriesLabel returns the legend label for a plant
func SeriesLabel(id PlantID) string {
	return "Plant " + string(id)
}
