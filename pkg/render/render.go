// Package render turns grouped readings into draw-ready chart series.
package render

import (
	"github.com/cropwatch/plantmonitor/pkg/aggregator"
	"github.com/cropwatch/plantmonitor/pkg/models"
)

// Render produces one series per plant in key order. It touches nothing but
// the colorer.
func Render(groups *aggregator.Groups, colors Colorer) []models.Series {
	keys := groups.Keys()
	series := make([]models.Series, 0, len(keys))

	for _, id := range keys {
		data, _ := groups.Get(id)
		series = append(series, models.Series{
			PlantID: id,
			Label:   models.SeriesLabel(id),
			Data:    data,
			Color:   colors.ColorFor(id),
		})
	}

	return series
}
