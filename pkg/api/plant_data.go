package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cropwatch/plantmonitor/pkg/models"
)

// GetPlantData retrieves the full current reading set. The source never sends
// deltas, so every call returns everything it has.
func (c *Client) GetPlantData(ctx context.Context) ([]models.Reading, error) {
	resp, err := c.doRequest(ctx, PlantDataPath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var readings []models.Reading
	if err := json.NewDecoder(resp.Body).Decode(&readings); err != nil {
		return nil, &MalformedDataError{
			Index: -1,
			Err:   fmt.Errorf("failed to decode response: %w", err),
		}
	}

	if readings == nil {
		readings = []models.Reading{}
	}

	return readings, nil
}

// Pull satisfies puller.Source
func (c *Client) Pull(ctx context.Context) ([]models.Reading, error) {
	return c.GetPlantData(ctx)
}
