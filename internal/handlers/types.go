package handlers

import (
	"context"

	"batch-release/internal/models"
	"batch-release/internal/region"
)

type CreateViewerRequest struct {
	BatchNumber string `json:"batchNumber"`
}

type ExceptionRequest struct {
	Exception *bool `json:"exception"`
}

// PrintRequest carries the browser's single geolocation attempt. Error holds
// the GeolocationPositionError name or code when the browser gave up.
type PrintRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  float64  `json:"accuracy"`
	Region    string   `json:"region"`
	Error     string   `json:"error"`
}

// Locator replays the browser's answer as a one-shot location fix.
func (p PrintRequest) Locator() region.Locator {
	return region.LocatorFunc(func(ctx context.Context) (region.Position, error) {
		if err := region.ErrorFromCode(p.Error); err != nil {
			return region.Position{}, err
		}

		pos := region.Position{Region: p.Region, Accuracy: p.Accuracy}
		if p.Latitude != nil && p.Longitude != nil {
			pos.Lat = *p.Latitude
			pos.Lon = *p.Longitude
			pos.HasFix = true
		}
		return pos, nil
	})
}

type ViewerResponse struct {
	ID          string                    `json:"id"`
	BatchNumber string                    `json:"batchNumber"`
	State       models.ReleaseState       `json:"state"`
	Exception   bool                      `json:"exception"`
	Signature   *models.SignatureMetadata `json:"signature"`
	DocumentURL string                    `json:"documentUrl"`
	CanPrint    bool                      `json:"canPrint"`
}

type PrintResponse struct {
	Printed   bool           `json:"printed"`
	Notice    string         `json:"notice,omitempty"`
	PrintURL  string         `json:"printUrl,omitempty"`
	ExpiresIn int            `json:"expiresIn,omitempty"`
	Region    *region.Result `json:"region,omitempty"`
}

type TemplateUploadResponse struct {
	Status string  `json:"status"`
	Size   int     `json:"size"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
