package handler

import (
	"context"

	"penta-xml-feed/internal/render"
	"penta-xml-feed/internal/service"
)

// FeedService is the refresh pipeline as seen by the HTTP layer.
type FeedService interface {
	CurrentDocument() render.Document
	Status() service.Status
	Ready() bool
	Refresh(ctx context.Context) service.Outcome
}
