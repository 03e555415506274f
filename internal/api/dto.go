package api

import (
	"github.com/starford/lexicon/internal/models"
	"github.com/starford/lexicon/internal/termservice"
)

// CreateTermRequest is the request body for creating a term.
type CreateTermRequest struct {
	Name        string `json:"name" example:"apple" validate:"required"`
	Description string `json:"description" example:"a red fruit"`
	Parent      string `json:"parent,omitempty" example:"fruit"`
}

// CreateTermResponse is returned after a successful creation.
type CreateTermResponse = termservice.AddResult

// TermInfo is the response for a single term lookup.
type TermInfo = models.TermInfo

// TreeResponse wraps the whole vocabulary.
type TreeResponse struct {
	Terms []*models.TermNode `json:"terms" validate:"required"`
}

// HistoryResponse wraps recent additions.
type HistoryResponse struct {
	Additions []models.Addition `json:"additions" validate:"required"`
}
