package http

import (
	"time"

	"github.com/vadimbarashkov/shortlink/internal/entity"
)

// createRequest represents the body of a request to shorten a URL.
type createRequest struct {
	URL      string  `json:"url"`
	CustomID *string `json:"custom_id"`
}

// createResponse represents the body returned for a newly shortened URL.
type createResponse struct {
	ShortURL    string    `json:"short_url"`
	OriginalURL string    `json:"original_url"`
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCreateResponse(rec *entity.URLRecord, baseURL string) createResponse {
	return createResponse{
		ShortURL:    rec.ShortURL(baseURL),
		OriginalURL: rec.OriginalURL,
		ID:          rec.ShortID,
		CreatedAt:   rec.CreatedAt,
	}
}

// statsResponse represents the access statistics of a short URL.
type statsResponse struct {
	ID           string     `json:"id"`
	OriginalURL  string     `json:"original_url"`
	ShortURL     string     `json:"short_url"`
	ClickCount   int64      `json:"click_count"`
	CreatedAt    time.Time  `json:"created_at"`
	LastAccessed *time.Time `json:"last_accessed"`
}

func toStatsResponse(rec *entity.URLRecord, baseURL string) statsResponse {
	return statsResponse{
		ID:           rec.ShortID,
		OriginalURL:  rec.OriginalURL,
		ShortURL:     rec.ShortURL(baseURL),
		ClickCount:   rec.ClickCount,
		CreatedAt:    rec.CreatedAt,
		LastAccessed: rec.LastAccessed,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
}

// errorDetail describes an individual rejected field.
type errorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorResponse represents a structured error response.
type errorResponse struct {
	Error   string        `json:"error"`
	Details []errorDetail `json:"details,omitempty"`
}

func validationErrorResponse(err *entity.ValidationError) errorResponse {
	return errorResponse{
		Error: err.Message,
		Details: []errorDetail{
			{Field: err.Field, Message: err.Message},
		},
	}
}

// Predefined error responses for common scenarios.
var (
	emptyRequestBodyResponse   = errorResponse{Error: "empty request body"}
	invalidRequestBodyResponse = errorResponse{Error: "invalid request body"}
	shortIDExistsResponse      = errorResponse{Error: "Custom ID already exists"}
	urlNotFoundResponse        = errorResponse{Error: "Short URL not found"}
	createFailedResponse       = errorResponse{Error: "Failed to create short URL"}
	serverErrorResponse        = errorResponse{Error: "Internal server error"}
)
