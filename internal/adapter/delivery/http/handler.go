package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const serviceName = "url-shortener"

type urlUseCase interface {
	ShortenURL(ctx context.Context, originalURL string, customID *string) (*entity.URLRecord, error)
	ResolveShortID(ctx context.Context, shortID string) (*entity.URLRecord, error)
	GetURLStats(ctx context.Context, shortID string) (*entity.URLRecord, error)
}

type urlHandler struct {
	useCase urlUseCase
	baseURL string
}

func newURLHandler(useCase urlUseCase, baseURL string) *urlHandler {
	return &urlHandler{
		useCase: useCase,
		baseURL: baseURL,
	}
}

func handleHealth(database string) http.HandlerFunc {
	resp := healthResponse{
		Status:   "healthy",
		Service:  serviceName,
		Database: database,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusOK)
		render.JSON(w, r, resp)
	}
}

func (h *urlHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	var req createRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	rec, err := h.useCase.ShortenURL(r.Context(), req.URL, req.CustomID)
	if err != nil {
		renderError(w, r, err, createFailedResponse)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toCreateResponse(rec, h.baseURL))
}

// shortIDParam returns the decoded id path parameter. chi matches against
// the raw path when the request escapes reserved characters such as %2F, and
// the parameter is then still escaped.
func shortIDParam(r *http.Request) (string, error) {
	shortID := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return shortID, nil
	}

	return url.PathUnescape(shortID)
}

func (h *urlHandler) redirect(w http.ResponseWriter, r *http.Request) {
	shortID, err := shortIDParam(r)
	if err != nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, urlNotFoundResponse)
		return
	}

	rec, err := h.useCase.ResolveShortID(r.Context(), shortID)
	if err != nil {
		renderError(w, r, err, serverErrorResponse)
		return
	}

	http.Redirect(w, r, rec.OriginalURL, http.StatusPermanentRedirect)
}

func (h *urlHandler) getURLStats(w http.ResponseWriter, r *http.Request) {
	shortID, err := shortIDParam(r)
	if err != nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, urlNotFoundResponse)
		return
	}

	rec, err := h.useCase.GetURLStats(r.Context(), shortID)
	if err != nil {
		renderError(w, r, err, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toStatsResponse(rec, h.baseURL))
}

// renderError maps a use case error to its response. Unknown errors are
// logged with the request and answered with serverErr.
func renderError(w http.ResponseWriter, r *http.Request, err error, serverErr errorResponse) {
	var validationErr *entity.ValidationError

	switch {
	case errors.As(err, &validationErr):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(validationErr))
	case errors.Is(err, entity.ErrShortIDExists):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, shortIDExistsResponse)
	case errors.Is(err, entity.ErrURLNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, urlNotFoundResponse)
	default:
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErr)
	}
}
