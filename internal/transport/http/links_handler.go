package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/IgorGrieder/shortlink/internal/config"
	"github.com/IgorGrieder/shortlink/internal/constants"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	appvalidation "github.com/IgorGrieder/shortlink/internal/infrastructure/validation"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/IgorGrieder/shortlink/pkg/httputils"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxCreateBodyBytes = 1 << 20

type LinksHandler struct {
	svc      *links.Service
	resolver *links.Resolver

	redirectStatus int
	notFoundURL    string
}

func NewLinksHandler(cfg *config.Config, svc *links.Service, resolver *links.Resolver) *LinksHandler {
	status := cfg.Shortener.RedirectStatus
	if status != http.StatusMovedPermanently && status != http.StatusFound {
		status = http.StatusMovedPermanently
	}

	return &LinksHandler{
		svc:            svc,
		resolver:       resolver,
		redirectStatus: status,
		notFoundURL:    strings.TrimRight(cfg.Shortener.BaseURL, "/") + "/?error=not-found",
	}
}

type createLinkRequest struct {
	OriginalURL string `json:"originalUrl" validate:"required,notblank,http_url"`
	CustomSlug  string `json:"customSlug,omitempty" validate:"omitempty,min=3,max=30,slugchars"`
}

type createLinkResponse struct {
	ShortURL    string `json:"shortUrl"`
	Slug        string `json:"slug"`
	OriginalURL string `json:"originalUrl"`
}

type linkResponse struct {
	Slug        string    `json:"slug"`
	OriginalURL string    `json:"originalUrl"`
	ShortURL    string    `json:"shortUrl"`
	TotalClicks int64     `json:"totalClicks"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (h *LinksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCreateBodyBytes)).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}
	req.OriginalURL = strings.TrimSpace(req.OriginalURL)
	req.CustomSlug = strings.TrimSpace(req.CustomSlug)

	if err := appvalidation.Validate(req); err != nil {
		httputils.WriteAPIError(w, r, validationAPIError(err))
		return
	}

	created, err := h.svc.CreateLink(r.Context(), links.CreateLinkInput{
		OriginalURL: req.OriginalURL,
		CustomSlug:  req.CustomSlug,
	})
	if err != nil {
		httputils.WriteAPIError(w, r, h.createAPIError(err, req))
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessLinkCreated, createLinkResponse{
		ShortURL:    created.ShortURL,
		Slug:        created.Link.Slug,
		OriginalURL: created.Link.OriginalURL,
	})
}

func validationAPIError(err error) constants.APIError {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return constants.ErrInvalidRequestBody
	}

	// fields are reported in declaration order, so originalUrl wins.
	e := validationErrs[0]
	switch e.Field() {
	case "originalUrl":
		if e.Tag() == "http_url" {
			return constants.ErrInvalidURL
		}
		return constants.ErrMissingURL
	case "customSlug":
		if e.Tag() == "slugchars" {
			return constants.ErrInvalidSlugChars
		}
		return constants.ErrInvalidSlugLength
	}
	return constants.ErrInvalidRequestBody
}

func (h *LinksHandler) createAPIError(err error, req createLinkRequest) constants.APIError {
	var vErr *links.ValidationError
	switch {
	case errors.Is(err, links.ErrMissingURL):
		return constants.ErrMissingURL
	case errors.Is(err, links.ErrInvalidURL):
		return constants.ErrInvalidURL
	case errors.Is(err, links.ErrInvalidSlugLength):
		return constants.ErrInvalidSlugLength
	case errors.Is(err, links.ErrInvalidSlugChars):
		return constants.ErrInvalidSlugChars
	case errors.As(err, &vErr):
		return constants.ErrInvalidRequestBody.WithMessage(vErr.Message)
	case errors.Is(err, links.ErrSlugTaken):
		return constants.ErrSlugTaken
	case errors.Is(err, links.ErrGenerationExhausted):
		logger.Warn("slug generation exhausted", zap.String("original_url", req.OriginalURL))
		return constants.ErrGenerationExhausted
	default:
		logger.Error("failed to create link",
			zap.Error(err),
			zap.String("original_url", req.OriginalURL),
			zap.String("custom_slug", req.CustomSlug),
		)
		return constants.ErrInternalError
	}
}

func (h *LinksHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	link, err := h.svc.GetLink(r.Context(), slug)
	if err != nil {
		if errors.Is(err, links.ErrNotFound) {
			httputils.WriteAPIError(w, r, constants.ErrLinkNotFound)
			return
		}
		logger.Error("failed to fetch link", zap.Error(err), zap.String("slug", slug))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessLinkFound, linkResponse{
		Slug:        link.Slug,
		OriginalURL: link.OriginalURL,
		ShortURL:    h.svc.ShortURL(link.Slug),
		TotalClicks: link.TotalClicks,
		CreatedAt:   link.CreatedAt,
	})
}

func (h *LinksHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.PathValue("slug"))
	if slug == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	res, err := h.resolver.Resolve(r.Context(), slug, links.RequestMetadata{
		UserAgent:    r.UserAgent(),
		ForwardedFor: r.Header.Get("X-Forwarded-For"),
		SkipTracking: r.Method == http.MethodHead,
	})
	if err != nil {
		if errors.Is(err, links.ErrNotFound) {
			http.Redirect(w, r, h.notFoundURL, http.StatusFound)
			return
		}
		logger.Error("failed to resolve slug", zap.Error(err), zap.String("slug", slug))
		httputils.WriteInternalError(w)
		return
	}

	w.Header().Set("Location", res.URL)
	w.WriteHeader(h.redirectStatus)
}
