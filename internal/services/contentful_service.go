package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/SirClappington/cf-graphql-demo/internal/errors"
	"github.com/SirClappington/cf-graphql-demo/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	apiCDA = "cda"
	apiCMA = "cma"

	serviceName  = "contentful"
	maxPageSize  = 1000
	defaultOrder = "-sys.createdAt"
)

// ContentfulConfig holds the credentials and endpoints of a space.
type ContentfulConfig struct {
	SpaceID    string
	CDAToken   string
	CMAToken   string
	CDABaseURL string
	CMABaseURL string
	Timeout    time.Duration
}

// Observer receives one call per HTTP request made to Contentful.
type Observer interface {
	ObserveContentful(api string, code int, took time.Duration)
}

// ContentfulService talks to the Content Management API for content types and
// to the Content Delivery API for entries and assets.
type ContentfulService struct {
	config  ContentfulConfig
	client  *http.Client
	metrics Observer
	logger  *log.Logger
}

// EntryQuery selects entries. A Limit of zero asks only for the total.
type EntryQuery struct {
	ContentType string
	Query       string
	IDs         []string
	Order       string
	Skip        int
	Limit       int
	// Include is the link depth resolved into the response includes.
	Include int
}

func NewContentfulService(config ContentfulConfig, metrics Observer, logger *log.Logger) (*ContentfulService, error) {
	if config.SpaceID == "" {
		return nil, errors.NewValidationError("contentful space ID is required")
	}
	if config.CDAToken == "" {
		return nil, errors.NewValidationError("contentful CDA token is required")
	}
	if config.CDABaseURL == "" {
		config.CDABaseURL = "https://cdn.contentful.com"
	}
	if config.CMABaseURL == "" {
		config.CMABaseURL = "https://api.contentful.com"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &ContentfulService{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		metrics: metrics,
		logger:  logger,
	}, nil
}

// GetContentTypes fetches every content type of the space from the CMA.
func (s *ContentfulService) GetContentTypes(ctx context.Context) ([]models.ContentType, error) {
	if s.config.CMAToken == "" {
		return nil, errors.NewValidationError("contentful CMA token is required to fetch content types")
	}

	var contentTypes []models.ContentType
	for skip := 0; ; skip += maxPageSize {
		params := url.Values{}
		params.Set("skip", strconv.Itoa(skip))
		params.Set("limit", strconv.Itoa(maxPageSize))

		var page models.ContentTypeCollection
		if err := s.get(ctx, apiCMA, "content_types", params, &page); err != nil {
			return nil, fmt.Errorf("error fetching content types: %w", err)
		}
		contentTypes = append(contentTypes, page.Items...)
		if len(page.Items) == 0 || skip+len(page.Items) >= page.Total {
			break
		}
	}

	s.logger.Printf("Fetched %d content types of space %s", len(contentTypes), s.config.SpaceID)
	return contentTypes, nil
}

// GetEntries runs a single CDA entries query.
func (s *ContentfulService) GetEntries(ctx context.Context, q EntryQuery) (*models.EntryCollection, error) {
	params := url.Values{}
	if q.ContentType != "" {
		params.Set("content_type", q.ContentType)
	}
	if q.Query != "" {
		params.Set("query", q.Query)
	}
	if len(q.IDs) > 0 {
		params.Set("sys.id[in]", strings.Join(q.IDs, ","))
	}
	order := q.Order
	if order == "" {
		order = defaultOrder
	}
	params.Set("order", order)
	params.Set("skip", strconv.Itoa(q.Skip))
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("include", strconv.Itoa(q.Include))

	var collection models.EntryCollection
	if err := s.get(ctx, apiCDA, "entries", params, &collection); err != nil {
		return nil, fmt.Errorf("error fetching entries: %w", err)
	}
	return &collection, nil
}

// GetEntry returns nil without an error when the entry does not exist.
func (s *ContentfulService) GetEntry(ctx context.Context, id string) (*models.Entry, error) {
	collection, err := s.GetEntries(ctx, EntryQuery{IDs: []string{id}, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(collection.Items) == 0 {
		return nil, nil
	}
	return &collection.Items[0], nil
}

// GetAsset returns nil without an error when the asset does not exist.
func (s *ContentfulService) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	var asset models.Asset
	err := s.get(ctx, apiCDA, "assets/"+url.PathEscape(id), nil, &asset)
	if errors.Is(err, errors.ErrorTypeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching asset %s: %w", id, err)
	}
	return &asset, nil
}

// GetAllEntries pages through every entry of the space.
func (s *ContentfulService) GetAllEntries(ctx context.Context) ([]models.Entry, error) {
	var entries []models.Entry
	for skip := 0; ; skip += maxPageSize {
		page, err := s.GetEntries(ctx, EntryQuery{Order: "sys.createdAt", Skip: skip, Limit: maxPageSize})
		if err != nil {
			return nil, err
		}
		entries = append(entries, page.Items...)
		if len(page.Items) == 0 || skip+len(page.Items) >= page.Total {
			return entries, nil
		}
	}
}

// GetAllAssets pages through every asset of the space.
func (s *ContentfulService) GetAllAssets(ctx context.Context) ([]models.Asset, error) {
	var assets []models.Asset
	for skip := 0; ; skip += maxPageSize {
		params := url.Values{}
		params.Set("order", "sys.createdAt")
		params.Set("skip", strconv.Itoa(skip))
		params.Set("limit", strconv.Itoa(maxPageSize))

		var page models.AssetCollection
		if err := s.get(ctx, apiCDA, "assets", params, &page); err != nil {
			return nil, fmt.Errorf("error fetching assets: %w", err)
		}
		assets = append(assets, page.Items...)
		if len(page.Items) == 0 || skip+len(page.Items) >= page.Total {
			return assets, nil
		}
	}
}

func (s *ContentfulService) get(ctx context.Context, api, path string, params url.Values, out any) error {
	base, token := s.config.CDABaseURL, s.config.CDAToken
	if api == apiCMA {
		base, token = s.config.CMABaseURL, s.config.CMAToken
	}

	endpoint := fmt.Sprintf("%s/spaces/%s/%s", strings.TrimRight(base, "/"), url.PathEscape(s.config.SpaceID), path)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.NewInternalError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	took := time.Since(start)
	if tl := TimelineFromContext(ctx); tl != nil {
		tl.record(endpoint, start, took)
	}
	if err != nil {
		s.observe(api, 0, took)
		return errors.NewExternalError(serviceName, err)
	}
	defer resp.Body.Close()
	s.observe(api, resp.StatusCode, took)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewExternalError(serviceName, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.NewExternalError(serviceName, fmt.Errorf("failed to parse response: %w", err))
	}
	return nil
}

func (s *ContentfulService) observe(api string, code int, took time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveContentful(api, code, took)
	}
}

func statusError(code int, body []byte) error {
	var apiErr struct {
		Message string `json:"message"`
		Sys     struct {
			ID string `json:"id"`
		} `json:"sys"`
	}
	msg := http.StatusText(code)
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		msg = apiErr.Message
	}
	cause := fmt.Errorf("status %d: %s", code, msg)

	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.NewUnauthorizedError(serviceName, cause)
	case http.StatusNotFound:
		return &errors.APIError{
			Type:    errors.ErrorTypeNotFound,
			Message: "Resource not found in contentful",
			Details: cause.Error(),
		}
	default:
		return errors.NewExternalError(serviceName, cause)
	}
}
