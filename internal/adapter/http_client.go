package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-flock-keeper/internal/config"
	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/utils"
	"github.com/MKhiriev/go-flock-keeper/models"
)

const (
	recordsPath = "/api/records/{collection}"
	recordPath  = "/api/records/{collection}/{id}"
	healthPath  = "/api/health"

	// tokenRefreshMargin re-mints the bearer token this long before expiry.
	tokenRefreshMargin = 30 * time.Second
)

type httpRemoteStore struct {
	client *utils.HTTPClient
	app    config.ClientApp

	mu    sync.Mutex
	token models.Token

	logger *logger.Logger
}

// NewHTTPRemoteStore constructs an HTTP/REST implementation of [RemoteStore].
// It normalises and validates the base URL from adapterCfg.HTTPAddress and
// configures the underlying HTTP client with the request timeout. Every
// records call carries a bearer JWT minted from appCfg for the installation.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as
// a valid URL.
func NewHTTPRemoteStore(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (RemoteStore, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	return &httpRemoteStore{
		client: utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		app:    appCfg,
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// DeleteByKey implements [RemoteStore] as
// DELETE /api/records/{collection}?date=&service=&id=.
func (h *httpRemoteStore) DeleteByKey(ctx context.Context, collection string, filter models.RecordFilter) (int64, error) {
	req, err := h.authedRequest(ctx)
	if err != nil {
		return 0, err
	}

	var result models.DeleteResponse
	resp, err := req.
		SetPathParam("collection", collection).
		SetQueryParamsFromValues(filterQuery(filter)).
		SetResult(&result).
		Delete(recordsPath)
	if err != nil {
		return 0, mapTransportError("delete by key", err)
	}
	if err = mapHTTPError(resp); err != nil {
		h.logger.Err(err).Str("func", "httpRemoteStore.DeleteByKey").Str("collection", collection).Msg("remote delete by key failed")
		return 0, err
	}

	return result.Affected, nil
}

// BulkInsert implements [RemoteStore] as POST /api/records/{collection}.
func (h *httpRemoteStore) BulkInsert(ctx context.Context, collection string, records []models.RemoteRecord) ([]string, error) {
	if len(records) == 0 {
		return []string{}, nil
	}

	req, err := h.authedRequest(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := req.
		SetPathParam("collection", collection).
		SetHeader("Content-Type", "application/json").
		SetBody(records).
		Post(recordsPath)
	if err != nil {
		return nil, mapTransportError("bulk insert", err)
	}
	if err = mapHTTPError(resp); err != nil {
		h.logger.Err(err).Str("func", "httpRemoteStore.BulkInsert").Str("collection", collection).Int("records", len(records)).Msg("remote bulk insert failed")
		return nil, err
	}

	var result models.BulkInsertResponse
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeResponse, err)
	}

	return result.InsertedIDs, nil
}

// DeletePoint implements [RemoteStore] as DELETE /api/records/{collection}/{id}.
func (h *httpRemoteStore) DeletePoint(ctx context.Context, collection, id string) error {
	req, err := h.authedRequest(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetPathParams(map[string]string{"collection": collection, "id": id}).
		Delete(recordPath)
	if err != nil {
		return mapTransportError("delete point", err)
	}

	return mapHTTPError(resp)
}

// QueryAll implements [RemoteStore] as GET /api/records/{collection}.
func (h *httpRemoteStore) QueryAll(ctx context.Context, collection string, filter models.RecordFilter) ([]models.RemoteRecord, error) {
	req, err := h.authedRequest(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := req.
		SetPathParam("collection", collection).
		SetQueryParamsFromValues(filterQuery(filter)).
		Get(recordsPath)
	if err != nil {
		return nil, mapTransportError("query", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var result models.RecordsResponse
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeResponse, err)
	}
	if result.Records == nil {
		result.Records = []models.RemoteRecord{}
	}

	return result.Records, nil
}

// Ping implements [RemoteStore] as GET /api/health. It is unauthenticated.
func (h *httpRemoteStore) Ping(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get(healthPath)
	if err != nil {
		return mapTransportError("ping", err)
	}

	return mapHTTPError(resp)
}

func (h *httpRemoteStore) authedRequest(ctx context.Context) (*resty.Request, error) {
	token, err := h.bearer()
	if err != nil {
		return nil, err
	}

	return h.client.R().
		SetContext(ctx).
		SetAuthToken(token), nil
}

// bearer returns the cached token, minting a new one when it is missing or
// about to expire.
func (h *httpRemoteStore) bearer() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.token.SignedString != "" && h.token.ExpiresAt != nil &&
		time.Until(h.token.ExpiresAt.Time) > tokenRefreshMargin {
		return h.token.SignedString, nil
	}

	token, err := utils.GenerateJWTToken(h.app.TokenIssuer, h.app.InstallationID, h.app.TokenDuration, h.app.TokenSignKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	h.token = token

	return token.SignedString, nil
}

func filterQuery(filter models.RecordFilter) url.Values {
	q := url.Values{}
	if filter.Date != "" {
		q.Set("date", filter.Date)
	}
	if filter.Service != "" {
		q.Set("service", filter.Service)
	}
	for _, id := range filter.IDs {
		q.Add("id", id)
	}
	return q
}
