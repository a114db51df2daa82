package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"eta-worker-service/internal/domain/entity"
	"eta-worker-service/internal/domain/repository"
	"eta-worker-service/pkg/logger"
)

// FirebaseTripRepository implements TripRepository on the Realtime Database REST API
type FirebaseTripRepository struct {
	httpClient *http.Client
	baseURL    string
	path       string
	logger     logger.Logger
}

// NewFirebaseTripRepository creates a new Firebase trip repository.
// httpClient must already carry credentials.
func NewFirebaseTripRepository(httpClient *http.Client, databaseURL, path string, logger logger.Logger) repository.TripRepository {
	return &FirebaseTripRepository{
		httpClient: httpClient,
		baseURL:    databaseURL,
		path:       path,
		logger:     logger,
	}
}

// ReadAll reads every record under the trips path. Records that fail to decode are skipped.
func (r *FirebaseTripRepository) ReadAll(ctx context.Context) (map[string]*entity.Trip, error) {
	endpoint := fmt.Sprintf("%s/%s.json", r.baseURL, r.path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", entity.ErrStoreUnavailable, err)
	}

	body, err := r.do(req)
	if err != nil {
		return nil, err
	}

	// An empty path comes back as a JSON null
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to decode trips: %v", entity.ErrStoreUnavailable, err)
	}

	result := make(map[string]*entity.Trip, len(raw))
	for id, record := range raw {
		var trip entity.Trip
		if err := json.Unmarshal(record, &trip); err != nil {
			r.logger.Warn("Skipping undecodable trip", "id", id, "error", err)
			continue
		}
		trip.TripID = id
		result[id] = &trip
	}

	return result, nil
}

// PatchETA replaces the ETA child of one trip. PATCH replaces each named child whole.
func (r *FirebaseTripRepository) PatchETA(ctx context.Context, tripID string, eta entity.ETA) error {
	jsonData, err := json.Marshal(map[string]entity.ETA{"ETA": eta})
	if err != nil {
		return fmt.Errorf("failed to marshal ETA: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s.json", r.baseURL, r.path, url.PathEscape(tripID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", entity.ErrStoreUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = r.do(req)
	return err
}

func (r *FirebaseTripRepository) do(req *http.Request) ([]byte, error) {
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", entity.ErrStoreUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: firebase returned status %d: %s", entity.ErrStoreUnavailable, resp.StatusCode, truncate(body, 200))
	}

	return body, nil
}

func truncate(body []byte, n int) string {
	if len(body) > n {
		return string(body[:n]) + "..."
	}
	return string(body)
}
