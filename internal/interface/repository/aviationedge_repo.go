package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eta-worker-service/internal/domain/entity"
	"eta-worker-service/internal/domain/repository"
	"eta-worker-service/pkg/logger"
	"eta-worker-service/pkg/metrics"

	"golang.org/x/time/rate"
)

const noRecordFound = "No Record Found"

// AviationEdgeRepository implements FlightTrackerRepository on the Aviation Edge flight tracker API
type AviationEdgeRepository struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	airports    repository.AirportRepository
	metrics     *metrics.Metrics
	logger      logger.Logger
}

// NewAviationEdgeRepository creates a new Aviation Edge client.
// Requests are limited to ratePerMinute with a burst of one.
func NewAviationEdgeRepository(
	baseURL string,
	apiKey string,
	timeout time.Duration,
	ratePerMinute int,
	airports repository.AirportRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) repository.FlightTrackerRepository {
	if ratePerMinute < 1 {
		ratePerMinute = 1
	}

	return &AviationEdgeRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMinute)), 1),
		airports:    airports,
		metrics:     metrics,
		logger:      logger,
	}
}

// aviationEdgeFlight is one element of the /flights response.
// Pointers distinguish absent blocks from zero values.
type aviationEdgeFlight struct {
	Geography *struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Altitude  float64  `json:"altitude"`
		Direction float64  `json:"direction"`
	} `json:"geography"`
	Speed *struct {
		Horizontal *float64 `json:"horizontal"`
		IsGround   float64  `json:"isGround"`
		VSpeed     float64  `json:"vspeed"`
	} `json:"speed"`
	Arrival *struct {
		IATACode  string   `json:"iataCode"`
		ICAOCode  string   `json:"icaoCode"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"arrival"`
	Flight struct {
		IATANumber string `json:"iataNumber"`
		ICAONumber string `json:"icaoNumber"`
	} `json:"flight"`
	Status string `json:"status"`
}

type aviationEdgeError struct {
	Error string `json:"error"`
}

// Fetch returns the live snapshot of a flight. airportCode supplies the arrival
// point when the provider omits one.
func (r *AviationEdgeRepository) Fetch(ctx context.Context, flightNumber string, airportCode string) (*entity.FlightSnapshot, error) {
	if err := r.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", entity.ErrProviderError, err)
	}

	body, err := r.get(ctx, flightNumber)
	if err != nil {
		return nil, err
	}

	flights, err := decodeFlights(body)
	if err != nil {
		return nil, err
	}
	if len(flights) == 0 {
		return nil, fmt.Errorf("%s: %w", flightNumber, entity.ErrNoLiveData)
	}

	// The provider lists the current leg first
	flight := flights[0]

	if flight.Geography == nil || flight.Geography.Latitude == nil || flight.Geography.Longitude == nil ||
		flight.Speed == nil || flight.Speed.Horizontal == nil {
		return nil, fmt.Errorf("%s: %w", flightNumber, entity.ErrNotAirborne)
	}

	snapshot := &entity.FlightSnapshot{
		FlightNumber: flightNumber,
		Position: &entity.Coordinate{
			Latitude:  *flight.Geography.Latitude,
			Longitude: *flight.Geography.Longitude,
		},
		Speed: &entity.Speed{
			Horizontal: *flight.Speed.Horizontal,
		},
	}

	if flight.Arrival != nil && flight.Arrival.Latitude != nil && flight.Arrival.Longitude != nil {
		snapshot.Arrival = &entity.Coordinate{
			Latitude:  *flight.Arrival.Latitude,
			Longitude: *flight.Arrival.Longitude,
		}
	} else {
		snapshot.Arrival = r.fallbackArrival(ctx, airportCode)
		snapshot.ArrivalFromFallback = true
	}

	return snapshot, nil
}

func (r *AviationEdgeRepository) get(ctx context.Context, flightNumber string) ([]byte, error) {
	params := url.Values{}
	params.Set("key", r.apiKey)
	params.Set("flightIata", flightNumber)
	endpoint := fmt.Sprintf("%s/flights?%s", r.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", entity.ErrProviderError, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if r.metrics != nil {
		r.metrics.ProviderLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		// Drop the URL from the message so the key does not reach the logs
		if urlErr, ok := err.(*url.Error); ok {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrProviderError, flightNumber, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", entity.ErrProviderError, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: status %d", entity.ErrProviderError, flightNumber, resp.StatusCode)
	}

	return body, nil
}

// decodeFlights accepts the normal array body and the error object the provider
// returns when it has no record of a flight.
func decodeFlights(body []byte) ([]aviationEdgeFlight, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var flights []aviationEdgeFlight
		if err := json.Unmarshal(trimmed, &flights); err != nil {
			return nil, fmt.Errorf("%w: parse response: %v", entity.ErrProviderError, err)
		}
		return flights, nil
	case '{':
		var apiErr aviationEdgeError
		if err := json.Unmarshal(trimmed, &apiErr); err != nil {
			return nil, fmt.Errorf("%w: parse response: %v", entity.ErrProviderError, err)
		}
		if strings.EqualFold(apiErr.Error, noRecordFound) {
			return nil, entity.ErrNoLiveData
		}
		return nil, fmt.Errorf("%w: %s", entity.ErrProviderError, apiErr.Error)
	default:
		return nil, fmt.Errorf("%w: unexpected response body", entity.ErrProviderError)
	}
}

// fallbackArrival returns the airport coordinate, or (0,0) for an unknown code
func (r *AviationEdgeRepository) fallbackArrival(ctx context.Context, airportCode string) *entity.Coordinate {
	airport, err := r.airports.GetByCode(ctx, airportCode)
	if err != nil {
		r.logger.Warn("No coordinates for arrival airport, projecting to (0,0)", "airport", airportCode, "error", err)
		return &entity.Coordinate{}
	}

	coord := airport.Coordinate()
	return &coord
}
