package entity_test

import (
	"errors"
	"fmt"
	"testing"

	"eta-worker-service/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestFailureReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("AV123: %w", entity.ErrNotAirborne), entity.ReasonNotAirborne},
		{fmt.Errorf("%w: status 502", entity.ErrProviderError), entity.ReasonProviderError},
		{entity.ErrNoLiveData, entity.ReasonNoLiveData},
		{entity.ErrStalledFlight, entity.ReasonStalledFlight},
		{entity.ErrUnresolvedAirport, entity.ReasonUnresolvedAirport},
		{entity.ErrInvalidTripTime, entity.ReasonInvalidTripTime},
		{fmt.Errorf("%w: timeout", entity.ErrStoreUnavailable), entity.ReasonStoreUnavailable},
		{entity.ErrTripNotFound, entity.ReasonStoreUnavailable},
		{errors.New("boom"), entity.ReasonUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, entity.FailureReason(tt.err), tt.err.Error())
	}
}

func TestTripIsTerminal(t *testing.T) {
	for _, status := range []string{entity.TripStatusCompleted, entity.TripStatusCancelled} {
		trip := entity.Trip{Status: status}
		assert.True(t, trip.IsTerminal(), status)
	}
	for _, status := range []string{entity.TripStatusPending, entity.TripStatusInProgress, ""} {
		trip := entity.Trip{Status: status}
		assert.False(t, trip.IsTerminal(), status)
	}
}
