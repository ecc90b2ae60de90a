package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

func TestErrorCodeRoundtrip(t *testing.T) {
	typed := []error{
		interfaces.ErrNotAuthorized,
		interfaces.ErrPaused,
		interfaces.ErrInvalidID,
		interfaces.ErrInvalidStringLength,
		interfaces.ErrInvalidQuality,
		interfaces.ErrMaxCertsExceeded,
		interfaces.ErrZeroAddress,
		interfaces.ErrNoChanges,
		interfaces.ErrHistoryFull,
		interfaces.ErrInvalidOptional,
	}

	for _, want := range typed {
		code := ErrorCode(want)
		got := ErrorFromCode(code)
		assert.True(t, errors.Is(got, want), "code %s must map back to its error", code)
	}
}

func TestErrorCode_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("certification 3: %w", interfaces.ErrInvalidStringLength)
	assert.Equal(t, CodeInvalidStringLength, ErrorCode(wrapped))
}

func TestErrorCode_UnknownError(t *testing.T) {
	assert.Equal(t, CodeInternal, ErrorCode(errors.New("backend exploded")))
	assert.Nil(t, ErrorFromCode("no_such_code"))
}

func TestUpdateRequest_Patch(t *testing.T) {
	quality := 95
	req := UpdateRequest{Quality: &quality}

	patch := req.Patch()
	assert.False(t, patch.Empty())
	assert.Equal(t, &quality, patch.Quality)
	assert.Nil(t, patch.BatchID)

	assert.True(t, UpdateRequest{}.Patch().Empty())
}
