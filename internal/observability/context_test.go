package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestIDFromContext(ctx))
}

func TestRequestIDMissing(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
}
