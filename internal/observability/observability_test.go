package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestRecordFriendToggle(t *testing.T) {
	added := testutil.ToFloat64(FriendToggles.WithLabelValues("added"))
	removed := testutil.ToFloat64(FriendToggles.WithLabelValues("removed"))

	RecordFriendToggle(true)
	RecordFriendToggle(false)
	RecordFriendToggle(false)

	assert.Equal(t, added+1, testutil.ToFloat64(FriendToggles.WithLabelValues("added")))
	assert.Equal(t, removed+2, testutil.ToFloat64(FriendToggles.WithLabelValues("removed")))
}

func TestRecordLikeToggle(t *testing.T) {
	liked := testutil.ToFloat64(LikeToggles.WithLabelValues("liked"))
	RecordLikeToggle(true)
	assert.Equal(t, liked+1, testutil.ToFloat64(LikeToggles.WithLabelValues("liked")))
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "sociopedia-test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "service", "op", attribute.Int("n", 1))
	assert.NotNil(t, ctx)
	EndSpan(span, errors.New("boom"))
}
