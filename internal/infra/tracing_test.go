package infra

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracing_ExportsSpans(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	shutdown, err := InitTracing(ctx, "bake-tracker-test", "test", &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(ctx, "composition.flatten")
	span.End()

	require.NoError(t, shutdown(ctx))
	assert.Contains(t, buf.String(), "composition.flatten")
	assert.Contains(t, buf.String(), "bake-tracker-test")
}
