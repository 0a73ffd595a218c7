package telegram

import (
	"context"
	"testing"

	"github.com/gotd/td/bin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingInvoker struct {
	calls int
}

func (c *countingInvoker) Invoke(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
	c.calls++
	return nil
}

func TestRateLimit(t *testing.T) {
	inv := &countingInvoker{}
	invoke := rateLimit(1000).Handle(inv)

	for i := 0; i < 5; i++ {
		require.NoError(t, invoke(context.Background(), nil, nil))
	}
	assert.Equal(t, 5, inv.calls)
}

func TestRateLimit_ContextCancelled(t *testing.T) {
	inv := &countingInvoker{}
	// one token, refilled far slower than the test runs
	invoke := rateLimit(0.001).Handle(inv)

	require.NoError(t, invoke(context.Background(), nil, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, invoke(ctx, nil, nil))
	assert.Equal(t, 1, inv.calls)
}
