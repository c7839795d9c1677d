package telegram

import (
	"errors"
	"testing"
	"time"

	"github.com/dipherent1/tgwrapper/internal/domain"
	"github.com/gotd/td/tgerr"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, phone string) *MTProtoClient {
	t.Helper()
	client, err := NewMTProtoClient(ClientConfig{
		APIID:      12345,
		APIHash:    "testhash",
		Phone:      phone,
		SessionDir: t.TempDir(),
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)
	return client
}

func TestNewMTProtoClientValidatesConfig(t *testing.T) {
	_, err := NewMTProtoClient(ClientConfig{APIHash: "h", Phone: "+15550001111"})
	assert.Error(t, err)

	_, err = NewMTProtoClient(ClientConfig{APIID: 1, Phone: "+15550001111"})
	assert.Error(t, err)

	_, err = NewMTProtoClient(ClientConfig{APIID: 1, APIHash: "h"})
	assert.Error(t, err)
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "+1*********11", maskPhone("+155500011511"))
	assert.Equal(t, "***", maskPhone("12"))
}

func TestTranslateError(t *testing.T) {
	rl, ok := domain.AsRateLimited(translateError(tgerr.New(420, "FLOOD_WAIT_5")))
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, rl.RetryAfter)

	plain := errors.New("CHANNEL_PRIVATE")
	assert.Equal(t, plain, translateError(plain))
}
