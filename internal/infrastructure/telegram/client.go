package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/dipherent1/tgwrapper/internal/domain"
)

// MTProtoClient implements domain.Connector using the gotd/td library.
// One client wraps one authenticated user account session.
type MTProtoClient struct {
	client *telegram.Client

	apiID   int
	apiHash string
	phone   string

	connected     bool
	disconnecting bool
	mu            sync.RWMutex
	cancelFunc    context.CancelFunc
	runDone       chan struct{}

	logger zerolog.Logger

	api *tg.Client

	rateLimiter *rate.Limiter
}

// ClientConfig holds configuration for MTProtoClient
type ClientConfig struct {
	APIID         int
	APIHash       string
	Phone         string
	SessionDir    string
	UpdateHandler telegram.UpdateHandler
	Logger        zerolog.Logger
}

// maskPhone masks a phone number for logging (keeps first 2 and last 2 digits)
func maskPhone(phone string) string {
	if len(phone) < 4 {
		return "***"
	}
	return phone[:2] + strings.Repeat("*", len(phone)-4) + phone[len(phone)-2:]
}

// NewMTProtoClient creates a new MTProto client instance
func NewMTProtoClient(cfg ClientConfig) (*MTProtoClient, error) {
	if cfg.APIID == 0 {
		return nil, fmt.Errorf("APIID is required")
	}
	if cfg.APIHash == "" {
		return nil, fmt.Errorf("APIHash is required")
	}
	if cfg.Phone == "" {
		return nil, fmt.Errorf("Phone is required")
	}
	if cfg.SessionDir == "" {
		cfg.SessionDir = "./sessions"
	}

	storage, err := NewFileSessionStorage(cfg.SessionDir, cfg.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to create session storage: %w", err)
	}

	c := &MTProtoClient{
		apiID:   cfg.APIID,
		apiHash: cfg.APIHash,
		phone:   cfg.Phone,
		logger: cfg.Logger.With().
			Str("component", "mtproto_client").
			Str("phone", maskPhone(cfg.Phone)).
			Logger(),
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 10),
	}

	c.client = telegram.NewClient(cfg.APIID, cfg.APIHash, telegram.Options{
		SessionStorage: storage,
		UpdateHandler:  cfg.UpdateHandler,
	})

	return c, nil
}

// Connect connects to Telegram and authenticates if the stored session
// is missing. The caller should provide a context with a generous
// timeout: first-time auth waits for verification code input.
func (c *MTProtoClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		c.logger.Debug().Msg("already connected")
		return nil
	}
	if c.disconnecting {
		c.mu.Unlock()
		return fmt.Errorf("disconnect in progress, cannot connect")
	}
	defer c.mu.Unlock()

	c.logger.Info().Msg("connecting to Telegram")

	clientCtx, cancel := context.WithCancel(context.Background())
	c.cancelFunc = cancel

	readyChan := make(chan struct{})
	errChan := make(chan error, 1)
	c.runDone = make(chan struct{})

	go func() {
		defer close(c.runDone)
		err := c.client.Run(clientCtx, func(ctx context.Context) error {
			c.api = c.client.API()

			flow := auth.NewFlow(termAuth{phone: c.phone}, auth.SendCodeOptions{})
			if err := c.client.Auth().IfNecessary(ctx, flow); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			c.connected = true
			c.logger.Info().Msg("connected to Telegram")
			close(readyChan)

			// Keep the connection alive until disconnect.
			<-ctx.Done()
			return ctx.Err()
		})
		select {
		case errChan <- err:
		default:
		}
	}()

	select {
	case <-readyChan:
		return nil
	case err := <-errChan:
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		return nil
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
}

// Disconnect disconnects from Telegram. Safe to call repeatedly and
// from multiple goroutines; the session is saved by gotd on shutdown.
func (c *MTProtoClient) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	if c.disconnecting || !c.connected {
		c.mu.Unlock()
		return nil
	}
	c.disconnecting = true
	cancelFunc := c.cancelFunc
	runDone := c.runDone
	c.mu.Unlock()

	c.logger.Info().Msg("disconnecting from Telegram")

	if cancelFunc != nil {
		cancelFunc()
		if runDone != nil {
			select {
			case <-runDone:
			case <-ctx.Done():
				c.logger.Warn().Msg("disconnect timeout while waiting for client shutdown")
			}
		}
	}

	c.mu.Lock()
	c.api = nil
	c.connected = false
	c.cancelFunc = nil
	c.runDone = nil
	c.disconnecting = false
	c.mu.Unlock()

	c.logger.Info().Msg("disconnected from Telegram")
	return nil
}

// IsConnected checks if the client is connected to Telegram
func (c *MTProtoClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// JoinByHandle resolves a public handle and joins it. Already being a
// member comes back as domain.ErrAlreadyMember with the channel info
// still populated; FLOOD_WAIT becomes a domain.RateLimitedError.
func (c *MTProtoClient) JoinByHandle(ctx context.Context, handle string) (*domain.JoinedChannel, error) {
	api, err := c.apiClient()
	if err != nil {
		return nil, err
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	handle = strings.TrimPrefix(handle, "@")
	c.logger.Info().Str("handle", handle).Msg("joining channel by handle")

	resolved, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: handle,
	})
	if err != nil {
		return nil, translateError(fmt.Errorf("failed to resolve handle %q: %w", handle, err))
	}

	channel := findChannel(resolved.Chats)
	if channel == nil {
		return nil, fmt.Errorf("resolved peer %q is not a joinable channel or group", handle)
	}
	info := joinedFromChannel(channel)

	_, err = api.ChannelsJoinChannel(ctx, &tg.InputChannel{
		ChannelID:  channel.ID,
		AccessHash: channel.AccessHash,
	})
	if err != nil {
		if tgerr.Is(err, "USER_ALREADY_PARTICIPANT") {
			return info, domain.ErrAlreadyMember
		}
		return nil, translateError(fmt.Errorf("failed to join %q: %w", handle, err))
	}

	c.logger.Info().Str("handle", handle).Int64("channel_id", info.TelegramID).Msg("joined channel")
	return info, nil
}

// ImportInvite joins via a private invite hash. Already being a member
// comes back as domain.ErrAlreadyMember with channel info recovered
// through a checkChatInvite call when possible.
func (c *MTProtoClient) ImportInvite(ctx context.Context, hash string) (*domain.JoinedChannel, error) {
	api, err := c.apiClient()
	if err != nil {
		return nil, err
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	c.logger.Info().Msg("importing chat invite")

	updates, err := api.MessagesImportChatInvite(ctx, hash)
	if err != nil {
		if tgerr.Is(err, "USER_ALREADY_PARTICIPANT") {
			return c.checkInvite(ctx, api, hash)
		}
		return nil, translateError(fmt.Errorf("failed to import invite: %w", err))
	}

	info := joinedFromUpdates(updates)
	if info == nil {
		return nil, fmt.Errorf("invite import returned no chat")
	}

	c.logger.Info().Int64("channel_id", info.TelegramID).Msg("joined via invite")
	return info, nil
}

// checkInvite recovers channel info for an invite the account already
// accepted. Info may be unavailable; the caller handles a nil result.
func (c *MTProtoClient) checkInvite(ctx context.Context, api *tg.Client, hash string) (*domain.JoinedChannel, error) {
	invite, err := api.MessagesCheckChatInvite(ctx, hash)
	if err != nil {
		c.logger.Debug().Err(err).Msg("could not recover chat info for accepted invite")
		return nil, domain.ErrAlreadyMember
	}
	already, ok := invite.(*tg.ChatInviteAlready)
	if !ok {
		return nil, domain.ErrAlreadyMember
	}
	return joinedFromChat(already.Chat), domain.ErrAlreadyMember
}

// apiClient returns the API handle if connected.
func (c *MTProtoClient) apiClient() (*tg.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected || c.api == nil {
		return nil, domain.ErrNotConnected
	}
	return c.api, nil
}

// translateError maps Telegram RPC errors onto the domain taxonomy.
func translateError(err error) error {
	if wait, ok := tgerr.AsFloodWait(err); ok {
		return &domain.RateLimitedError{RetryAfter: wait}
	}
	return err
}

// findChannel picks the first channel out of a resolved chat list.
func findChannel(chats []tg.ChatClass) *tg.Channel {
	for _, chat := range chats {
		if channel, ok := chat.(*tg.Channel); ok {
			return channel
		}
	}
	return nil
}

// joinedFromChannel converts a tg.Channel to the connector result.
func joinedFromChannel(channel *tg.Channel) *domain.JoinedChannel {
	kind := domain.KindChannel
	if channel.Megagroup {
		kind = domain.KindSupergroup
	}
	return &domain.JoinedChannel{
		TelegramID: channel.ID,
		Title:      channel.Title,
		Username:   channel.Username,
		Kind:       kind,
	}
}

// joinedFromChat converts any chat class to the connector result.
func joinedFromChat(chat tg.ChatClass) *domain.JoinedChannel {
	switch v := chat.(type) {
	case *tg.Channel:
		return joinedFromChannel(v)
	case *tg.Chat:
		return &domain.JoinedChannel{
			TelegramID: v.ID,
			Title:      v.Title,
			Kind:       domain.KindBasicGroup,
		}
	default:
		return nil
	}
}

// joinedFromUpdates extracts the joined chat out of an updates result.
func joinedFromUpdates(updates tg.UpdatesClass) *domain.JoinedChannel {
	var chats []tg.ChatClass
	switch u := updates.(type) {
	case *tg.Updates:
		chats = u.Chats
	case *tg.UpdatesCombined:
		chats = u.Chats
	}
	for _, chat := range chats {
		if info := joinedFromChat(chat); info != nil {
			return info
		}
	}
	return nil
}
