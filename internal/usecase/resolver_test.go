package usecase

import (
	"context"
	"testing"

	"github.com/dipherent1/tgwrapper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveChannelCreatesOnce(t *testing.T) {
	uow := newMemUOW()

	var first, second *domain.Channel
	err := uow.Do(context.Background(), func(tx *domain.Tx) error {
		var err error
		first, err = ResolveChannel(tx, 100, "Gophers", "gophers", domain.KindChannel)
		if err != nil {
			return err
		}
		second, err = ResolveChannel(tx, 100, "Gophers", "gophers", domain.KindChannel)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, uow.db.channels, 1)
	assert.Equal(t, "Gophers", first.Name)
	require.NotNil(t, first.Username)
	assert.Equal(t, "gophers", *first.Username)
}

func TestResolveChannelRefreshesNonEmptyFields(t *testing.T) {
	uow := newMemUOW()

	err := uow.Do(context.Background(), func(tx *domain.Tx) error {
		if _, err := ResolveChannel(tx, 100, "Old Name", "oldname", domain.KindChannel); err != nil {
			return err
		}
		channel, err := ResolveChannel(tx, 100, "New Name", "", domain.KindSupergroup)
		if err != nil {
			return err
		}
		assert.Equal(t, "New Name", channel.Name)
		// empty username must not erase the stored one
		require.NotNil(t, channel.Username)
		assert.Equal(t, "oldname", *channel.Username)
		assert.Equal(t, domain.KindSupergroup, channel.Kind)
		return nil
	})
	require.NoError(t, err)
}

func TestResolveChannelDefaultsKind(t *testing.T) {
	uow := newMemUOW()

	err := uow.Do(context.Background(), func(tx *domain.Tx) error {
		channel, err := ResolveChannel(tx, 200, "No Kind", "", "")
		if err != nil {
			return err
		}
		assert.Equal(t, domain.KindChannel, channel.Kind)
		assert.Nil(t, channel.Username)
		return nil
	})
	require.NoError(t, err)
}

func TestResolveTagIdempotent(t *testing.T) {
	uow := newMemUOW()

	err := uow.Do(context.Background(), func(tx *domain.Tx) error {
		first, err := ResolveTag(tx, "tech", "technology news")
		if err != nil {
			return err
		}
		second, err := ResolveTag(tx, "tech", "something else")
		if err != nil {
			return err
		}
		assert.Equal(t, first.ID, second.ID)
		// a set description is kept
		assert.Equal(t, "technology news", second.Description)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, uow.db.tags, 1)
}

func TestResolveTagFillsEmptyDescription(t *testing.T) {
	uow := newMemUOW()

	err := uow.Do(context.Background(), func(tx *domain.Tx) error {
		if _, err := ResolveTag(tx, "tech", ""); err != nil {
			return err
		}
		tag, err := ResolveTag(tx, "tech", "technology news")
		if err != nil {
			return err
		}
		assert.Equal(t, "technology news", tag.Description)
		return nil
	})
	require.NoError(t, err)
}
