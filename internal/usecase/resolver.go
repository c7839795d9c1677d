package usecase

import (
	"errors"

	"github.com/dipherent1/tgwrapper/internal/domain"
)

// Entity resolvers: idempotent get-or-create for channels and tags,
// always called inside a caller-owned transaction. Lookups never erase
// existing data; incoming fields overwrite only when non-empty.

// ResolveChannel finds a channel by its telegram id or creates it.
// Name, username and kind are refreshed from the new values when those
// are non-empty.
func ResolveChannel(tx *domain.Tx, telegramID int64, name, username string, kind domain.ChannelKind) (*domain.Channel, error) {
	channel, err := tx.Channels.GetByTelegramID(telegramID)
	if err != nil {
		if !errors.Is(err, domain.ErrChannelNotFound) {
			return nil, err
		}
		channel = &domain.Channel{
			TelegramID: telegramID,
			Name:       name,
			Kind:       domain.KindChannel,
		}
		if username != "" {
			channel.Username = &username
		}
		if kind != "" {
			channel.Kind = kind
		}
		if err := tx.Channels.Create(channel); err != nil {
			return nil, err
		}
		return channel, nil
	}

	changed := false
	if name != "" && channel.Name != name {
		channel.Name = name
		changed = true
	}
	if username != "" && (channel.Username == nil || *channel.Username != username) {
		channel.Username = &username
		changed = true
	}
	if kind != "" && channel.Kind != kind {
		channel.Kind = kind
		changed = true
	}
	if changed {
		if err := tx.Channels.Save(channel); err != nil {
			return nil, err
		}
	}
	return channel, nil
}

// ResolveTag finds a tag by its unique name or creates it. An empty
// description on an existing tag is filled in; a set one is kept.
func ResolveTag(tx *domain.Tx, name, description string) (*domain.Tag, error) {
	tag, err := tx.Tags.GetByName(name)
	if err != nil {
		if !errors.Is(err, domain.ErrTagNotFound) {
			return nil, err
		}
		tag = &domain.Tag{Name: name, Description: description}
		if err := tx.Tags.Create(tag); err != nil {
			return nil, err
		}
		return tag, nil
	}

	if description != "" && tag.Description == "" {
		tag.Description = description
		if err := tx.Tags.Save(tag); err != nil {
			return nil, err
		}
	}
	return tag, nil
}
