package domain

import "fmt"

// marked is the offset Telegram adds to channel ids in the bot API
// "-100..." marked form.
const markedChannelOffset = 1_000_000_000_000

// MessageLink builds the t.me deep link for a message from the
// denormalized channel telegram id. Marked ids ("-100..." form) are
// unmarked first; bare ids are used as-is.
func MessageLink(channelTelegramID, messageID int64) string {
	id := channelTelegramID
	if id < 0 {
		id = -id
	}
	if channelTelegramID < -100 && id > markedChannelOffset {
		id -= markedChannelOffset
	}
	return fmt.Sprintf("https://t.me/c/%d/%d", id, messageID)
}
