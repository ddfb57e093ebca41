package telegram

// Bot API encodes chat kinds in the sign and magnitude of the id:
// users are positive, basic groups are -id, channels and supergroups are -100<id>.
const channelIDOffset int64 = 1_000_000_000_000

type chatKind int

const (
	chatKindUser chatKind = iota
	chatKindBasicGroup
	chatKindChannel
)

// splitChatID converts a Bot API chat id into its kind and MTProto id
func splitChatID(chatID int64) (chatKind, int64) {
	switch {
	case chatID > 0:
		return chatKindUser, chatID
	case chatID < -channelIDOffset:
		return chatKindChannel, -chatID - channelIDOffset
	default:
		return chatKindBasicGroup, -chatID
	}
}
