package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"go.uber.org/zap"

	"whoisbot/internal/domain"
)

// searchLimit is the page size for participant search; only the first match is used
const searchLimit = 200

// Directory answers user lookups over MTProto
type Directory struct {
	// api returns the RPC client of the live connection, nil when stopped
	api    func() *tg.Client
	logger *zap.Logger

	// Channel access hashes learned from channels.getChannels
	hashMux      sync.RWMutex
	accessHashes map[int64]int64
}

// NewDirectory creates a directory on top of an RPC client accessor such as Client.API
func NewDirectory(api func() *tg.Client, logger *zap.Logger) *Directory {
	return &Directory{
		api:          api,
		logger:       logger,
		accessHashes: make(map[int64]int64),
	}
}

// ResolveUsername returns the user owning username.
// Usernames that belong to channels or groups are reported as not found.
func (d *Directory) ResolveUsername(ctx context.Context, username string) (*domain.User, error) {
	api, err := d.rpc()
	if err != nil {
		return nil, err
	}

	resolved, err := api.ContactsResolveUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("resolve username %q: %w", username, classify(err))
	}

	peer, ok := resolved.Peer.(*tg.PeerUser)
	if !ok {
		return nil, fmt.Errorf("username %q is not a user: %w", username, domain.ErrUserNotFound)
	}

	user, ok := usersByID(resolved.Users)[peer.UserID]
	if !ok {
		return nil, fmt.Errorf("username %q resolved without user object: %w", username, domain.ErrUserNotFound)
	}

	result := FromMTProtoUser(user)
	return &result, nil
}

// SearchChatMembers returns members of the chat whose display name matches query,
// in the order Telegram returns them
func (d *Directory) SearchChatMembers(ctx context.Context, chatID int64, query string) ([]domain.User, error) {
	kind, id := splitChatID(chatID)
	switch kind {
	case chatKindChannel:
		return d.searchChannel(ctx, id, query)
	case chatKindBasicGroup:
		return d.searchBasicGroup(ctx, id, query)
	default:
		// Private chats have no member list
		return nil, nil
	}
}

func (d *Directory) searchChannel(ctx context.Context, channelID int64, query string) ([]domain.User, error) {
	api, err := d.rpc()
	if err != nil {
		return nil, err
	}

	accessHash, err := d.channelAccessHash(ctx, api, channelID)
	if err != nil {
		return nil, err
	}

	res, err := api.ChannelsGetParticipants(ctx, &tg.ChannelsGetParticipantsRequest{
		Channel: &tg.InputChannel{ChannelID: channelID, AccessHash: accessHash},
		Filter:  &tg.ChannelParticipantsSearch{Q: query},
		Offset:  0,
		Limit:   searchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("search participants of channel %d: %w", channelID, classify(err))
	}

	participants, ok := res.(*tg.ChannelsChannelParticipants)
	if !ok {
		return nil, nil
	}

	users := usersByID(participants.Users)
	members := make([]domain.User, 0, len(participants.Participants))
	for _, p := range participants.Participants {
		userID, ok := channelParticipantUserID(p)
		if !ok {
			continue
		}
		if user, ok := users[userID]; ok {
			members = append(members, FromMTProtoUser(user))
		}
	}

	return members, nil
}

func (d *Directory) channelAccessHash(ctx context.Context, api *tg.Client, channelID int64) (int64, error) {
	d.hashMux.RLock()
	hash, ok := d.accessHashes[channelID]
	d.hashMux.RUnlock()
	if ok {
		return hash, nil
	}

	// Bot sessions may ask for a channel with a zero access hash to learn the real one
	chats, err := api.ChannelsGetChannels(ctx, []tg.InputChannelClass{
		&tg.InputChannel{ChannelID: channelID},
	})
	if err != nil {
		return 0, fmt.Errorf("get channel %d: %w", channelID, classify(err))
	}

	for _, chat := range chats.GetChats() {
		channel, ok := chat.(*tg.Channel)
		if !ok || channel.ID != channelID {
			continue
		}
		d.hashMux.Lock()
		d.accessHashes[channelID] = channel.AccessHash
		d.hashMux.Unlock()
		return channel.AccessHash, nil
	}

	return 0, fmt.Errorf("channel %d is not accessible: %w", channelID, domain.ErrUserNotFound)
}

func (d *Directory) searchBasicGroup(ctx context.Context, chatID int64, query string) ([]domain.User, error) {
	api, err := d.rpc()
	if err != nil {
		return nil, err
	}

	full, err := api.MessagesGetFullChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get full chat %d: %w", chatID, classify(err))
	}

	chatFull, ok := full.FullChat.(*tg.ChatFull)
	if !ok {
		return nil, nil
	}
	participants, ok := chatFull.Participants.(*tg.ChatParticipants)
	if !ok {
		// Member list is hidden from us
		return nil, nil
	}

	// Basic groups have no server-side search, match on the display name here
	needle := strings.ToLower(strings.TrimSpace(query))
	users := usersByID(full.Users)
	var members []domain.User
	for _, p := range participants.Participants {
		user, ok := users[p.GetUserID()]
		if !ok {
			continue
		}
		member := FromMTProtoUser(user)
		if strings.Contains(strings.ToLower(member.FullName()), needle) {
			members = append(members, member)
		}
	}

	return members, nil
}

func (d *Directory) rpc() (*tg.Client, error) {
	api := d.api()
	if api == nil {
		return nil, ErrNotConnected
	}
	return api, nil
}

func channelParticipantUserID(p tg.ChannelParticipantClass) (int64, bool) {
	switch v := p.(type) {
	case *tg.ChannelParticipant:
		return v.UserID, true
	case *tg.ChannelParticipantSelf:
		return v.UserID, true
	case *tg.ChannelParticipantCreator:
		return v.UserID, true
	case *tg.ChannelParticipantAdmin:
		return v.UserID, true
	default:
		// Banned and left participants are not members
		return 0, false
	}
}

// classify maps gotd errors onto lookup errors
func classify(err error) error {
	if wait, ok := tgerr.AsFloodWait(err); ok {
		return &domain.FloodWaitError{Wait: wait}
	}
	if tgerr.Is(err, "USERNAME_NOT_OCCUPIED", "USERNAME_INVALID") {
		return fmt.Errorf("%w: %v", domain.ErrUserNotFound, err)
	}
	if rpcErr, ok := tgerr.As(err); ok {
		return fmt.Errorf("%w: %s", domain.ErrLookupRejected, rpcErr.Type)
	}
	return err
}
