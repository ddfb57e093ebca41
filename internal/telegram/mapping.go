package telegram

import (
	"github.com/gotd/td/tg"
	tele "gopkg.in/telebot.v3"

	"whoisbot/internal/domain"
)

// FromMTProtoUser projects an MTProto user into the bot's user record
func FromMTProtoUser(u *tg.User) domain.User {
	return domain.User{
		ID:           u.ID,
		IsBot:        u.Bot,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Username:     u.Username,
		LanguageCode: u.LangCode,
	}
}

// FromBotUser projects a Bot API user into the bot's user record
func FromBotUser(u *tele.User) domain.User {
	return domain.User{
		ID:           u.ID,
		IsBot:        u.IsBot,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Username:     u.Username,
		LanguageCode: u.LanguageCode,
	}
}

// usersByID indexes the full user objects that accompany most RPC results
func usersByID(users []tg.UserClass) map[int64]*tg.User {
	index := make(map[int64]*tg.User, len(users))
	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			index[user.ID] = user
		}
	}
	return index
}
