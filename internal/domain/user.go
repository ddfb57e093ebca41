package domain

import (
	"strconv"
	"strings"
)

// User is a Telegram user as seen by the bot
type User struct {
	ID           int64
	IsBot        bool
	FirstName    string
	LastName     string
	Username     string
	LanguageCode string
}

// FullName returns "FirstName LastName" without dangling spaces
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Mention returns a short human-readable reference to the user.
// Priority: @username > full name > id
func (u User) Mention() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if name := u.FullName(); name != "" {
		return name
	}
	return "id" + strconv.FormatInt(u.ID, 10)
}

// LookupQuery holds the loose hints a user can be resolved by
type LookupQuery struct {
	Username string
	Fullname string
	ChatID   int64 // Bot API chat id, 0 when there is no chat scope
}
