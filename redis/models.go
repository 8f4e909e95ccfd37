package redis

import "github.com/tradepost/messaging/api"

// A participant holds a cached public profile, stored as a Redis hash.
type participant struct {
	ID        string `redis:"id"`
	Username  string `redis:"username"`
	AvatarURL string `redis:"avatar_url"`
}

func (p participant) APIParticipant() api.Participant {
	return api.Participant{
		ID:        p.ID,
		Username:  p.Username,
		AvatarURL: p.AvatarURL,
	}
}
