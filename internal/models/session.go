package models

// UserProfile is the profile returned by the remote API. It is passed through
// untouched; only a few well-known keys are read.
type UserProfile map[string]any

// ID returns the user identifier, or "" when absent
func (p UserProfile) ID() string {
	return p.stringField("id")
}

// Name returns the display name
func (p UserProfile) Name() string {
	return p.stringField("name")
}

// Email returns the e-mail address
func (p UserProfile) Email() string {
	return p.stringField("email")
}

// AvatarURL returns the avatar reference
func (p UserProfile) AvatarURL() string {
	return p.stringField("avatar_url")
}

// Clone returns a shallow copy so callers cannot mutate a published profile
func (p UserProfile) Clone() UserProfile {
	if p == nil {
		return nil
	}
	out := make(UserProfile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func (p UserProfile) stringField(key string) string {
	if p == nil {
		return ""
	}
	if s, ok := p[key].(string); ok {
		return s
	}
	return ""
}

// Session is an authenticated identity. A nil *Session means unauthenticated.
type Session struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// Clone returns a copy safe to hand to subscribers
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	return &Session{Token: s.Token, User: s.User.Clone()}
}

// SessionResponse is the body of POST /sessions
type SessionResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}
