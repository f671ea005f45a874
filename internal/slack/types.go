package slack

// apiResponse is the envelope every Web API method shares.
type apiResponse struct {
	OK               bool             `json:"ok"`
	Error            string           `json:"error,omitempty"`
	ResponseMetadata responseMetadata `json:"response_metadata"`
}

func (r apiResponse) status() (bool, string) { return r.OK, r.Error }

type responseMetadata struct {
	NextCursor string `json:"next_cursor"`
}

// AuthIdentity is the result of auth.test: the bot's own identity.
type AuthIdentity struct {
	UserID       string `json:"user_id"`
	TeamID       string `json:"team_id"`
	EnterpriseID string `json:"enterprise_id"`
	BotID        string `json:"bot_id"`
	Team         string `json:"team"`
	URL          string `json:"url"`
}

// User carries the subset of users.info needed for authorization checks.
type User struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	IsRestricted      bool   `json:"is_restricted"`
	IsUltraRestricted bool   `json:"is_ultra_restricted"`
	IsStranger        bool   `json:"is_stranger"`
}

// Conversation carries the subset of conversations.info/list needed for
// name resolution and shared-channel checks.
type Conversation struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsShared    bool   `json:"is_shared"`
	IsExtShared bool   `json:"is_ext_shared"`
	IsOrgShared bool   `json:"is_org_shared"`
}

// ConversationPage is one page of conversations.list.
type ConversationPage struct {
	Channels   []Conversation
	NextCursor string
}

type authTestResponse struct {
	apiResponse
	AuthIdentity
}

type usersInfoResponse struct {
	apiResponse
	User User `json:"user"`
}

type conversationsInfoResponse struct {
	apiResponse
	Channel Conversation `json:"channel"`
}

type conversationsListResponse struct {
	apiResponse
	Channels []Conversation `json:"channels"`
}
