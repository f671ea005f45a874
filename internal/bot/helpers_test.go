package bot

import (
	"context"
	"sync"

	"github.com/nextlevelbuilder/slackadder/internal/slack"
)

// fakeAPI is a scriptable in-memory Slack directory. Zero values behave
// like a healthy workspace with no channels and full-member users.
type fakeAPI struct {
	mu sync.Mutex

	users    map[string]slack.User         // keyed by user ID
	channels map[string]slack.Conversation // keyed by channel ID
	pages    [][]slack.Conversation        // conversations.list pages, in order

	usersInfoErr error
	chanInfoErr  error
	listErr      error
	joinErr      map[string]error // keyed by channel ID
	inviteErr    map[string]error // keyed by channel ID

	usersInfoCalls int
	chanInfoCalls  int
	listCalls      int
	joinCalls      []string
	inviteCalls    []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		users:     map[string]slack.User{},
		channels:  map[string]slack.Conversation{},
		joinErr:   map[string]error{},
		inviteErr: map[string]error{},
	}
}

func (f *fakeAPI) UsersInfo(_ context.Context, userID string) (*slack.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usersInfoCalls++
	if f.usersInfoErr != nil {
		return nil, f.usersInfoErr
	}
	if u, ok := f.users[userID]; ok {
		return &u, nil
	}
	return &slack.User{ID: userID}, nil
}

func (f *fakeAPI) ConversationsInfo(_ context.Context, channelID string) (*slack.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chanInfoCalls++
	if f.chanInfoErr != nil {
		return nil, f.chanInfoErr
	}
	if ch, ok := f.channels[channelID]; ok {
		return &ch, nil
	}
	return &slack.Conversation{ID: channelID}, nil
}

func (f *fakeAPI) ConversationsList(_ context.Context, cursor string, _ int) (*slack.ConversationPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}

	idx := 0
	if cursor != "" {
		idx = int(cursor[len(cursor)-1] - '0')
	}
	if idx >= len(f.pages) {
		return &slack.ConversationPage{}, nil
	}

	page := &slack.ConversationPage{Channels: f.pages[idx]}
	if idx+1 < len(f.pages) {
		page.NextCursor = "cursor" + string(rune('0'+idx+1))
	}
	return page, nil
}

func (f *fakeAPI) ConversationsJoin(_ context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joinCalls = append(f.joinCalls, channelID)
	return f.joinErr[channelID]
}

func (f *fakeAPI) ConversationsInvite(_ context.Context, channelID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inviteCalls = append(f.inviteCalls, channelID)
	return f.inviteErr[channelID]
}

// fakeReplier records every posted message.
type fakeReplier struct {
	mu    sync.Mutex
	posts []postedMessage
	err   error
}

type postedMessage struct {
	channelID string
	threadTS  string
	text      string
}

func (r *fakeReplier) PostMessage(_ context.Context, channelID, threadTS, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.posts = append(r.posts, postedMessage{channelID: channelID, threadTS: threadTS, text: text})
	return nil
}

func (r *fakeReplier) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.posts))
	for i, p := range r.posts {
		out[i] = p.text
	}
	return out
}

func apiError(method, code string) *slack.APIError {
	return &slack.APIError{Method: method, Code: code, StatusCode: 200}
}
