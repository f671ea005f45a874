package bot

import "sync"

// NameCache maps lowercased channel names to canonical channel IDs.
// Populated while paging conversations.list; entries never expire, so a
// channel renamed mid-process keeps its stale mapping until restart.
type NameCache struct {
	mu  sync.Mutex
	ids map[string]string
}

// NewNameCache creates an empty name cache.
func NewNameCache() *NameCache {
	return &NameCache{ids: make(map[string]string)}
}

// Get returns the cached ID for a lowercased channel name.
func (c *NameCache) Get(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.ids[name]
	return id, ok
}

// Put records a name→ID mapping.
func (c *NameCache) Put(name, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[name] = id
}

// UserFlags is the guest-status summary cached per user.
type UserFlags struct {
	Restricted      bool
	UltraRestricted bool
	Stranger        bool
}

// Guest reports whether any restricted flag is set.
func (f UserFlags) Guest() bool {
	return f.Restricted || f.UltraRestricted || f.Stranger
}

// UserFlagCache caches guest flags per user ID for the process lifetime.
type UserFlagCache struct {
	mu    sync.Mutex
	flags map[string]UserFlags
}

// NewUserFlagCache creates an empty user flag cache.
func NewUserFlagCache() *UserFlagCache {
	return &UserFlagCache{flags: make(map[string]UserFlags)}
}

// Get returns the cached flags for a user ID.
func (c *UserFlagCache) Get(userID string) (UserFlags, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.flags[userID]
	return f, ok
}

// Put records a user's flags.
func (c *UserFlagCache) Put(userID string, f UserFlags) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags[userID] = f
}

// ChannelFlags is the shared/external summary cached per channel.
type ChannelFlags struct {
	Shared    bool
	ExtShared bool
	OrgShared bool
}

// External reports whether any shared flag is set.
func (f ChannelFlags) External() bool {
	return f.Shared || f.ExtShared || f.OrgShared
}

// ChannelFlagCache caches shared flags per channel ID for the process
// lifetime.
type ChannelFlagCache struct {
	mu    sync.Mutex
	flags map[string]ChannelFlags
}

// NewChannelFlagCache creates an empty channel flag cache.
func NewChannelFlagCache() *ChannelFlagCache {
	return &ChannelFlagCache{flags: make(map[string]ChannelFlags)}
}

// Get returns the cached flags for a channel ID.
func (c *ChannelFlagCache) Get(channelID string) (ChannelFlags, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.flags[channelID]
	return f, ok
}

// Put records a channel's flags.
func (c *ChannelFlagCache) Put(channelID string, f ChannelFlags) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags[channelID] = f
}
