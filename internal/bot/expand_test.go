package bot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nextlevelbuilder/slackadder/internal/groups"
	"github.com/nextlevelbuilder/slackadder/internal/slack"
)

// writeGroupsFile marshals the given definitions to a temp file and loads
// them back through the groups package.
func writeGroupsFile(t *testing.T, defs map[string]any) *groups.Definitions {
	t.Helper()
	data, err := json.Marshal(defs)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "channel_groups.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	loaded, err := groups.Load(path)
	if err != nil {
		t.Fatalf("loading groups file: %v", err)
	}
	return loaded
}

func newTestExpander(api *fakeAPI) *Expander {
	return NewExpander(NewChannelResolver(api, NewNameCache()))
}

// TestExpander_GroupsAndChannels verifies mixing group names with direct
// channel references, preserving first-seen order across the token list.
func TestExpander_GroupsAndChannels(t *testing.T) {
	api := newFakeAPI()
	api.pages = [][]slack.Conversation{{
		{ID: "C11111111", Name: "alpha"},
		{ID: "C22222222", Name: "beta"},
	}}
	defs := writeGroupsFile(t, map[string]any{
		"customers": []string{"alpha", "C33333333"},
	})

	set := newTestExpander(api).Expand(context.Background(),
		[]string{"customers", "<#C44444444>", "beta"}, defs)

	if msg := set.ErrorText(); msg != "" {
		t.Fatalf("unexpected error text: %q", msg)
	}
	want := []string{"C11111111", "C33333333", "C44444444", "C22222222"}
	if !reflect.DeepEqual(set.Channels, want) {
		t.Errorf("channels = %v, want %v", set.Channels, want)
	}
}

// TestExpander_Deduplicates verifies that a channel reachable both directly
// and through a group appears once, keeping its first position.
func TestExpander_Deduplicates(t *testing.T) {
	api := newFakeAPI()
	defs := writeGroupsFile(t, map[string]any{
		"team": []string{"C11111111", "C22222222"},
	})

	set := newTestExpander(api).Expand(context.Background(),
		[]string{"C22222222", "team", "c11111111"}, defs)

	want := []string{"C22222222", "C11111111"}
	if !reflect.DeepEqual(set.Channels, want) {
		t.Errorf("channels = %v, want %v", set.Channels, want)
	}
}

// TestExpander_RepeatedGroupExpandedOnce verifies the idempotence of group
// tokens: repeating a group changes neither the channels nor the errors.
func TestExpander_RepeatedGroupExpandedOnce(t *testing.T) {
	api := newFakeAPI()
	defs := writeGroupsFile(t, map[string]any{
		"team": []string{"C11111111", "missing-channel"},
	})

	set := newTestExpander(api).Expand(context.Background(),
		[]string{"team", "team", "TEAM"}, defs)

	if !reflect.DeepEqual(set.Channels, []string{"C11111111"}) {
		t.Errorf("channels = %v, want [C11111111]", set.Channels)
	}
	if len(set.MissingInGroup) != 1 {
		t.Fatalf("MissingInGroup = %v, want exactly one entry", set.MissingInGroup)
	}
	if want := "team -> missing-channel"; set.MissingInGroup[0] != want {
		t.Errorf("MissingInGroup[0] = %q, want %q", set.MissingInGroup[0], want)
	}
}

// TestExpander_UnknownTokens verifies unknown-token collection and
// deduplication.
func TestExpander_UnknownTokens(t *testing.T) {
	api := newFakeAPI()
	defs := writeGroupsFile(t, map[string]any{})

	set := newTestExpander(api).Expand(context.Background(),
		[]string{"nope", "nope", "also-nope"}, defs)

	if len(set.Channels) != 0 {
		t.Errorf("channels = %v, want none", set.Channels)
	}
	if !reflect.DeepEqual(set.Unknown, []string{"nope", "also-nope"}) {
		t.Errorf("unknown = %v, want [nope also-nope]", set.Unknown)
	}
	if !strings.Contains(set.ErrorText(), "Unknown channel or channel group: also-nope, nope") {
		t.Errorf("error text = %q", set.ErrorText())
	}
}

// TestExpander_EmptyGroup verifies that a group whose members all fail to
// resolve is reported as empty, not silently dropped.
func TestExpander_EmptyGroup(t *testing.T) {
	api := newFakeAPI()
	defs := writeGroupsFile(t, map[string]any{
		"ghosts": []string{"gone", "also-gone"},
	})

	set := newTestExpander(api).Expand(context.Background(), []string{"ghosts"}, defs)

	if len(set.Channels) != 0 {
		t.Errorf("channels = %v, want none", set.Channels)
	}
	if !reflect.DeepEqual(set.EmptyGroups, []string{"ghosts"}) {
		t.Errorf("EmptyGroups = %v, want [ghosts]", set.EmptyGroups)
	}
	if !strings.Contains(set.ErrorText(), "Channel groups without any valid channels: ghosts") {
		t.Errorf("error text = %q", set.ErrorText())
	}
}

// TestResolvedSet_ErrorText_NoTokens verifies the prompt shown when nothing
// was requested at all.
func TestResolvedSet_ErrorText_NoTokens(t *testing.T) {
	set := &ResolvedSet{}
	if got := set.ErrorText(); got != msgNameChannels {
		t.Errorf("ErrorText() = %q, want %q", got, msgNameChannels)
	}
}

// TestResolvedSet_ErrorText_Clean verifies that a resolved set produces no
// error text.
func TestResolvedSet_ErrorText_Clean(t *testing.T) {
	set := &ResolvedSet{Channels: []string{"C11111111"}}
	if got := set.ErrorText(); got != "" {
		t.Errorf("ErrorText() = %q, want empty", got)
	}
}
