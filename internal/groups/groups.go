// Package groups loads named channel-group definitions from a JSON file.
// Definitions are re-read on every command so edits take effect without a
// restart.
package groups

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Group is one named list of channel references.
type Group struct {
	// DisplayName preserves the case the group was defined with.
	DisplayName string
	// Channels are raw channel references: IDs, <#…> mentions, or names.
	Channels []string
	// Description is optional free text shown by the list command.
	Description string
}

// Definitions holds all configured groups, keyed case-insensitively.
type Definitions struct {
	groups map[string]Group
}

// Lookup returns the group for a name, matched case-insensitively.
func (d *Definitions) Lookup(name string) (Group, bool) {
	g, ok := d.groups[strings.ToLower(name)]
	return g, ok
}

// Names returns the lowercased group names in sorted order.
func (d *Definitions) Names() []string {
	names := make([]string, 0, len(d.groups))
	for name := range d.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of configured groups.
func (d *Definitions) Len() int { return len(d.groups) }

// Load reads group definitions from path. Each group value is either a flat
// list of channel references or an object {"channels": […], "description": "…"}.
// Malformed entries are dropped with a warning; a group that parses to zero
// channel entries fails the whole load. A missing file yields empty
// definitions.
func Load(path string) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("channel groups file not found, proceeding without groups", "path", path)
			return &Definitions{groups: map[string]Group{}}, nil
		}
		return nil, fmt.Errorf("read channel groups file %q: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("channel groups file %q is not valid JSON: %w", path, err)
	}

	defs := &Definitions{groups: make(map[string]Group, len(raw))}
	for name, rawGroup := range raw {
		key := strings.ToLower(name)

		var (
			channels    []string
			description string
		)

		switch {
		case looksLikeObject(rawGroup):
			var obj struct {
				Channels    []json.RawMessage `json:"channels"`
				Description *string           `json:"description"`
			}
			if err := json.Unmarshal(rawGroup, &obj); err != nil || obj.Channels == nil {
				slog.Warn("channel group ignored: 'channels' is missing or not a list", "group", name)
				continue
			}
			channels = stringifyEntries(obj.Channels)
			if obj.Description != nil {
				description = strings.TrimSpace(*obj.Description)
			}
		case looksLikeList(rawGroup):
			var list []json.RawMessage
			if err := json.Unmarshal(rawGroup, &list); err != nil {
				slog.Warn("channel group ignored: value must be an object or a list", "group", name)
				continue
			}
			channels = stringifyEntries(list)
		default:
			slog.Warn("channel group ignored: value must be an object or a list", "group", name)
			continue
		}

		if len(channels) == 0 {
			return nil, fmt.Errorf("channel group %q in %q has no channel entries", name, path)
		}

		defs.groups[key] = Group{
			DisplayName: name,
			Channels:    channels,
			Description: description,
		}
	}

	return defs, nil
}

func looksLikeObject(raw json.RawMessage) bool {
	return strings.HasPrefix(strings.TrimSpace(string(raw)), "{")
}

func looksLikeList(raw json.RawMessage) bool {
	return strings.HasPrefix(strings.TrimSpace(string(raw)), "[")
}

// stringifyEntries converts raw list entries to strings, dropping empty
// values. Numeric entries are kept as their literal text.
func stringifyEntries(entries []json.RawMessage) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		var s string
		if err := json.Unmarshal(entry, &s); err == nil {
			if s != "" {
				out = append(out, s)
			}
			continue
		}
		var f float64
		if err := json.Unmarshal(entry, &f); err == nil {
			if f != 0 {
				out = append(out, strconv.FormatFloat(f, 'f', -1, 64))
			}
			continue
		}
		// booleans, nulls, nested structures: not channel references
	}
	return out
}
