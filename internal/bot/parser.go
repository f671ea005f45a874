package bot

import (
	"errors"
	"strings"
)

// ErrEmptyCommand means the mention carried no command text.
var ErrEmptyCommand = errors.New("No command found after mention")

// ParseCommand strips the leading self-mention from a message and splits it
// into a lowercased command keyword and its argument tokens. Argument case
// and order are preserved.
func ParseCommand(text, selfID string) (string, []string, error) {
	cleaned := strings.Replace(text, "<@"+selfID+">", "", 1)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", nil, ErrEmptyCommand
	}

	parts := strings.Fields(cleaned)
	return strings.ToLower(parts[0]), parts[1:], nil
}
