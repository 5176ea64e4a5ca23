package domain

import (
	"fmt"
	"strings"
)

type ActionType string

const (
	ActionBan   ActionType = "ban"
	ActionUnban ActionType = "unban"
	ActionStart ActionType = "start"
	ActionStop  ActionType = "stop"
)

// ActionTypes lists the actions fail2ban can hand us, in the order shown in usage text.
var ActionTypes = []ActionType{ActionBan, ActionUnban, ActionStart, ActionStop}

// ParseActionType accepts exactly one of the known action names.
func ParseActionType(s string) (ActionType, error) {
	for _, a := range ActionTypes {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("invalid action %q (choose from %s)", s, strings.Join(ActionNames(), ", "))
}

// ActionNames returns the accepted action names.
func ActionNames() []string {
	names := make([]string, len(ActionTypes))
	for i, a := range ActionTypes {
		names[i] = string(a)
	}
	return names
}

// ActionRequest is everything one fail2ban action invocation tells us.
type ActionRequest struct {
	WebhookPath string     // Slack webhook path segment (T000/B000/XXXX), treated as a secret
	Action      ActionType // ban, unban, start, stop
	Jail        string     // fail2ban jail name (ex: sshd)
	IP          string     // offending address, empty for start/stop
	Failures    int        // failure count reported by fail2ban
}

// Validate checks the fields every action needs.
func (r ActionRequest) Validate() error {
	if strings.TrimSpace(r.WebhookPath) == "" {
		return fmt.Errorf("webhook is required")
	}
	if _, err := ParseActionType(string(r.Action)); err != nil {
		return err
	}
	if strings.TrimSpace(r.Jail) == "" {
		return fmt.Errorf("jail is required")
	}
	return nil
}
