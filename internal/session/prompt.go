package session

import "fmt"

// ConfirmationPrompt is the structured payload an agent-facing caller
// renders as a choice before an identity-scoped action may run. The
// selected value is resubmitted as a profile.confirm call.
type ConfirmationPrompt struct {
	Type              string         `json:"type"`
	ActiveProfile     string         `json:"active_profile"`
	AvailableProfiles []string       `json:"available_profiles"`
	Question          string         `json:"question"`
	Options           []PromptOption `json:"options"`
}

// PromptOption is one selectable profile in a ConfirmationPrompt.
type PromptOption struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

func newConfirmationPrompt(active string, available []string) *ConfirmationPrompt {
	prompt := &ConfirmationPrompt{
		Type:              "profile_confirmation",
		ActiveProfile:     active,
		AvailableProfiles: available,
		Question: fmt.Sprintf(
			"This action uses the %q account. Confirm the profile to use:", active),
	}

	seen := false
	for _, name := range available {
		opt := PromptOption{
			Label:       name,
			Value:       name,
			Description: fmt.Sprintf("Use the %q profile", name),
		}
		if name == active {
			opt.Label = name + " (current)"
			opt.Description = fmt.Sprintf("Keep using the %q profile", name)
			seen = true
		}
		prompt.Options = append(prompt.Options, opt)
	}

	// The active profile may have no file yet (fresh install); it still
	// has to be selectable.
	if !seen {
		prompt.Options = append([]PromptOption{{
			Label:       active + " (current)",
			Value:       active,
			Description: fmt.Sprintf("Keep using the %q profile", active),
		}}, prompt.Options...)
	}

	return prompt
}
