package broadcast

import "strings"

// Message is one event fanned out to websocket subscribers. Keys hold the
// topic-key values the variant's topic patterns reference; Payload is the
// variant-specific body serialized to clients.
type Message struct {
	Variant string            `json:"type"`
	Keys    map[string]string `json:"-"`
	Payload any               `json:"payload"`
}

// variantTopics declares, per message variant, the topic patterns it
// publishes to. Placeholders like {skill} are expanded from Message.Keys by
// the bus; a pattern whose key is absent is skipped. This is a table, not
// dispatch logic: adding a variant is one line.
var variantTopics = map[string][]string{
	"Experience":        {"experience", "experience:{skill}"},
	"TotalExperience":   {"experience", "total_experience", "total_experience:{user}"},
	"Level":             {"level", "level:{skill}"},
	"TotalLevel":        {"total_level"},
	"ExperiencePerHour": {"experience_per_hour"},
	"PlayerState":       {"player_state", "player_state:{user}"},
	"TimePlayed":        {"time_played", "time_played:{user}"},
	"ClaimLocalState":   {"claim_local_state", "claim_local_state:{claim}"},
	"MobileEntityState": {"mobile_entity_state", "mobile_entity_state:{entity}"},
	"MovedIntoClaim":    {"claim_membership", "claim_membership:{claim}"},
	"MovedOutOfClaim":   {"claim_membership", "claim_membership:{claim}"},
	"TravelerTaskState": {"traveler_task", "traveler_task:{user}"},
	"ActionState":       {"action_state", "action_state:{entity}"},
	"InventoryChanged":  {"inventory", "inventory:{entity}"},
}

// Topics expands the variant's topic patterns with the message keys.
func (m Message) Topics() []string {
	patterns, ok := variantTopics[m.Variant]
	if !ok {
		return nil
	}

	topics := make([]string, 0, len(patterns))
	for _, p := range patterns {
		topic, ok := expand(p, m.Keys)
		if !ok {
			continue
		}
		topics = append(topics, topic)
	}
	return topics
}

func expand(pattern string, keys map[string]string) (string, bool) {
	start := strings.IndexByte(pattern, '{')
	if start == -1 {
		return pattern, true
	}
	end := strings.IndexByte(pattern, '}')
	if end < start {
		return "", false
	}
	val, ok := keys[pattern[start+1:end]]
	if !ok || val == "" {
		return "", false
	}
	return pattern[:start] + val + pattern[end+1:], true
}
