package api

import "strings"

// AgentAuto lets the backend route the question.
const AgentAuto = "auto"

// Agent describes one entry of the agent selector.
type Agent struct {
	Key  string
	Desc string
}

var Agents = []Agent{
	{AgentAuto, "Let the backend pick an agent"},
	{"text2sql", "Numbers, reports and KPIs answered with SQL"},
	{"policy", "Internal rules, processes and HR policy"},
	{"research", "Research summaries and comparisons"},
	{"general", "Anything else"},
}

// ValidAgent reports whether key names a known agent.
func ValidAgent(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, a := range Agents {
		if a.Key == key {
			return true
		}
	}
	return false
}

// ForceAgent maps a selector value to the force_agent request field.
// The automatic option and the empty string map to nil.
func ForceAgent(key string) *string {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" || key == AgentAuto {
		return nil
	}
	return &key
}

// NewChatRequest builds the request body for one ask-action.
func NewChatRequest(message, agent string) ChatRequest {
	return ChatRequest{Message: message, ForceAgent: ForceAgent(agent)}
}
