package domain

// Scenario is a server-supplied role-play topic. The catalog is fetched once
// when the practice screen starts and is read-only afterwards.
type Scenario struct {
	ID    string
	Title string
	Goal  string
	Steps []string
}

// DefaultScenarioID is preselected when the user has not picked a scenario.
const DefaultScenarioID = "free"

// scenarioEmojis decorates known scenario ids in lists and headers
var scenarioEmojis = map[string]string{
	"restaurant":    "🍽️",
	"shopping":      "👕",
	"hotel":         "🏨",
	"job_interview": "💼",
	"free":          "🗣️",
}

// ScenarioEmoji returns a decorative emoji for a scenario id
func ScenarioEmoji(id string) string {
	if e, ok := scenarioEmojis[id]; ok {
		return e
	}
	return "💬"
}
