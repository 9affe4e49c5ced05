package mqtt

import "strings"

// DefaultTopicPrefix is used when the configured prefix is empty.
const DefaultTopicPrefix = "finger"

// Topics provides builders for finger MQTT topics under a configurable
// prefix. Using these helpers ensures consistent topic naming across the
// codebase.
//
//	topics := mqtt.NewTopics("lab/finger")
//	topics.Command("toggle") // "lab/finger/command/toggle"
type Topics struct {
	prefix string
}

// NewTopics returns topic builders rooted at prefix. Leading and trailing
// slashes are trimmed.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the topic root.
func (t Topics) Prefix() string {
	if t.prefix == "" {
		return DefaultTopicPrefix
	}
	return t.prefix
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the online/offline status topic (retained, LWT).
//
// Example: finger/system/status
func (t Topics) SystemStatus() string {
	return t.Prefix() + "/system/status"
}

// =============================================================================
// Command Topics
// =============================================================================

// Command returns the topic on which remote commands of kind are received.
//
// Example: finger/command/toggle
func (t Topics) Command(kind string) string {
	return t.Prefix() + "/command/" + kind
}

// AllCommands returns a pattern matching every command topic.
//
// Pattern: finger/command/+
func (t Topics) AllCommands() string {
	return t.Prefix() + "/command/+"
}

// CommandKind extracts the command kind from a topic matched by AllCommands.
func (t Topics) CommandKind(topic string) (string, bool) {
	kind, ok := strings.CutPrefix(topic, t.Prefix()+"/command/")
	if !ok || kind == "" || strings.Contains(kind, "/") {
		return "", false
	}
	return kind, true
}

// =============================================================================
// State Topics
// =============================================================================

// RunState returns the orchestrator run state topic.
//
// Example: finger/state
func (t Topics) RunState() string {
	return t.Prefix() + "/state"
}

// Bots returns the topic carrying the full bot list snapshot.
//
// Example: finger/bots
func (t Topics) Bots() string {
	return t.Prefix() + "/bots"
}

// InstanceTick returns the topic for tick results of one instance. Topic
// separators and wildcards in the id become underscores, so a nested bot
// such as "wow/rally" still publishes on a single level.
//
// Example: finger/instance/wow-10001/tick
func (t Topics) InstanceTick(instanceID string) string {
	return t.Prefix() + "/instance/" + topicSegment(instanceID) + "/tick"
}

var segmentReplacer = strings.NewReplacer("/", "_", "+", "_", "#", "_")

func topicSegment(s string) string {
	return segmentReplacer.Replace(s)
}
