// Package events defines module change events and the publishers that distribute them.
package events

// ModuleChangedEvent is emitted after properties of a settings module were written.
// Nodes reload the module when they receive an event from another origin.
type ModuleChangedEvent struct {
	Module    string   `json:"module"`
	Keys      []string `json:"keys"`
	Removed   bool     `json:"removed,omitempty"`
	Origin    string   `json:"origin"`
	Timestamp string   `json:"timestamp"`
}
