package eligibility

import "context"

// RuleChangeAction describes what happened to a rule
type RuleChangeAction string

const (
	RuleChangeCreated  RuleChangeAction = "created"
	RuleChangeUpdated  RuleChangeAction = "updated"
	RuleChangeDeleted  RuleChangeAction = "deleted"
	RuleChangeReloaded RuleChangeAction = "reloaded"
)

// Rule kinds carried in change messages
const (
	RuleKindBrand       = "brand"
	RuleKindKeyword     = "keyword"
	RuleKindRestriction = "restriction"
	RuleKindAll         = "all"
)

// RuleChangeMessage tells other instances that the rule tables changed.
// Origin identifies the publishing instance so it can ignore its own echo.
type RuleChangeMessage struct {
	Action    RuleChangeAction `json:"action"`
	Kind      string           `json:"kind"`
	RuleID    string           `json:"rule_id,omitempty"`
	Origin    string           `json:"origin"`
	Version   uint64           `json:"version"`
	Timestamp int64            `json:"timestamp"`
}

// RuleChangeNotifier fans rule changes out to every running instance
type RuleChangeNotifier interface {
	// Publish sends a change message to all subscribers
	Publish(ctx context.Context, msg RuleChangeMessage) error

	// Subscribe blocks, invoking callback for each message, until ctx is
	// cancelled or Close is called
	Subscribe(ctx context.Context, callback func(msg RuleChangeMessage)) error

	// Close releases the notifier's resources
	Close() error
}
