package interval

import "context"

// EntityType identifies the kind of record touched by a store change.
type EntityType string

// Entity kinds recorded in transaction changes.
const (
	// EntityVideo identifies video metadata records.
	EntityVideo EntityType = "video"
	// EntityBlock identifies per-video annotation blocks.
	EntityBlock EntityType = "block"
	// EntityInterval identifies a single interval within a channel.
	EntityInterval EntityType = "interval"
)

// ChangeAction indicates the type of modification performed.
type ChangeAction string

// Change actions enumerate the mutations recorded for rule evaluation.
const (
	ChangeCreate ChangeAction = "create"
	ChangeUpdate ChangeAction = "update"
	ChangeDelete ChangeAction = "delete"
	ChangeAdd    ChangeAction = "add"
	ChangeRemove ChangeAction = "remove"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn records a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// IntervalChange snapshots an interval mutation for rule evaluation.
type IntervalChange struct {
	VideoID int64
	Channel string
	Bounds  Bounds
	Data    Payload
}

// Change describes a mutation applied during a store transaction.
type Change struct {
	Entity EntityType
	Action ChangeAction
	Before any
	After  any
}

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	VideoID  int64
	Channel  string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking reports whether the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}

// RuleView provides read-only access to transactional state for rules.
type RuleView interface {
	ListVideos() []VideoMeta
	ListBlocks() []*Block
	FindVideo(id int64) (VideoMeta, bool)
	FindBlock(videoID int64) (*Block, bool)
}

// Rule defines an evaluation executed within a transaction boundary.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error)
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Evaluate executes all registered rules and aggregates their results.
func (e *RulesEngine) Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error) {
	var combined Result
	for _, rule := range e.rules {
		res, err := rule.Evaluate(ctx, view, changes)
		if err != nil {
			return Result{}, err
		}
		combined.Merge(res)
	}
	return combined, nil
}
