package replicator

// Stage names the orchestrator's strictly sequential states.
type Stage string

const (
	StagePending    Stage = "pending"
	StageValidate   Stage = "validate"
	StageExtract    Stage = "extract"
	StageSanitize   Stage = "sanitize"
	StageRoles      Stage = "roles"
	StageCategories Stage = "categories"
	StageChannels   Stage = "channels"
	StageEmojis     Stage = "emojis"
	StageStickers   Stage = "stickers"
	StageDone       Stage = "done"
)

// Outcome is the terminal verdict of a run. A run ends in exactly one
// of success, fatal or cancelled; entity-level failures alone never
// change the verdict unless strict mode is on.
type Outcome string

const (
	OutcomeRunning   Outcome = "running"
	OutcomeSuccess   Outcome = "success"
	OutcomeFatal     Outcome = "fatal"
	OutcomeCancelled Outcome = "cancelled"
)

// Entity kinds and per-entity results for the structured report.
const (
	KindRole     = "role"
	KindCategory = "category"
	KindChannel  = "channel"
	KindEmoji    = "emoji"
	KindSticker  = "sticker"
)

const (
	EntityCreated = "created"
	EntitySkipped = "skipped"
	EntityFailed  = "failed"
)

// EntityReport records what happened to one source entity during
// recreation. The run's terminal status deliberately hides these;
// callers that care consume the report.
type EntityReport struct {
	Kind     string `json:"kind"`
	SourceID string `json:"source_id"`
	Name     string `json:"name"`
	Outcome  string `json:"outcome"`
	Reason   string `json:"reason,omitempty"`
}

// Status is the observer-facing view of a run. Reading it never blocks
// the run's forward progress.
type Status struct {
	Stage   Stage   `json:"stage"`
	Done    bool    `json:"done"`
	Outcome Outcome `json:"outcome"`
	Message string  `json:"message,omitempty"`
}
