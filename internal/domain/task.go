package domain

import "time"

// TaskStatus enumerates background task lifecycle states. The machine is
// strictly forward-only: queued -> running -> completed | failed. Terminal
// tasks leave the live set only through dismissal.
type TaskStatus string

const (
	TaskStatusQueued    TaskStatus = "queued"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Task is one unit of queued product-generation work, keyed by product id
// (at most one live task per product).
type Task struct {
	ID           string            `json:"id"`
	ProductID    string            `json:"product_id"`
	SourceImages []string          `json:"-"`
	Status       TaskStatus        `json:"status"`
	Progress     int               `json:"progress"`
	Message      string            `json:"message"`
	Result       *GenerationResult `json:"result,omitempty"`
	Error        string            `json:"error,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// GenerationResult is the complete output bundle of one pipeline run. It is
// created once per successful run, persisted immediately, never mutated.
type GenerationResult struct {
	ProductImages []string           `json:"product_images"`
	EffectImages  []string           `json:"effect_images"`
	GridImages    []string           `json:"grid_images"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Price         float64            `json:"price"`
	Category      string             `json:"category"`
	Attributes    []ProductAttribute `json:"attributes"`
}
