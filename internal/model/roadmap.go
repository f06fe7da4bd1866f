package model

import (
	"errors"
	"time"
)

// Roadmap is a learning plan owned by its challenger.
type Roadmap struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"challenger"`
	Title     string    `db:"title" json:"title"`
	Overview  string    `db:"overview" json:"overview"`
	IsPublic  bool      `db:"is_public" json:"is_public"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Author *ProfileSummary `json:"profile,omitempty"` // Joined field
}

// Step is one ordered item inside a roadmap.
type Step struct {
	ID          string    `db:"id" json:"id"`
	RoadmapID   string    `db:"roadmap_id" json:"roadmap"`
	ToLearn     string    `db:"to_learn" json:"to_learn"`
	IsCompleted bool      `db:"is_completed" json:"is_completed"`
	Order       int       `db:"ord" json:"order"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Lookback is a retrospective note attached to a step.
type Lookback struct {
	ID        string    `db:"id" json:"id"`
	StepID    string    `db:"step_id" json:"step"`
	Learned   string    `db:"learned" json:"learned"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CreateRoadmapRequest is the request body for creating or updating a roadmap.
type CreateRoadmapRequest struct {
	Title    string `json:"title"`
	Overview string `json:"overview"`
	IsPublic *bool  `json:"is_public"`
}

// CreateStepRequest is the request body for creating or updating a step.
type CreateStepRequest struct {
	RoadmapID   string `json:"roadmap"`
	ToLearn     string `json:"to_learn"`
	IsCompleted *bool  `json:"is_completed"`
}

// ChangeStepOrderRequest swaps the positions of two steps.
type ChangeStepOrderRequest struct {
	StepID      string `json:"step"`
	OtherStepID string `json:"other_step"`
}

// CreateLookbackRequest is the request body for creating or updating a lookback.
type CreateLookbackRequest struct {
	StepID  string `json:"step"`
	Learned string `json:"learned"`
}

// RoadmapListResponse is the paginated roadmap list response.
type RoadmapListResponse struct {
	Roadmaps   []Roadmap `json:"roadmaps"`
	NextCursor *string   `json:"next_cursor,omitempty"`
	HasMore    bool      `json:"has_more"`
}

// Roadmap errors
var (
	ErrRoadmapNotFound  = errors.New("roadmap not found")
	ErrStepNotFound     = errors.New("step not found")
	ErrLookbackNotFound = errors.New("lookback not found")
	ErrNotRoadmapOwner  = errors.New("not the owner of this roadmap")
	ErrTitleRequired    = errors.New("roadmap title is required")
	ErrToLearnRequired  = errors.New("step to_learn is required")
	ErrLearnedRequired  = errors.New("lookback learned is required")
	ErrStepsNotSiblings = errors.New("steps belong to different roadmaps")
)
