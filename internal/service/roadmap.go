package service

import (
	"context"
	"strings"

	"waypost/internal/model"
	"waypost/internal/repository"
)

// RoadmapService handles roadmaps, their ordered steps and the
// lookbacks attached to steps. Steps and lookbacks have no owner of
// their own: every mutation is authorized against the enclosing
// roadmap's owner.
type RoadmapService struct {
	roadmapRepo repository.RoadmapRepository
	profileRepo repository.ProfileRepository
}

func NewRoadmapService(roadmapRepo repository.RoadmapRepository, profileRepo repository.ProfileRepository) *RoadmapService {
	return &RoadmapService{
		roadmapRepo: roadmapRepo,
		profileRepo: profileRepo,
	}
}

// Create stores a new roadmap. Roadmaps default to public.
func (s *RoadmapService) Create(ctx context.Context, userID string, req *model.CreateRoadmapRequest) (*model.Roadmap, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, model.ErrTitleRequired
	}

	roadmap := &model.Roadmap{
		UserID:   userID,
		Title:    req.Title,
		Overview: req.Overview,
		IsPublic: true,
	}
	if req.IsPublic != nil {
		roadmap.IsPublic = *req.IsPublic
	}

	if err := s.roadmapRepo.Create(ctx, roadmap); err != nil {
		return nil, err
	}
	return roadmap, nil
}

// Update rewrites the caller's roadmap.
func (s *RoadmapService) Update(ctx context.Context, roadmapID, userID string, req *model.CreateRoadmapRequest) (*model.Roadmap, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, model.ErrTitleRequired
	}

	roadmap, err := s.getOwned(ctx, roadmapID, userID)
	if err != nil {
		return nil, err
	}

	roadmap.Title = req.Title
	roadmap.Overview = req.Overview
	if req.IsPublic != nil {
		roadmap.IsPublic = *req.IsPublic
	}

	if err := s.roadmapRepo.Update(ctx, roadmap); err != nil {
		return nil, err
	}
	return roadmap, nil
}

// Delete removes the caller's roadmap with its steps and lookbacks.
func (s *RoadmapService) Delete(ctx context.Context, roadmapID, userID string) error {
	return s.roadmapRepo.Delete(ctx, roadmapID, userID)
}

// GetByID returns one roadmap with its steps. Private roadmaps are
// visible only to their owner; to anyone else they do not exist.
func (s *RoadmapService) GetByID(ctx context.Context, roadmapID string, viewerID *string) (*model.Roadmap, []model.Step, error) {
	roadmap, err := s.roadmapRepo.GetByID(ctx, roadmapID)
	if err != nil {
		return nil, nil, err
	}
	if !roadmap.IsPublic && (viewerID == nil || *viewerID != roadmap.UserID) {
		return nil, nil, model.ErrRoadmapNotFound
	}

	steps, err := s.roadmapRepo.ListSteps(ctx, roadmapID)
	if err != nil {
		return nil, nil, err
	}
	return roadmap, steps, nil
}

// ListByUser lists a user's roadmaps, newest first.
func (s *RoadmapService) ListByUser(ctx context.Context, userID, cursorRaw string, limit int) (*model.RoadmapListResponse, error) {
	cursor, err := parseCursor(cursorRaw)
	if err != nil {
		return nil, err
	}
	roadmaps, next, err := s.roadmapRepo.ListByUser(ctx, userID, cursor, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.buildList(ctx, roadmaps, encodeCursor(next))
}

// Feed lists roadmaps by the viewer and everyone they follow.
func (s *RoadmapService) Feed(ctx context.Context, viewerID, cursorRaw string, limit int) (*model.RoadmapListResponse, error) {
	cursor, err := parseCursor(cursorRaw)
	if err != nil {
		return nil, err
	}

	authorIDs, err := s.profileRepo.GetFolloweeIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	authorIDs = append(authorIDs, viewerID)

	roadmaps, next, err := s.roadmapRepo.ListByAuthors(ctx, authorIDs, cursor, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.buildList(ctx, roadmaps, encodeCursor(next))
}

// Search lists public roadmaps whose title contains the query.
func (s *RoadmapService) Search(ctx context.Context, query, cursorRaw string, limit int) (*model.RoadmapListResponse, error) {
	cursor, err := parseCursor(cursorRaw)
	if err != nil {
		return nil, err
	}
	roadmaps, next, err := s.roadmapRepo.Search(ctx, query, cursor, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.buildList(ctx, roadmaps, encodeCursor(next))
}

// CreateStep appends a step to the caller's roadmap, taking the next
// free position.
func (s *RoadmapService) CreateStep(ctx context.Context, userID string, req *model.CreateStepRequest) (*model.Step, error) {
	if strings.TrimSpace(req.ToLearn) == "" {
		return nil, model.ErrToLearnRequired
	}
	if _, err := s.getOwned(ctx, req.RoadmapID, userID); err != nil {
		return nil, err
	}

	ord, err := s.roadmapRepo.NextStepOrder(ctx, req.RoadmapID)
	if err != nil {
		return nil, err
	}

	step := &model.Step{
		RoadmapID: req.RoadmapID,
		ToLearn:   req.ToLearn,
		Order:     ord,
	}
	if req.IsCompleted != nil {
		step.IsCompleted = *req.IsCompleted
	}

	if err := s.roadmapRepo.CreateStep(ctx, step); err != nil {
		return nil, err
	}
	return step, nil
}

// UpdateStep rewrites a step in the caller's roadmap.
func (s *RoadmapService) UpdateStep(ctx context.Context, stepID, userID string, req *model.CreateStepRequest) (*model.Step, error) {
	if strings.TrimSpace(req.ToLearn) == "" {
		return nil, model.ErrToLearnRequired
	}

	step, err := s.getOwnedStep(ctx, stepID, userID)
	if err != nil {
		return nil, err
	}

	step.ToLearn = req.ToLearn
	if req.IsCompleted != nil {
		step.IsCompleted = *req.IsCompleted
	}

	if err := s.roadmapRepo.UpdateStep(ctx, step); err != nil {
		return nil, err
	}
	return step, nil
}

// DeleteStep removes a step from the caller's roadmap.
func (s *RoadmapService) DeleteStep(ctx context.Context, stepID, userID string) error {
	if _, err := s.getOwnedStep(ctx, stepID, userID); err != nil {
		return err
	}
	return s.roadmapRepo.DeleteStep(ctx, stepID)
}

// ChangeStepOrder swaps the positions of two steps in the caller's
// roadmap. Steps from different roadmaps cannot trade places.
func (s *RoadmapService) ChangeStepOrder(ctx context.Context, userID string, req *model.ChangeStepOrderRequest) error {
	if _, err := s.getOwnedStep(ctx, req.StepID, userID); err != nil {
		return err
	}
	return s.roadmapRepo.SwapStepOrder(ctx, req.StepID, req.OtherStepID)
}

// CreateLookback attaches a retrospective note to a step in the
// caller's roadmap.
func (s *RoadmapService) CreateLookback(ctx context.Context, userID string, req *model.CreateLookbackRequest) (*model.Lookback, error) {
	if strings.TrimSpace(req.Learned) == "" {
		return nil, model.ErrLearnedRequired
	}
	if _, err := s.getOwnedStep(ctx, req.StepID, userID); err != nil {
		return nil, err
	}

	lookback := &model.Lookback{
		StepID:  req.StepID,
		Learned: req.Learned,
	}
	if err := s.roadmapRepo.CreateLookback(ctx, lookback); err != nil {
		return nil, err
	}
	return lookback, nil
}

// UpdateLookback rewrites a lookback in the caller's roadmap.
func (s *RoadmapService) UpdateLookback(ctx context.Context, lookbackID, userID string, req *model.CreateLookbackRequest) (*model.Lookback, error) {
	if strings.TrimSpace(req.Learned) == "" {
		return nil, model.ErrLearnedRequired
	}

	lookback, err := s.getOwnedLookback(ctx, lookbackID, userID)
	if err != nil {
		return nil, err
	}

	lookback.Learned = req.Learned
	if err := s.roadmapRepo.UpdateLookback(ctx, lookback); err != nil {
		return nil, err
	}
	return lookback, nil
}

// DeleteLookback removes a lookback from the caller's roadmap.
func (s *RoadmapService) DeleteLookback(ctx context.Context, lookbackID, userID string) error {
	if _, err := s.getOwnedLookback(ctx, lookbackID, userID); err != nil {
		return err
	}
	return s.roadmapRepo.DeleteLookback(ctx, lookbackID)
}

// ListLookbacks lists a step's lookbacks, visible to anyone who can see
// the roadmap.
func (s *RoadmapService) ListLookbacks(ctx context.Context, stepID string, viewerID *string) ([]model.Lookback, error) {
	step, err := s.roadmapRepo.GetStep(ctx, stepID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.GetByID(ctx, step.RoadmapID, viewerID); err != nil {
		return nil, err
	}

	lookbacks, err := s.roadmapRepo.ListLookbacks(ctx, stepID)
	if err != nil {
		return nil, err
	}
	if lookbacks == nil {
		lookbacks = []model.Lookback{}
	}
	return lookbacks, nil
}

func (s *RoadmapService) getOwned(ctx context.Context, roadmapID, userID string) (*model.Roadmap, error) {
	roadmap, err := s.roadmapRepo.GetByID(ctx, roadmapID)
	if err != nil {
		return nil, err
	}
	if roadmap.UserID != userID {
		return nil, model.ErrNotRoadmapOwner
	}
	return roadmap, nil
}

func (s *RoadmapService) getOwnedStep(ctx context.Context, stepID, userID string) (*model.Step, error) {
	step, err := s.roadmapRepo.GetStep(ctx, stepID)
	if err != nil {
		return nil, err
	}
	if _, err := s.getOwned(ctx, step.RoadmapID, userID); err != nil {
		return nil, err
	}
	return step, nil
}

func (s *RoadmapService) getOwnedLookback(ctx context.Context, lookbackID, userID string) (*model.Lookback, error) {
	lookback, err := s.roadmapRepo.GetLookback(ctx, lookbackID)
	if err != nil {
		return nil, err
	}
	if _, err := s.getOwnedStep(ctx, lookback.StepID, userID); err != nil {
		return nil, err
	}
	return lookback, nil
}

func (s *RoadmapService) buildList(ctx context.Context, roadmaps []model.Roadmap, next *string) (*model.RoadmapListResponse, error) {
	if len(roadmaps) > 0 {
		authorSet := make(map[string]bool)
		for i := range roadmaps {
			authorSet[roadmaps[i].UserID] = true
		}
		authorIDs := make([]string, 0, len(authorSet))
		for id := range authorSet {
			authorIDs = append(authorIDs, id)
		}

		authors, err := s.profileRepo.GetSummariesByUserIDs(ctx, authorIDs)
		if err != nil {
			return nil, err
		}
		for i := range roadmaps {
			if sum, ok := authors[roadmaps[i].UserID]; ok {
				author := sum
				roadmaps[i].Author = &author
			}
		}
	}
	if roadmaps == nil {
		roadmaps = []model.Roadmap{}
	}
	return &model.RoadmapListResponse{
		Roadmaps:   roadmaps,
		NextCursor: next,
		HasMore:    next != nil,
	}, nil
}
