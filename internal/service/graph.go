package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"waypost/internal/model"
	"waypost/internal/repository"
)

// GraphService owns the follow and like edges. Both are presence
// toggles: the same request follows when no edge exists and unfollows
// when one does, and concurrent toggles on the same target serialize on
// a row lock so the edge count can never drift.
type GraphService struct {
	db          *sqlx.DB
	profileRepo repository.ProfileRepository
	postRepo    repository.PostRepository
}

func NewGraphService(db *sqlx.DB, profileRepo repository.ProfileRepository, postRepo repository.PostRepository) *GraphService {
	return &GraphService{
		db:          db,
		profileRepo: profileRepo,
		postRepo:    postRepo,
	}
}

// ToggleFollow flips the follow edge from actor to target. A self
// follow is rejected without touching the graph; the rejection is a
// result, not an error.
func (s *GraphService) ToggleFollow(ctx context.Context, actorID, targetID string) (*model.FollowToggle, error) {
	if actorID == targetID {
		return &model.FollowToggle{
			State:    model.ToggleRejected,
			Actor:    actorID,
			Target:   targetID,
			Rejected: true,
		}, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Locking the target's profile row serializes every toggle against
	// this target, and doubles as the existence check.
	if err := s.profileRepo.LockByUserID(ctx, tx, targetID); err != nil {
		return nil, err
	}

	exists, err := s.profileRepo.FollowExists(ctx, tx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	result := &model.FollowToggle{Actor: actorID, Target: targetID}
	if exists {
		if err := s.profileRepo.DeleteFollow(ctx, tx, actorID, targetID); err != nil {
			return nil, err
		}
		result.State = model.ToggleUnfollowed
	} else {
		if err := s.profileRepo.InsertFollow(ctx, tx, actorID, targetID); err != nil {
			return nil, err
		}
		result.State = model.ToggleFollowed
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return result, nil
}

// ToggleLike flips the actor's like on a post.
func (s *GraphService) ToggleLike(ctx context.Context, actorID, postID string) (*model.LikeToggle, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.postRepo.Lock(ctx, tx, postID); err != nil {
		return nil, err
	}

	exists, err := s.postRepo.LikeExists(ctx, tx, postID, actorID)
	if err != nil {
		return nil, err
	}

	result := &model.LikeToggle{Post: postID, Actor: actorID}
	if exists {
		if err := s.postRepo.DeleteLike(ctx, tx, postID, actorID); err != nil {
			return nil, err
		}
		result.State = model.ToggleUnliked
	} else {
		if err := s.postRepo.InsertLike(ctx, tx, postID, actorID); err != nil {
			return nil, err
		}
		result.State = model.ToggleLiked
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return result, nil
}

// GetFollowers lists the profiles following userID, newest edge first.
func (s *GraphService) GetFollowers(ctx context.Context, userID, cursorRaw string, limit int) (*model.ProfileListResponse, error) {
	cursor, err := parseCursor(cursorRaw)
	if err != nil {
		return nil, err
	}

	profiles, next, err := s.profileRepo.GetFollowers(ctx, userID, cursor, clampLimit(limit))
	if err != nil {
		return nil, err
	}

	return &model.ProfileListResponse{
		Profiles:   profiles,
		NextCursor: encodeCursor(next),
		HasMore:    next != nil,
	}, nil
}

// GetFollowing lists the profiles userID follows, newest edge first.
func (s *GraphService) GetFollowing(ctx context.Context, userID, cursorRaw string, limit int) (*model.ProfileListResponse, error) {
	cursor, err := parseCursor(cursorRaw)
	if err != nil {
		return nil, err
	}

	profiles, next, err := s.profileRepo.GetFollowing(ctx, userID, cursor, clampLimit(limit))
	if err != nil {
		return nil, err
	}

	return &model.ProfileListResponse{
		Profiles:   profiles,
		NextCursor: encodeCursor(next),
		HasMore:    next != nil,
	}, nil
}

// GetLikers lists the profiles that like a post.
func (s *GraphService) GetLikers(ctx context.Context, postID string) ([]model.ProfileSummary, error) {
	if _, err := s.postRepo.GetAuthorID(ctx, postID); err != nil {
		return nil, err
	}

	likerIDs, err := s.postRepo.GetLikerIDs(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(likerIDs) == 0 {
		return []model.ProfileSummary{}, nil
	}

	summaries, err := s.profileRepo.GetSummariesByUserIDs(ctx, likerIDs)
	if err != nil {
		return nil, err
	}

	out := make([]model.ProfileSummary, 0, len(likerIDs))
	for _, id := range likerIDs {
		if sum, ok := summaries[id]; ok {
			out = append(out, sum)
		}
	}
	return out, nil
}
