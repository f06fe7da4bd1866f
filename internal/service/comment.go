package service

import (
	"context"
	"strings"

	"waypost/internal/model"
	"waypost/internal/repository"
)

// CommentService handles comments on posts.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	profileRepo repository.ProfileRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, profileRepo repository.ProfileRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		profileRepo: profileRepo,
	}
}

// Create adds a comment under an existing post.
func (s *CommentService) Create(ctx context.Context, userID string, req *model.CreateCommentRequest) (*model.Comment, error) {
	if err := validateCommentBody(req.Body); err != nil {
		return nil, err
	}

	if _, err := s.postRepo.GetAuthorID(ctx, req.PostID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID: req.PostID,
		UserID: userID,
		Body:   req.Body,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Update rewrites the caller's comment.
func (s *CommentService) Update(ctx context.Context, commentID, userID string, req *model.UpdateCommentRequest) (*model.Comment, error) {
	if err := validateCommentBody(req.Body); err != nil {
		return nil, err
	}
	return s.commentRepo.Update(ctx, commentID, userID, req.Body)
}

// Delete removes the caller's comment.
func (s *CommentService) Delete(ctx context.Context, commentID, userID string) error {
	return s.commentRepo.Delete(ctx, commentID, userID)
}

// ListByPost lists a post's comments oldest first, with author
// summaries attached.
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	if _, err := s.postRepo.GetAuthorID(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return []model.Comment{}, nil
	}

	authorSet := make(map[string]bool)
	for i := range comments {
		authorSet[comments[i].UserID] = true
	}
	authorIDs := make([]string, 0, len(authorSet))
	for id := range authorSet {
		authorIDs = append(authorIDs, id)
	}

	authors, err := s.profileRepo.GetSummariesByUserIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		if sum, ok := authors[comments[i].UserID]; ok {
			author := sum
			comments[i].Author = &author
		}
	}
	return comments, nil
}

func validateCommentBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return model.ErrCommentRequired
	}
	if len(body) > model.MaxCommentLength {
		return model.ErrCommentTooLong
	}
	return nil
}
