package service

import (
	"context"
	"strings"
	"testing"

	"waypost/internal/model"
)

func existingPostRepo() *mockPostRepository {
	return &mockPostRepository{
		getAuthorIDFn: func(ctx context.Context, postID string) (string, error) {
			if postID == "post-1" {
				return "author-1", nil
			}
			return "", model.ErrPostNotFound
		},
	}
}

func TestCommentCreate(t *testing.T) {
	var created *model.Comment
	commentRepo := &mockCommentRepository{
		createFn: func(ctx context.Context, comment *model.Comment) error {
			created = comment
			return nil
		},
	}
	svc := NewCommentService(commentRepo, existingPostRepo(), &mockProfileRepository{})

	comment, err := svc.Create(context.Background(), "user-1", &model.CreateCommentRequest{
		PostID: "post-1",
		Body:   "nice one",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if comment != created {
		t.Error("returned comment should be the stored one")
	}
	if created.PostID != "post-1" || created.UserID != "user-1" || created.Body != "nice one" {
		t.Errorf("stored comment = %+v", created)
	}
}

func TestCommentCreate_PostMissing(t *testing.T) {
	commentRepo := &mockCommentRepository{
		createFn: func(ctx context.Context, comment *model.Comment) error {
			t.Fatal("no comment should be stored under a missing post")
			return nil
		},
	}
	svc := NewCommentService(commentRepo, existingPostRepo(), &mockProfileRepository{})

	_, err := svc.Create(context.Background(), "user-1", &model.CreateCommentRequest{
		PostID: "no-such-post",
		Body:   "hello",
	})
	if err != model.ErrPostNotFound {
		t.Errorf("Create() error = %v, want ErrPostNotFound", err)
	}
}

func TestCommentCreate_Validation(t *testing.T) {
	svc := NewCommentService(&mockCommentRepository{}, existingPostRepo(), &mockProfileRepository{})

	_, err := svc.Create(context.Background(), "user-1", &model.CreateCommentRequest{
		PostID: "post-1",
		Body:   "   ",
	})
	if err != model.ErrCommentRequired {
		t.Errorf("blank body error = %v, want ErrCommentRequired", err)
	}

	_, err = svc.Create(context.Background(), "user-1", &model.CreateCommentRequest{
		PostID: "post-1",
		Body:   strings.Repeat("x", model.MaxCommentLength+1),
	})
	if err != model.ErrCommentTooLong {
		t.Errorf("oversized body error = %v, want ErrCommentTooLong", err)
	}
}

func TestCommentListByPost(t *testing.T) {
	commentRepo := &mockCommentRepository{
		listByPostFn: func(ctx context.Context, postID string) ([]model.Comment, error) {
			return []model.Comment{
				{ID: "c1", PostID: postID, UserID: "user-a", Body: "first"},
				{ID: "c2", PostID: postID, UserID: "user-b", Body: "second"},
				{ID: "c3", PostID: postID, UserID: "user-a", Body: "third"},
			}, nil
		},
	}
	profileRepo := &mockProfileRepository{
		getSummariesByUserIDsFn: func(ctx context.Context, userIDs []string) (map[string]model.ProfileSummary, error) {
			if len(userIDs) != 2 {
				t.Errorf("summary batch has %d IDs, want 2 distinct authors", len(userIDs))
			}
			return map[string]model.ProfileSummary{
				"user-a": {UserID: "user-a", NickName: "alice"},
				"user-b": {UserID: "user-b", NickName: "bob"},
			}, nil
		},
	}
	svc := NewCommentService(commentRepo, existingPostRepo(), profileRepo)

	comments, err := svc.ListByPost(context.Background(), "post-1")
	if err != nil {
		t.Fatalf("ListByPost() error = %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("got %d comments, want 3", len(comments))
	}
	if comments[0].Author == nil || comments[0].Author.NickName != "alice" {
		t.Errorf("comments[0].Author = %+v, want alice", comments[0].Author)
	}
	if comments[1].Author == nil || comments[1].Author.NickName != "bob" {
		t.Errorf("comments[1].Author = %+v, want bob", comments[1].Author)
	}
}

func TestCommentListByPost_Empty(t *testing.T) {
	svc := NewCommentService(&mockCommentRepository{}, existingPostRepo(), &mockProfileRepository{})

	comments, err := svc.ListByPost(context.Background(), "post-1")
	if err != nil {
		t.Fatalf("ListByPost() error = %v", err)
	}
	if comments == nil || len(comments) != 0 {
		t.Errorf("got %v, want an empty non-nil slice", comments)
	}
}

func TestCommentListByPost_PostMissing(t *testing.T) {
	svc := NewCommentService(&mockCommentRepository{}, existingPostRepo(), &mockProfileRepository{})

	if _, err := svc.ListByPost(context.Background(), "no-such-post"); err != model.ErrPostNotFound {
		t.Errorf("ListByPost() error = %v, want ErrPostNotFound", err)
	}
}
