package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"waypost/internal/model"
)

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"no tags", "just a plain post", nil},
		{"single tag", "learning #golang today", []string{"golang"}},
		{"duplicates collapse", "hello #foo #foo #bar", []string{"foo", "bar"}},
		{"order preserved", "#c #a #b", []string{"c", "a", "b"}},
		{"bare hash ignored", "look # at #this", []string{"this"}},
		{"hash mid-word ignored", "not#atag but #real", []string{"real"}},
		{"whitespace delimited", "#one\n#two\t#three", []string{"one", "two", "three"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTags(tt.body)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTags(%q) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}

func TestValidateBody(t *testing.T) {
	if err := validateBody("fine"); err != nil {
		t.Errorf("validateBody(fine) = %v, want nil", err)
	}
	if err := validateBody("   "); err != model.ErrBodyRequired {
		t.Errorf("blank body error = %v, want ErrBodyRequired", err)
	}
	if err := validateBody(strings.Repeat("x", model.MaxPostBodyLength+1)); err != model.ErrBodyTooLong {
		t.Errorf("oversized body error = %v, want ErrBodyTooLong", err)
	}
	if err := validateBody(strings.Repeat("x", model.MaxPostBodyLength)); err != nil {
		t.Errorf("max-length body error = %v, want nil", err)
	}
}

func TestGetByID_Enrichment(t *testing.T) {
	now := time.Now()
	avatarURL := "https://cdn.example.com/a.jpg"
	postRepo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID string) (*model.Post, error) {
			if postID != "post-1" {
				return nil, model.ErrPostNotFound
			}
			return &model.Post{ID: "post-1", UserID: "author-1", Body: "hello #go", CreatedAt: now}, nil
		},
		getTagsForPostsFn: func(ctx context.Context, postIDs []string) (map[string][]model.Tag, error) {
			return map[string][]model.Tag{
				"post-1": {{ID: "tag-1", Name: "go"}},
			}, nil
		},
		checkLikesFn: func(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
			return map[string]bool{"post-1": true}, nil
		},
	}
	profileRepo := &mockProfileRepository{
		getSummariesByUserIDsFn: func(ctx context.Context, userIDs []string) (map[string]model.ProfileSummary, error) {
			return map[string]model.ProfileSummary{
				"author-1": {ID: "prof-1", UserID: "author-1", NickName: "alice", AvatarURL: &avatarURL},
			}, nil
		},
	}
	svc := NewPostService(nil, postRepo, profileRepo)

	viewer := "viewer-1"
	post, err := svc.GetByID(context.Background(), "post-1", &viewer)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if post.DisplayBody != "hello #go" {
		t.Errorf("DisplayBody = %q, want the body", post.DisplayBody)
	}
	if post.IsShared {
		t.Error("an original post is not a share")
	}
	if !post.IsLiked {
		t.Error("viewer's like state should be filled")
	}
	if len(post.Tags) != 1 || post.Tags[0].Name != "go" {
		t.Errorf("Tags = %v, want [go]", post.Tags)
	}
	if post.Author == nil || post.Author.NickName != "alice" {
		t.Errorf("Author = %+v, want alice", post.Author)
	}
}

func TestGetByID_AnonymousViewer(t *testing.T) {
	postRepo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID string) (*model.Post, error) {
			return &model.Post{ID: "post-1", UserID: "author-1", Body: "hello"}, nil
		},
		checkLikesFn: func(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
			t.Fatal("CheckLikes must not run without a viewer")
			return nil, nil
		},
	}
	svc := NewPostService(nil, postRepo, &mockProfileRepository{})

	post, err := svc.GetByID(context.Background(), "post-1", nil)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if post.IsLiked {
		t.Error("anonymous viewers never see is_liked=true")
	}
}

func TestListByUser_ShareShowsParentBody(t *testing.T) {
	parentID := "post-parent"
	now := time.Now()
	postRepo := &mockPostRepository{
		listByUserFn: func(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error) {
			return []model.Post{
				{ID: "share-1", UserID: "sharer-1", Body: "", ParentID: &parentID, CreatedAt: now},
			}, nil, nil
		},
		getByIDFn: func(ctx context.Context, postID string) (*model.Post, error) {
			if postID != parentID {
				return nil, model.ErrPostNotFound
			}
			return &model.Post{ID: parentID, UserID: "author-1", Body: "the original words"}, nil
		},
	}
	profileRepo := &mockProfileRepository{
		getSummariesByUserIDsFn: func(ctx context.Context, userIDs []string) (map[string]model.ProfileSummary, error) {
			// Both the sharer and the parent's author join the batch.
			got := make(map[string]model.ProfileSummary)
			for _, id := range userIDs {
				got[id] = model.ProfileSummary{UserID: id, NickName: "nick-" + id}
			}
			return got, nil
		},
	}
	svc := NewPostService(nil, postRepo, profileRepo)

	resp, err := svc.ListByUser(context.Background(), "sharer-1", nil, "", 20)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(resp.Posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(resp.Posts))
	}

	share := resp.Posts[0]
	if !share.IsShared {
		t.Error("IsShared should be true for a post with a parent")
	}
	if share.DisplayBody != "the original words" {
		t.Errorf("DisplayBody = %q, want the parent's body", share.DisplayBody)
	}
	if share.Parent == nil {
		t.Fatal("parent should be attached")
	}
	if share.Parent.Author == nil || share.Parent.Author.NickName != "nick-author-1" {
		t.Errorf("parent author = %+v, want nick-author-1", share.Parent.Author)
	}
	if resp.HasMore {
		t.Error("HasMore should be false with no next cursor")
	}
}

func TestListByUser_DeletedParentTolerated(t *testing.T) {
	parentID := "gone"
	postRepo := &mockPostRepository{
		listByUserFn: func(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error) {
			return []model.Post{{ID: "share-1", UserID: "sharer-1", ParentID: &parentID}}, nil, nil
		},
		getByIDFn: func(ctx context.Context, postID string) (*model.Post, error) {
			return nil, model.ErrPostNotFound
		},
	}
	svc := NewPostService(nil, postRepo, &mockProfileRepository{})

	resp, err := svc.ListByUser(context.Background(), "sharer-1", nil, "", 20)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	share := resp.Posts[0]
	if share.Parent != nil {
		t.Error("deleted parent should stay absent")
	}
	if share.DisplayBody != "" {
		t.Errorf("DisplayBody = %q, want empty for an orphaned share", share.DisplayBody)
	}
}

func TestListByUser_Pagination(t *testing.T) {
	nextAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	var gotLimit int
	var gotCursor *time.Time
	postRepo := &mockPostRepository{
		listByUserFn: func(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error) {
			gotLimit, gotCursor = limit, cursor
			return []model.Post{{ID: "post-1", UserID: userID}}, &nextAt, nil
		},
	}
	svc := NewPostService(nil, postRepo, &mockProfileRepository{})

	resp, err := svc.ListByUser(context.Background(), "user-1", nil, nextAt.Format(time.RFC3339Nano), 500)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if gotLimit != MaxPageSize {
		t.Errorf("limit = %d, want clamped to %d", gotLimit, MaxPageSize)
	}
	if gotCursor == nil || !gotCursor.Equal(nextAt) {
		t.Errorf("cursor = %v, want %v", gotCursor, nextAt)
	}
	if !resp.HasMore || resp.NextCursor == nil {
		t.Fatal("expected a next cursor")
	}
	if *resp.NextCursor != nextAt.Format(time.RFC3339Nano) {
		t.Errorf("NextCursor = %q, want %q", *resp.NextCursor, nextAt.Format(time.RFC3339Nano))
	}
}

func TestListByUser_BadCursor(t *testing.T) {
	svc := NewPostService(nil, &mockPostRepository{}, &mockProfileRepository{})

	_, err := svc.ListByUser(context.Background(), "user-1", nil, "not-a-timestamp", 20)
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("ListByUser() error = %v, want ErrValidation", err)
	}
}

func TestListByTag(t *testing.T) {
	postRepo := &mockPostRepository{
		getTagByNameFn: func(ctx context.Context, tx *sqlx.Tx, name string) (*model.Tag, error) {
			// A single read needs no transaction.
			if tx != nil {
				t.Error("tag lookup should read from the pool, not a tx")
			}
			if name != "golang" {
				t.Errorf("name = %q, want golang", name)
			}
			return &model.Tag{ID: "tag-1", Name: name}, nil
		},
		listByTagFn: func(ctx context.Context, tagID string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error) {
			if tagID != "tag-1" {
				t.Errorf("tagID = %q, want tag-1", tagID)
			}
			return []model.Post{{ID: "post-1", UserID: "user-2", Body: "#golang"}}, nil, nil
		},
	}
	svc := NewPostService(nil, postRepo, &mockProfileRepository{})

	resp, err := svc.ListByTag(context.Background(), "golang", nil, "", 20)
	if err != nil {
		t.Fatalf("ListByTag() error = %v", err)
	}
	if len(resp.Posts) != 1 || resp.Posts[0].ID != "post-1" {
		t.Errorf("posts = %+v, want post-1", resp.Posts)
	}
}

func TestListByTag_UnknownTag(t *testing.T) {
	svc := NewPostService(nil, &mockPostRepository{}, &mockProfileRepository{})

	_, err := svc.ListByTag(context.Background(), "nobody-uses-this", nil, "", 20)
	if err != model.ErrTagNotFound {
		t.Errorf("ListByTag() error = %v, want ErrTagNotFound", err)
	}
}

func TestUnshare(t *testing.T) {
	parentID := "post-parent"
	var deletedID string
	postRepo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID string) (*model.Post, error) {
			return &model.Post{ID: postID, UserID: "user-1", ParentID: &parentID}, nil
		},
		deleteFn: func(ctx context.Context, postID, userID string) error {
			deletedID = postID
			return nil
		},
	}
	svc := NewPostService(nil, postRepo, &mockProfileRepository{})

	if err := svc.Unshare(context.Background(), "share-1", "user-1"); err != nil {
		t.Fatalf("Unshare() error = %v", err)
	}
	if deletedID != "share-1" {
		t.Errorf("deleted %q, want share-1", deletedID)
	}
}

func TestUnshare_NotAShare(t *testing.T) {
	postRepo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID string) (*model.Post, error) {
			return &model.Post{ID: postID, UserID: "user-1"}, nil
		},
	}
	svc := NewPostService(nil, postRepo, &mockProfileRepository{})

	if err := svc.Unshare(context.Background(), "post-1", "user-1"); err != model.ErrNotShareParent {
		t.Errorf("Unshare() error = %v, want ErrNotShareParent", err)
	}
}

func TestUpdate_ShareRefused(t *testing.T) {
	parentID := "post-parent"
	postRepo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID string) (*model.Post, error) {
			return &model.Post{ID: postID, UserID: "user-1", ParentID: &parentID}, nil
		},
	}
	svc := NewPostService(nil, postRepo, &mockProfileRepository{})

	_, err := svc.Update(context.Background(), "share-1", "user-1", &model.CreatePostRequest{Body: "new words"})
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("Update() error = %v, want ErrValidation", err)
	}
}

func TestShare_TargetMissing(t *testing.T) {
	svc := NewPostService(nil, &mockPostRepository{}, &mockProfileRepository{})

	if _, err := svc.Share(context.Background(), "user-1", "no-such-post"); err != model.ErrPostNotFound {
		t.Errorf("Share() error = %v, want ErrPostNotFound", err)
	}
}
