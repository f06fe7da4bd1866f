package service

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"waypost/internal/model"
)

func TestProfileGet(t *testing.T) {
	profileRepo := &mockProfileRepository{
		getByUserIDFn: func(ctx context.Context, userID string) (*model.Profile, error) {
			return &model.Profile{ID: "prof-1", UserID: userID, NickName: "alice"}, nil
		},
		followExistsFn: func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) (bool, error) {
			return followerID == "viewer-1" && followeeID == "user-1", nil
		},
	}
	svc := NewProfileService(profileRepo)

	viewer := "viewer-1"
	view, err := svc.Get(context.Background(), "user-1", &viewer)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if view.NickName != "alice" {
		t.Errorf("NickName = %q, want alice", view.NickName)
	}
	if !view.IsFollowing {
		t.Error("viewer follows this profile")
	}
}

func TestProfileGet_OwnProfile(t *testing.T) {
	profileRepo := &mockProfileRepository{
		getByUserIDFn: func(ctx context.Context, userID string) (*model.Profile, error) {
			return &model.Profile{ID: "prof-1", UserID: userID}, nil
		},
		followExistsFn: func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) (bool, error) {
			t.Fatal("no follow check against yourself")
			return false, nil
		},
	}
	svc := NewProfileService(profileRepo)

	viewer := "user-1"
	view, err := svc.Get(context.Background(), "user-1", &viewer)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if view.IsFollowing {
		t.Error("IsFollowing should stay false on your own profile")
	}
}

func TestProfileGet_NotFound(t *testing.T) {
	svc := NewProfileService(&mockProfileRepository{})

	if _, err := svc.Get(context.Background(), "nobody", nil); err != model.ErrProfileNotFound {
		t.Errorf("Get() error = %v, want ErrProfileNotFound", err)
	}
}

func TestProfileUpdate(t *testing.T) {
	var gotNick, gotBio *string
	profileRepo := &mockProfileRepository{
		updateFn: func(ctx context.Context, userID string, nickName, bio *string) (*model.Profile, error) {
			gotNick, gotBio = nickName, bio
			return &model.Profile{UserID: userID, NickName: "new nick"}, nil
		},
	}
	svc := NewProfileService(profileRepo)

	nick := "new nick"
	profile, err := svc.Update(context.Background(), "user-1", &model.UpdateProfileRequest{NickName: &nick})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if gotNick == nil || *gotNick != "new nick" {
		t.Errorf("nickName = %v, want new nick", gotNick)
	}
	if gotBio != nil {
		t.Error("absent bio should pass through as nil")
	}
	if profile.NickName != "new nick" {
		t.Errorf("profile = %+v", profile)
	}
}
