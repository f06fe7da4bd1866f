package service

import (
	"context"

	"waypost/internal/model"
	"waypost/internal/repository"
)

// ProfileView is a profile plus the viewer's relationship to it.
type ProfileView struct {
	*model.Profile
	IsFollowing bool `json:"is_following"`
}

// ProfileService handles profile reads and edits.
type ProfileService struct {
	profileRepo repository.ProfileRepository
}

func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

// Get returns userID's profile. When a viewer is present the result
// includes whether the viewer follows this profile; the follow check is
// best-effort and never blocks the profile itself.
func (s *ProfileService) Get(ctx context.Context, userID string, viewerID *string) (*ProfileView, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{Profile: profile}
	if viewerID != nil && *viewerID != userID {
		if following, err := s.profileRepo.FollowExists(ctx, nil, *viewerID, userID); err == nil {
			view.IsFollowing = following
		}
	}
	return view, nil
}

// Update applies partial edits to the caller's own profile. Absent
// fields keep their current values.
func (s *ProfileService) Update(ctx context.Context, userID string, req *model.UpdateProfileRequest) (*model.Profile, error) {
	return s.profileRepo.Update(ctx, userID, req.NickName, req.Bio)
}
