package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"waypost/internal/mail"
	"waypost/internal/model"
)

// newMockDB wraps a sqlmock connection in sqlx so services that open
// transactions can run against scripted Begin/Commit expectations.
func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

// Function-field mocks. Services depend on the repository interfaces,
// so each test swaps in a mock and defines only the behavior it needs;
// unset functions return the zero-ish default.

type mockUserRepository struct {
	createFn                func(ctx context.Context, user *model.User) error
	getByIDFn               func(ctx context.Context, id string) (*model.User, error)
	getByEmailFn            func(ctx context.Context, email string) (*model.User, error)
	existsByEmailFn         func(ctx context.Context, email string) (bool, error)
	existsByUsernameFn      func(ctx context.Context, username string) (bool, error)
	markVerifiedFn          func(ctx context.Context, tx *sqlx.Tx, userID string) (bool, error)
	updatePasswordByEmailFn func(ctx context.Context, email, passwordHash string) error
	deleteFn                func(ctx context.Context, id string) error

	createCalls []*model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) MarkVerified(ctx context.Context, tx *sqlx.Tx, userID string) (bool, error) {
	if m.markVerifiedFn != nil {
		return m.markVerifiedFn(ctx, tx, userID)
	}
	return false, nil
}

func (m *mockUserRepository) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error {
	if m.updatePasswordByEmailFn != nil {
		return m.updatePasswordByEmailFn(ctx, email, passwordHash)
	}
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockRefreshTokenRepository struct {
	createFn            func(ctx context.Context, token *model.RefreshToken) error
	findByTokenHashFn   func(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	deleteByTokenHashFn func(ctx context.Context, tokenHash string) (int64, error)
	deleteAllForUserFn  func(ctx context.Context, userID string) error
	deleteExpiredFn     func(ctx context.Context) (int64, error)

	createCalls []*model.RefreshToken
	deleteCalls []string
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	m.createCalls = append(m.createCalls, token)
	if m.createFn != nil {
		return m.createFn(ctx, token)
	}
	return nil
}

func (m *mockRefreshTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	if m.findByTokenHashFn != nil {
		return m.findByTokenHashFn(ctx, tokenHash)
	}
	return nil, model.ErrUnauthenticated
}

func (m *mockRefreshTokenRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) (int64, error) {
	m.deleteCalls = append(m.deleteCalls, tokenHash)
	if m.deleteByTokenHashFn != nil {
		return m.deleteByTokenHashFn(ctx, tokenHash)
	}
	return 0, nil
}

func (m *mockRefreshTokenRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	if m.deleteAllForUserFn != nil {
		return m.deleteAllForUserFn(ctx, userID)
	}
	return nil
}

func (m *mockRefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}

type mockResetRepository struct {
	createFn  func(ctx context.Context, reset *model.PasswordReset) error
	consumeFn func(ctx context.Context, token string) (string, error)

	createCalls []*model.PasswordReset
}

func (m *mockResetRepository) Create(ctx context.Context, reset *model.PasswordReset) error {
	m.createCalls = append(m.createCalls, reset)
	if m.createFn != nil {
		return m.createFn(ctx, reset)
	}
	return nil
}

func (m *mockResetRepository) Consume(ctx context.Context, token string) (string, error) {
	if m.consumeFn != nil {
		return m.consumeFn(ctx, token)
	}
	return "", model.ErrResetNotFound
}

type mockProfileRepository struct {
	createFn                func(ctx context.Context, tx *sqlx.Tx, profile *model.Profile) error
	getByUserIDFn           func(ctx context.Context, userID string) (*model.Profile, error)
	updateFn                func(ctx context.Context, userID string, nickName, bio *string) (*model.Profile, error)
	setAvatarFn             func(ctx context.Context, userID, avatarURL, avatarKey string) error
	lockByUserIDFn          func(ctx context.Context, tx *sqlx.Tx, userID string) error
	followExistsFn          func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) (bool, error)
	insertFollowFn          func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) error
	deleteFollowFn          func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) error
	getFollowersFn          func(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error)
	getFollowingFn          func(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error)
	getFolloweeIDsFn        func(ctx context.Context, userID string) ([]string, error)
	getSummariesByUserIDsFn func(ctx context.Context, userIDs []string) (map[string]model.ProfileSummary, error)
}

func (m *mockProfileRepository) Create(ctx context.Context, tx *sqlx.Tx, profile *model.Profile) error {
	if m.createFn != nil {
		return m.createFn(ctx, tx, profile)
	}
	return nil
}

func (m *mockProfileRepository) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	if m.getByUserIDFn != nil {
		return m.getByUserIDFn(ctx, userID)
	}
	return nil, model.ErrProfileNotFound
}

func (m *mockProfileRepository) Update(ctx context.Context, userID string, nickName, bio *string) (*model.Profile, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, nickName, bio)
	}
	return nil, model.ErrProfileNotFound
}

func (m *mockProfileRepository) SetAvatar(ctx context.Context, userID, avatarURL, avatarKey string) error {
	if m.setAvatarFn != nil {
		return m.setAvatarFn(ctx, userID, avatarURL, avatarKey)
	}
	return nil
}

func (m *mockProfileRepository) LockByUserID(ctx context.Context, tx *sqlx.Tx, userID string) error {
	if m.lockByUserIDFn != nil {
		return m.lockByUserIDFn(ctx, tx, userID)
	}
	return nil
}

func (m *mockProfileRepository) FollowExists(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) (bool, error) {
	if m.followExistsFn != nil {
		return m.followExistsFn(ctx, tx, followerID, followeeID)
	}
	return false, nil
}

func (m *mockProfileRepository) InsertFollow(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) error {
	if m.insertFollowFn != nil {
		return m.insertFollowFn(ctx, tx, followerID, followeeID)
	}
	return nil
}

func (m *mockProfileRepository) DeleteFollow(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) error {
	if m.deleteFollowFn != nil {
		return m.deleteFollowFn(ctx, tx, followerID, followeeID)
	}
	return nil
}

func (m *mockProfileRepository) GetFollowers(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error) {
	if m.getFollowersFn != nil {
		return m.getFollowersFn(ctx, userID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockProfileRepository) GetFollowing(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error) {
	if m.getFollowingFn != nil {
		return m.getFollowingFn(ctx, userID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockProfileRepository) GetFolloweeIDs(ctx context.Context, userID string) ([]string, error) {
	if m.getFolloweeIDsFn != nil {
		return m.getFolloweeIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockProfileRepository) GetSummariesByUserIDs(ctx context.Context, userIDs []string) (map[string]model.ProfileSummary, error) {
	if m.getSummariesByUserIDsFn != nil {
		return m.getSummariesByUserIDsFn(ctx, userIDs)
	}
	return map[string]model.ProfileSummary{}, nil
}

type mockPostRepository struct {
	createFn          func(ctx context.Context, tx *sqlx.Tx, userID, body string, parentID *string) (*model.Post, error)
	updateBodyFn      func(ctx context.Context, tx *sqlx.Tx, postID, userID, body string) error
	deleteFn          func(ctx context.Context, postID, userID string) error
	getByIDFn         func(ctx context.Context, postID string) (*model.Post, error)
	getAuthorIDFn     func(ctx context.Context, postID string) (string, error)
	listByUserFn      func(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error)
	listByAuthorsFn   func(ctx context.Context, userIDs []string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error)
	listByTagFn       func(ctx context.Context, tagID string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error)
	listLikedByFn     func(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error)
	searchBodyFn      func(ctx context.Context, query string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error)
	getTagByNameFn    func(ctx context.Context, tx *sqlx.Tx, name string) (*model.Tag, error)
	createTagFn       func(ctx context.Context, tx *sqlx.Tx, name string) (*model.Tag, error)
	replaceTagsFn     func(ctx context.Context, tx *sqlx.Tx, postID string, tagIDs []string) error
	getTagsForPostsFn func(ctx context.Context, postIDs []string) (map[string][]model.Tag, error)
	lockFn            func(ctx context.Context, tx *sqlx.Tx, postID string) error
	likeExistsFn      func(ctx context.Context, tx *sqlx.Tx, postID, userID string) (bool, error)
	insertLikeFn      func(ctx context.Context, tx *sqlx.Tx, postID, userID string) error
	deleteLikeFn      func(ctx context.Context, tx *sqlx.Tx, postID, userID string) error
	getLikerIDsFn     func(ctx context.Context, postID string) ([]string, error)
	checkLikesFn      func(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
}

func (m *mockPostRepository) Create(ctx context.Context, tx *sqlx.Tx, userID, body string, parentID *string) (*model.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, tx, userID, body, parentID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) UpdateBody(ctx context.Context, tx *sqlx.Tx, postID, userID, body string) error {
	if m.updateBodyFn != nil {
		return m.updateBodyFn(ctx, tx, postID, userID, body)
	}
	return nil
}

func (m *mockPostRepository) Delete(ctx context.Context, postID, userID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, postID, userID)
	}
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID string) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) GetAuthorID(ctx context.Context, postID string) (string, error) {
	if m.getAuthorIDFn != nil {
		return m.getAuthorIDFn(ctx, postID)
	}
	return "", model.ErrPostNotFound
}

func (m *mockPostRepository) ListByUser(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockPostRepository) ListByAuthors(ctx context.Context, userIDs []string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error) {
	if m.listByAuthorsFn != nil {
		return m.listByAuthorsFn(ctx, userIDs, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockPostRepository) ListByTag(ctx context.Context, tagID string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error) {
	if m.listByTagFn != nil {
		return m.listByTagFn(ctx, tagID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockPostRepository) ListLikedBy(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error) {
	if m.listLikedByFn != nil {
		return m.listLikedByFn(ctx, userID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockPostRepository) SearchBody(ctx context.Context, query string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error) {
	if m.searchBodyFn != nil {
		return m.searchBodyFn(ctx, query, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockPostRepository) GetTagByName(ctx context.Context, tx *sqlx.Tx, name string) (*model.Tag, error) {
	if m.getTagByNameFn != nil {
		return m.getTagByNameFn(ctx, tx, name)
	}
	return nil, model.ErrTagNotFound
}

func (m *mockPostRepository) CreateTag(ctx context.Context, tx *sqlx.Tx, name string) (*model.Tag, error) {
	if m.createTagFn != nil {
		return m.createTagFn(ctx, tx, name)
	}
	return &model.Tag{ID: name, Name: name}, nil
}

func (m *mockPostRepository) ReplaceTags(ctx context.Context, tx *sqlx.Tx, postID string, tagIDs []string) error {
	if m.replaceTagsFn != nil {
		return m.replaceTagsFn(ctx, tx, postID, tagIDs)
	}
	return nil
}

func (m *mockPostRepository) GetTagsForPosts(ctx context.Context, postIDs []string) (map[string][]model.Tag, error) {
	if m.getTagsForPostsFn != nil {
		return m.getTagsForPostsFn(ctx, postIDs)
	}
	return map[string][]model.Tag{}, nil
}

func (m *mockPostRepository) Lock(ctx context.Context, tx *sqlx.Tx, postID string) error {
	if m.lockFn != nil {
		return m.lockFn(ctx, tx, postID)
	}
	return nil
}

func (m *mockPostRepository) LikeExists(ctx context.Context, tx *sqlx.Tx, postID, userID string) (bool, error) {
	if m.likeExistsFn != nil {
		return m.likeExistsFn(ctx, tx, postID, userID)
	}
	return false, nil
}

func (m *mockPostRepository) InsertLike(ctx context.Context, tx *sqlx.Tx, postID, userID string) error {
	if m.insertLikeFn != nil {
		return m.insertLikeFn(ctx, tx, postID, userID)
	}
	return nil
}

func (m *mockPostRepository) DeleteLike(ctx context.Context, tx *sqlx.Tx, postID, userID string) error {
	if m.deleteLikeFn != nil {
		return m.deleteLikeFn(ctx, tx, postID, userID)
	}
	return nil
}

func (m *mockPostRepository) GetLikerIDs(ctx context.Context, postID string) ([]string, error) {
	if m.getLikerIDsFn != nil {
		return m.getLikerIDsFn(ctx, postID)
	}
	return nil, nil
}

func (m *mockPostRepository) CheckLikes(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	if m.checkLikesFn != nil {
		return m.checkLikesFn(ctx, userID, postIDs)
	}
	return map[string]bool{}, nil
}

type mockCommentRepository struct {
	createFn     func(ctx context.Context, comment *model.Comment) error
	updateFn     func(ctx context.Context, commentID, userID, body string) (*model.Comment, error)
	deleteFn     func(ctx context.Context, commentID, userID string) error
	getByIDFn    func(ctx context.Context, commentID string) (*model.Comment, error)
	listByPostFn func(ctx context.Context, postID string) ([]model.Comment, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	if m.createFn != nil {
		return m.createFn(ctx, comment)
	}
	return nil
}

func (m *mockCommentRepository) Update(ctx context.Context, commentID, userID, body string) (*model.Comment, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, commentID, userID, body)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) Delete(ctx context.Context, commentID, userID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, commentID, userID)
	}
	return nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, commentID string) (*model.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, commentID)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	if m.listByPostFn != nil {
		return m.listByPostFn(ctx, postID)
	}
	return nil, nil
}

type mockRoadmapRepository struct {
	createFn         func(ctx context.Context, roadmap *model.Roadmap) error
	updateFn         func(ctx context.Context, roadmap *model.Roadmap) error
	deleteFn         func(ctx context.Context, roadmapID, userID string) error
	getByIDFn        func(ctx context.Context, roadmapID string) (*model.Roadmap, error)
	listByUserFn     func(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.Roadmap, *time.Time, error)
	listByAuthorsFn  func(ctx context.Context, userIDs []string, cursor *time.Time, limit int) ([]model.Roadmap, *time.Time, error)
	searchFn         func(ctx context.Context, query string, cursor *time.Time, limit int) ([]model.Roadmap, *time.Time, error)
	createStepFn     func(ctx context.Context, step *model.Step) error
	updateStepFn     func(ctx context.Context, step *model.Step) error
	deleteStepFn     func(ctx context.Context, stepID string) error
	getStepFn        func(ctx context.Context, stepID string) (*model.Step, error)
	listStepsFn      func(ctx context.Context, roadmapID string) ([]model.Step, error)
	nextStepOrderFn  func(ctx context.Context, roadmapID string) (int, error)
	swapStepOrderFn  func(ctx context.Context, stepID, otherStepID string) error
	createLookbackFn func(ctx context.Context, lookback *model.Lookback) error
	updateLookbackFn func(ctx context.Context, lookback *model.Lookback) error
	deleteLookbackFn func(ctx context.Context, lookbackID string) error
	getLookbackFn    func(ctx context.Context, lookbackID string) (*model.Lookback, error)
	listLookbacksFn  func(ctx context.Context, stepID string) ([]model.Lookback, error)
}

func (m *mockRoadmapRepository) Create(ctx context.Context, roadmap *model.Roadmap) error {
	if m.createFn != nil {
		return m.createFn(ctx, roadmap)
	}
	return nil
}

func (m *mockRoadmapRepository) Update(ctx context.Context, roadmap *model.Roadmap) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, roadmap)
	}
	return nil
}

func (m *mockRoadmapRepository) Delete(ctx context.Context, roadmapID, userID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, roadmapID, userID)
	}
	return nil
}

func (m *mockRoadmapRepository) GetByID(ctx context.Context, roadmapID string) (*model.Roadmap, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, roadmapID)
	}
	return nil, model.ErrRoadmapNotFound
}

func (m *mockRoadmapRepository) ListByUser(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.Roadmap, *time.Time, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockRoadmapRepository) ListByAuthors(ctx context.Context, userIDs []string, cursor *time.Time, limit int) ([]model.Roadmap, *time.Time, error) {
	if m.listByAuthorsFn != nil {
		return m.listByAuthorsFn(ctx, userIDs, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockRoadmapRepository) Search(ctx context.Context, query string, cursor *time.Time, limit int) ([]model.Roadmap, *time.Time, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockRoadmapRepository) CreateStep(ctx context.Context, step *model.Step) error {
	if m.createStepFn != nil {
		return m.createStepFn(ctx, step)
	}
	return nil
}

func (m *mockRoadmapRepository) UpdateStep(ctx context.Context, step *model.Step) error {
	if m.updateStepFn != nil {
		return m.updateStepFn(ctx, step)
	}
	return nil
}

func (m *mockRoadmapRepository) DeleteStep(ctx context.Context, stepID string) error {
	if m.deleteStepFn != nil {
		return m.deleteStepFn(ctx, stepID)
	}
	return nil
}

func (m *mockRoadmapRepository) GetStep(ctx context.Context, stepID string) (*model.Step, error) {
	if m.getStepFn != nil {
		return m.getStepFn(ctx, stepID)
	}
	return nil, model.ErrStepNotFound
}

func (m *mockRoadmapRepository) ListSteps(ctx context.Context, roadmapID string) ([]model.Step, error) {
	if m.listStepsFn != nil {
		return m.listStepsFn(ctx, roadmapID)
	}
	return nil, nil
}

func (m *mockRoadmapRepository) NextStepOrder(ctx context.Context, roadmapID string) (int, error) {
	if m.nextStepOrderFn != nil {
		return m.nextStepOrderFn(ctx, roadmapID)
	}
	return 1, nil
}

func (m *mockRoadmapRepository) SwapStepOrder(ctx context.Context, stepID, otherStepID string) error {
	if m.swapStepOrderFn != nil {
		return m.swapStepOrderFn(ctx, stepID, otherStepID)
	}
	return nil
}

func (m *mockRoadmapRepository) CreateLookback(ctx context.Context, lookback *model.Lookback) error {
	if m.createLookbackFn != nil {
		return m.createLookbackFn(ctx, lookback)
	}
	return nil
}

func (m *mockRoadmapRepository) UpdateLookback(ctx context.Context, lookback *model.Lookback) error {
	if m.updateLookbackFn != nil {
		return m.updateLookbackFn(ctx, lookback)
	}
	return nil
}

func (m *mockRoadmapRepository) DeleteLookback(ctx context.Context, lookbackID string) error {
	if m.deleteLookbackFn != nil {
		return m.deleteLookbackFn(ctx, lookbackID)
	}
	return nil
}

func (m *mockRoadmapRepository) GetLookback(ctx context.Context, lookbackID string) (*model.Lookback, error) {
	if m.getLookbackFn != nil {
		return m.getLookbackFn(ctx, lookbackID)
	}
	return nil, model.ErrLookbackNotFound
}

func (m *mockRoadmapRepository) ListLookbacks(ctx context.Context, stepID string) ([]model.Lookback, error) {
	if m.listLookbacksFn != nil {
		return m.listLookbacksFn(ctx, stepID)
	}
	return nil, nil
}

// mockDispatcher records dispatched mail instead of queueing it.
type mockDispatcher struct {
	messages []mail.Message
}

func (m *mockDispatcher) Dispatch(ctx context.Context, msg mail.Message) {
	m.messages = append(m.messages, msg)
}
