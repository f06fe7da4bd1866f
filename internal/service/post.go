package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"waypost/internal/model"
	"waypost/internal/repository"
)

// PostService handles posts, shares and hashtag indexing.
type PostService struct {
	db          *sqlx.DB
	postRepo    repository.PostRepository
	profileRepo repository.ProfileRepository
}

func NewPostService(db *sqlx.DB, postRepo repository.PostRepository, profileRepo repository.ProfileRepository) *PostService {
	return &PostService{
		db:          db,
		postRepo:    postRepo,
		profileRepo: profileRepo,
	}
}

// ExtractTags pulls hashtags out of a post body: whitespace-delimited
// words starting with '#', with the marker stripped. Duplicates
// collapse to the first occurrence, so the result preserves insertion
// order.
func ExtractTags(body string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, word := range strings.Fields(body) {
		if !strings.HasPrefix(word, "#") {
			continue
		}
		name := strings.TrimPrefix(word, "#")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Create stores a new post and indexes its hashtags, both in one
// transaction so a post never exists half-tagged.
func (s *PostService) Create(ctx context.Context, userID string, req *model.CreatePostRequest) (*model.Post, error) {
	if err := validateBody(req.Body); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	post, err := s.postRepo.Create(ctx, tx, userID, req.Body, nil)
	if err != nil {
		return nil, err
	}

	if err := s.applyTags(ctx, tx, post.ID, req.Body); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return s.GetByID(ctx, post.ID, &userID)
}

// Update rewrites a post's body and re-indexes its hashtags. Only the
// author may edit, and shares have no body of their own to edit.
func (s *PostService) Update(ctx context.Context, postID, userID string, req *model.CreatePostRequest) (*model.Post, error) {
	if err := validateBody(req.Body); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.ParentID != nil {
		return nil, fmt.Errorf("%w: shares cannot be edited", model.ErrValidation)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.postRepo.UpdateBody(ctx, tx, postID, userID, req.Body); err != nil {
		return nil, err
	}

	if err := s.applyTags(ctx, tx, postID, req.Body); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return s.GetByID(ctx, postID, &userID)
}

// Delete removes the caller's post. Shares of it survive as orphans
// with their parent reference cleared by the FK.
func (s *PostService) Delete(ctx context.Context, postID, userID string) error {
	return s.postRepo.Delete(ctx, postID, userID)
}

// Share creates a share of the target post. Sharing a share attaches to
// the original, so chains never form.
func (s *PostService) Share(ctx context.Context, userID, targetID string) (*model.Post, error) {
	target, err := s.postRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	parentID := target.ID
	if target.ParentID != nil {
		parentID = *target.ParentID
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	post, err := s.postRepo.Create(ctx, tx, userID, "", &parentID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return s.GetByID(ctx, post.ID, &userID)
}

// Unshare deletes the caller's share. The target must actually be a
// share; deleting an original this way is refused.
func (s *PostService) Unshare(ctx context.Context, postID, userID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.ParentID == nil {
		return model.ErrNotShareParent
	}
	return s.postRepo.Delete(ctx, postID, userID)
}

// GetByID returns one post with its tags, author, like state for the
// viewer, and resolved parent for shares.
func (s *PostService) GetByID(ctx context.Context, postID string, viewerID *string) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	posts := []model.Post{*post}
	if err := s.enrich(ctx, posts, viewerID); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// ListByUser lists a user's posts, newest first.
func (s *PostService) ListByUser(ctx context.Context, userID string, viewerID *string, cursorRaw string, limit int) (*model.PostListResponse, error) {
	cursor, err := parseCursor(cursorRaw)
	if err != nil {
		return nil, err
	}
	posts, next, err := s.postRepo.ListByUser(ctx, userID, cursor, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.buildList(ctx, posts, next, viewerID)
}

// Feed lists posts by the viewer and everyone they follow.
func (s *PostService) Feed(ctx context.Context, viewerID string, cursorRaw string, limit int) (*model.PostListResponse, error) {
	cursor, err := parseCursor(cursorRaw)
	if err != nil {
		return nil, err
	}

	authorIDs, err := s.profileRepo.GetFolloweeIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	authorIDs = append(authorIDs, viewerID)

	posts, next, err := s.postRepo.ListByAuthors(ctx, authorIDs, cursor, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.buildList(ctx, posts, next, &viewerID)
}

// ListByTag lists posts carrying the named hashtag.
func (s *PostService) ListByTag(ctx context.Context, tagName string, viewerID *string, cursorRaw string, limit int) (*model.PostListResponse, error) {
	cursor, err := parseCursor(cursorRaw)
	if err != nil {
		return nil, err
	}

	tag, err := s.postRepo.GetTagByName(ctx, nil, tagName)
	if err != nil {
		return nil, err
	}

	posts, next, err := s.postRepo.ListByTag(ctx, tag.ID, cursor, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.buildList(ctx, posts, next, viewerID)
}

// Favorites lists the posts the viewer has liked.
func (s *PostService) Favorites(ctx context.Context, viewerID string, cursorRaw string, limit int) (*model.PostListResponse, error) {
	cursor, err := parseCursor(cursorRaw)
	if err != nil {
		return nil, err
	}
	posts, next, err := s.postRepo.ListLikedBy(ctx, viewerID, cursor, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.buildList(ctx, posts, next, &viewerID)
}

// Search lists posts whose body contains the query substring.
func (s *PostService) Search(ctx context.Context, query string, viewerID *string, cursorRaw string, limit int) (*model.PostListResponse, error) {
	cursor, err := parseCursor(cursorRaw)
	if err != nil {
		return nil, err
	}
	posts, next, err := s.postRepo.SearchBody(ctx, query, cursor, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.buildList(ctx, posts, next, viewerID)
}

func (s *PostService) buildList(ctx context.Context, posts []model.Post, next *time.Time, viewerID *string) (*model.PostListResponse, error) {
	if err := s.enrich(ctx, posts, viewerID); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return &model.PostListResponse{
		Posts:      posts,
		NextCursor: encodeCursor(next),
		HasMore:    next != nil,
	}, nil
}

// enrich fills tags, author summaries, the viewer's like state and
// parents for shares across a batch of posts.
func (s *PostService) enrich(ctx context.Context, posts []model.Post, viewerID *string) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]string, len(posts))
	authorSet := make(map[string]bool)
	for i := range posts {
		postIDs[i] = posts[i].ID
		authorSet[posts[i].UserID] = true
	}

	// Parents first, so their authors join the summary batch.
	parents := make(map[string]*model.Post)
	for i := range posts {
		if posts[i].ParentID == nil {
			continue
		}
		pid := *posts[i].ParentID
		if _, ok := parents[pid]; !ok {
			parent, err := s.postRepo.GetByID(ctx, pid)
			if err != nil {
				if err == model.ErrPostNotFound {
					continue // parent deleted, share stays bodyless
				}
				return err
			}
			parents[pid] = parent
			authorSet[parent.UserID] = true
		}
	}

	tags, err := s.postRepo.GetTagsForPosts(ctx, postIDs)
	if err != nil {
		return err
	}

	authorIDs := make([]string, 0, len(authorSet))
	for id := range authorSet {
		authorIDs = append(authorIDs, id)
	}
	authors, err := s.profileRepo.GetSummariesByUserIDs(ctx, authorIDs)
	if err != nil {
		return err
	}

	var likes map[string]bool
	if viewerID != nil {
		likes, err = s.postRepo.CheckLikes(ctx, *viewerID, postIDs)
		if err != nil {
			return err
		}
	}

	for i := range posts {
		p := &posts[i]
		p.Tags = tags[p.ID]
		if p.Tags == nil {
			p.Tags = []model.Tag{}
		}
		if sum, ok := authors[p.UserID]; ok {
			author := sum
			p.Author = &author
		}
		if likes != nil {
			p.IsLiked = likes[p.ID]
		}
		if p.ParentID != nil {
			if parent, ok := parents[*p.ParentID]; ok {
				cp := *parent
				if sum, ok := authors[cp.UserID]; ok {
					a := sum
					cp.Author = &a
				}
				cp.Resolve()
				p.Parent = &cp
			}
		}
		p.Resolve()
	}
	return nil
}

// applyTags re-indexes the post's hashtags inside tx.
func (s *PostService) applyTags(ctx context.Context, tx *sqlx.Tx, postID, body string) error {
	names := ExtractTags(body)
	tagIDs := make([]string, 0, len(names))
	for _, name := range names {
		tag, err := s.postRepo.CreateTag(ctx, tx, name)
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	return s.postRepo.ReplaceTags(ctx, tx, postID, tagIDs)
}

func validateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return model.ErrBodyRequired
	}
	if len(body) > model.MaxPostBodyLength {
		return model.ErrBodyTooLong
	}
	return nil
}
