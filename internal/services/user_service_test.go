package services

import (
	"context"
	"testing"

	"blogapi/internal/apperr"
	"blogapi/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFixture() (*articleFixture, *UserService) {
	f := newArticleFixture()
	return f, NewUserService(fakeUserRepo{f.store}, fakeArticleRepo{f.store})
}

func TestToggleFollow(t *testing.T) {
	f, svc := newUserFixture()
	ctx := context.Background()

	res, err := svc.ToggleFollow(ctx, f.reader.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, &models.FollowResult{Following: true, Message: "Following user"}, res)

	res, err = svc.ToggleFollow(ctx, f.reader.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, &models.FollowResult{Following: false, Message: "Unfollowed user"}, res)
	assert.Empty(t, f.store.follows)
}

func TestToggleFollow_SelfRejected(t *testing.T) {
	f, svc := newUserFixture()

	_, err := svc.ToggleFollow(context.Background(), f.author.ID, "alice")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "Cannot follow yourself", apperr.PublicMessage(err))
	assert.Empty(t, f.store.follows)

	_, err = svc.ToggleFollow(context.Background(), f.author.ID, "ghost")
	assert.Equal(t, "User not found", apperr.PublicMessage(err))
}

func TestProfile(t *testing.T) {
	f, svc := newUserFixture()
	ctx := context.Background()
	f.create(t, models.CreateArticleRequest{Title: "Public", Content: "x", Published: true})
	f.create(t, models.CreateArticleRequest{Title: "Draft", Content: "x"})
	_, err := svc.ToggleFollow(ctx, f.reader.ID, "alice")
	require.NoError(t, err)

	p, err := svc.Profile(ctx, "alice", f.reader.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.ArticlesCount)
	require.Len(t, p.Articles, 1)
	assert.Equal(t, "Public", p.Articles[0].Title)
	assert.True(t, p.IsFollowing)
	require.Len(t, p.Followers, 1)
	assert.Equal(t, "bob", p.Followers[0].Username)

	p, err = svc.Profile(ctx, "alice", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, p.IsFollowing)

	p, err = svc.Profile(ctx, "alice", f.author.ID)
	require.NoError(t, err)
	assert.False(t, p.IsFollowing)
}

func TestUpdateProfile(t *testing.T) {
	f, svc := newUserFixture()
	ctx := context.Background()

	name, bio := "  Alice A.  ", "Gopher"
	u, err := svc.UpdateProfile(ctx, f.author.ID, models.UpdateProfileRequest{Name: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", u.Name)
	require.NotNil(t, u.Bio)
	assert.Equal(t, "Gopher", *u.Bio)
	assert.Nil(t, u.Avatar)

	blank := " "
	_, err = svc.UpdateProfile(ctx, f.author.ID, models.UpdateProfileRequest{Name: &blank})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
