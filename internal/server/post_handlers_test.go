package server

import (
	"net/http"
	"testing"

	"sociopedia/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPost(t *testing.T, app *fiber.App, s session, description string) []models.Post {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/posts", s.token, map[string]string{"description": description})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var posts []models.Post
	decode(t, resp, &posts)
	return posts
}

func TestCreatePost_SnapshotsAuthor(t *testing.T) {
	_, app := newTestServer(t, nil)
	me := signup(t, app, "Margaret")

	posts := createPost(t, app, me, "first light")
	require.Len(t, posts, 1)
	assert.Equal(t, me.user.ID, posts[0].UserID)
	assert.Equal(t, "Margaret", posts[0].FirstName)
	assert.Equal(t, "Lisbon", posts[0].Location)
	assert.Empty(t, posts[0].Likes)
	assert.Empty(t, posts[0].Comments)

	resp := doJSON(t, app, http.MethodPatch, "/users/"+uintStr(me.user.ID), me.token, map[string]string{"location": "Porto"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	posts = createPost(t, app, me, "second light")
	require.Len(t, posts, 2)
	assert.Equal(t, "Lisbon", posts[0].Location)
	assert.Equal(t, "Porto", posts[1].Location)
}

func TestCreatePost_Validation(t *testing.T) {
	_, app := newTestServer(t, nil)
	me := signup(t, app, "Edsger")

	resp := doJSON(t, app, http.MethodPost, "/posts", me.token, map[string]string{"description": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/posts", me.token, nil)
	var posts []models.Post
	decode(t, resp, &posts)
	assert.Empty(t, posts)
}

func TestFeedAndAuthorPosts(t *testing.T) {
	_, app := newTestServer(t, nil)
	alice := signup(t, app, "Alice")
	bob := signup(t, app, "Bobby")

	createPost(t, app, alice, "a1")
	createPost(t, app, bob, "b1")
	createPost(t, app, alice, "a2")

	resp := doJSON(t, app, http.MethodGet, "/posts", bob.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var feed []models.Post
	decode(t, resp, &feed)
	require.Len(t, feed, 3)
	assert.Equal(t, []string{"a1", "b1", "a2"}, []string{feed[0].Description, feed[1].Description, feed[2].Description})

	resp = doJSON(t, app, http.MethodGet, "/posts/"+uintStr(alice.user.ID)+"/posts", bob.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var mine []models.Post
	decode(t, resp, &mine)
	require.Len(t, mine, 2)
	assert.Equal(t, "a1", mine[0].Description)
	assert.Equal(t, "a2", mine[1].Description)
}

func TestToggleLike(t *testing.T) {
	_, app := newTestServer(t, nil)
	alice := signup(t, app, "Alice")
	bob := signup(t, app, "Bobby")
	post := createPost(t, app, alice, "like me")[0]
	path := "/posts/" + uintStr(post.ID) + "/like"

	resp := doJSON(t, app, http.MethodPatch, path, bob.token, map[string]uint{"userId": bob.user.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var liked models.Post
	decode(t, resp, &liked)
	assert.True(t, liked.Likes.Has(bob.user.ID))
	assert.Equal(t, 1, liked.Likes.Count())

	// Missing userId defaults to the caller.
	resp = doJSON(t, app, http.MethodPatch, path, alice.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	liked = models.Post{}
	decode(t, resp, &liked)
	assert.Equal(t, []uint{alice.user.ID, bob.user.ID}, liked.Likes.IDs())

	// Toggling again removes the like.
	resp = doJSON(t, app, http.MethodPatch, path, bob.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	liked = models.Post{}
	decode(t, resp, &liked)
	assert.False(t, liked.Likes.Has(bob.user.ID))
	assert.Equal(t, 1, liked.Likes.Count())
}

func TestToggleLike_Rejections(t *testing.T) {
	_, app := newTestServer(t, nil)
	alice := signup(t, app, "Alice")
	bob := signup(t, app, "Bobby")
	post := createPost(t, app, alice, "hands off")[0]

	resp := doJSON(t, app, http.MethodPatch, "/posts/"+uintStr(post.ID)+"/like", bob.token, map[string]uint{"userId": alice.user.ID})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPatch, "/posts/9999/like", bob.token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/posts", bob.token, nil)
	var feed []models.Post
	decode(t, resp, &feed)
	require.Len(t, feed, 1)
	assert.Empty(t, feed[0].Likes)
}

func TestAddComment(t *testing.T) {
	_, app := newTestServer(t, nil)
	alice := signup(t, app, "Alice")
	bob := signup(t, app, "Bobby")
	post := createPost(t, app, alice, "discuss")[0]
	path := "/posts/" + uintStr(post.ID) + "/comments"

	resp := doJSON(t, app, http.MethodPost, path, bob.token, map[string]string{"body": "first"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doJSON(t, app, http.MethodPost, path, alice.token, map[string]string{"body": "second"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var updated models.Post
	decode(t, resp, &updated)
	require.Len(t, updated.Comments, 2)
	assert.Equal(t, "first", updated.Comments[0].Body)
	assert.Equal(t, bob.user.ID, updated.Comments[0].UserID)
	assert.Equal(t, "second", updated.Comments[1].Body)

	resp = doJSON(t, app, http.MethodPost, path, alice.token, map[string]string{"body": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
