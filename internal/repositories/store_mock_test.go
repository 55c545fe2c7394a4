package repositories_test

import (
	"testing"
	"time"

	"microblog/internal/models"
	"microblog/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A feed never mixes posts from before an unfollow with posts written after it.
func TestMockStore_FeedReadsOneSnapshot(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		repos := repositories.NewMockRepositories()
		ann := createUser(t, repos, "ann")
		bob := createUser(t, repos, "bob")
		require.NoError(t, repos.Relationships.Create(&models.Relationship{FollowerID: ann.ID, FollowedID: bob.ID}))
		createPost(t, repos, bob, "bob", base)

		feeds := make(chan []string, 50)
		go func() {
			defer close(feeds)
			for j := 0; j < 50; j++ {
				feed, err := repos.Microposts.Feed(models.FeedQuery{UserID: ann.ID})
				if err != nil {
					return
				}
				feeds <- contents(feed)
			}
		}()

		_, err := repos.Relationships.Delete(ann.ID, bob.ID)
		require.NoError(t, err)
		createPost(t, repos, ann, "after unfollow", base.Add(time.Minute))

		for feed := range feeds {
			assert.NotEqual(t, []string{"after unfollow", "bob"}, feed)
		}
	}
}
