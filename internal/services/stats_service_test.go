package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/DocShare/internal/core/coretest"
	"github.com/markdave123-py/DocShare/internal/models"
)

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	db := coretest.NewMemoryDB()
	require.NoError(t, db.CreateUser(ctx, &models.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}))
	forum := NewForumService(db, nil, nil)

	var docs []*models.Document
	for i := 0; i < 6; i++ {
		d, err := forum.Share(ctx, uploader, fmt.Sprintf("Doc %d", i), "", "")
		require.NoError(t, err)
		docs = append(docs, d)
	}
	require.NoError(t, forum.Review(ctx, reviewer, docs[0].ID, models.StatusApproved))
	require.NoError(t, forum.Review(ctx, reviewer, docs[1].ID, models.StatusRejected))
	for i := 0; i < 4; i++ {
		_, err := forum.Comment(ctx, reviewer, docs[0].ID, fmt.Sprintf("comment %d", i))
		require.NoError(t, err)
	}

	stats, err := NewStatsService(db).Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.TotalDocs)
	assert.Equal(t, 1, stats.Approved)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 4, stats.Pending)

	require.Len(t, stats.RecentActivity, 8)
	// the four comments are newer than every upload
	for i := 0; i < 4; i++ {
		a := stats.RecentActivity[i]
		assert.Equal(t, "commented", a.Action)
		assert.Equal(t, "Grace", a.User)
		assert.Equal(t, "Doc 0", a.Doc)
	}
	assert.Equal(t, models.Activity{
		User: "Ada", Action: "uploaded", Doc: "Doc 5",
		Date: stats.RecentActivity[4].At.Format("2006-01-02"), At: stats.RecentActivity[4].At,
	}, stats.RecentActivity[4])
	for i := 1; i < len(stats.RecentActivity); i++ {
		assert.False(t, stats.RecentActivity[i].At.After(stats.RecentActivity[i-1].At))
	}
}

func TestDashboardUnknownNames(t *testing.T) {
	ctx := context.Background()
	db := coretest.NewMemoryDB()
	require.NoError(t, db.CreateDocument(ctx, &models.Document{ID: "d1", Title: "Orphan", UploaderID: "ghost", Status: models.StatusPending}))
	require.NoError(t, db.CreateComment(ctx, &models.Comment{ID: "c1", DocumentID: "gone", UserID: "ghost", Content: "x"}))

	stats, err := NewStatsService(db).Dashboard(ctx)
	require.NoError(t, err)
	require.Len(t, stats.RecentActivity, 2)
	assert.Equal(t, "Unknown", stats.RecentActivity[0].User)
	assert.Equal(t, "Unknown document", stats.RecentActivity[0].Doc)
	assert.Equal(t, "Unknown", stats.RecentActivity[1].User)
	assert.Equal(t, "Orphan", stats.RecentActivity[1].Doc)
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	db := coretest.NewMemoryDB()
	forum := NewForumService(db, nil, nil)

	a, _ := forum.Share(ctx, uploader, "A", "", "")
	b, _ := forum.Share(ctx, uploader, "B", "", "")
	_, _ = forum.Share(ctx, uploader, "C", "", "")
	_, _ = forum.Share(ctx, reviewer, "Not mine", "", "")
	require.NoError(t, forum.Review(ctx, admin, a.ID, models.StatusApproved))
	require.NoError(t, forum.Review(ctx, admin, b.ID, models.StatusRejected))

	p, err := NewStatsService(db).Profile(ctx, uploader.UserID)
	require.NoError(t, err)
	assert.Equal(t, &models.ProfileStats{TotalUploaded: 3, Accepted: 1, Rejected: 1, Pending: 1}, p)

	empty, err := NewStatsService(db).Profile(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, &models.ProfileStats{}, empty)
}
