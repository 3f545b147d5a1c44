package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/markdave123-py/DocShare/internal/core"
	"github.com/markdave123-py/DocShare/internal/models"
)

const (
	recentPerKind   = 5
	recentActivityN = 8
)

type StatsService struct {
	db core.DbClient
}

func NewStatsService(db core.DbClient) *StatsService {
	return &StatsService{db: db}
}

// Dashboard aggregates forum wide counts plus the latest uploads and comments.
func (s *StatsService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	counts, err := s.db.CountDocumentsByStatus(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	stats := &models.DashboardStats{
		Approved: counts[models.StatusApproved],
		Rejected: counts[models.StatusRejected],
		Pending:  counts[models.StatusPending],
	}
	for _, n := range counts {
		stats.TotalDocs += n
	}

	docs, err := s.db.RecentDocuments(ctx, recentPerKind)
	if err != nil {
		return nil, fmt.Errorf("recent documents: %w", err)
	}
	comments, err := s.db.RecentComments(ctx, recentPerKind)
	if err != nil {
		return nil, fmt.Errorf("recent comments: %w", err)
	}

	names := map[string]string{}
	userName := func(id string) (string, error) {
		if n, ok := names[id]; ok {
			return n, nil
		}
		u, err := s.db.GetUserByID(ctx, id)
		if err != nil {
			return "", err
		}
		n := "Unknown"
		if u != nil {
			n = u.Name
		}
		names[id] = n
		return n, nil
	}

	titles := map[string]string{}
	for _, d := range docs {
		titles[d.ID] = d.Title
	}
	docTitle := func(id string) (string, error) {
		if t, ok := titles[id]; ok {
			return t, nil
		}
		d, err := s.db.GetDocumentByID(ctx, id)
		if err != nil {
			return "", err
		}
		t := "Unknown document"
		if d != nil {
			t = d.Title
		}
		titles[id] = t
		return t, nil
	}

	activity := make([]models.Activity, 0, len(docs)+len(comments))
	for _, d := range docs {
		name, err := userName(d.UploaderID)
		if err != nil {
			return nil, fmt.Errorf("resolve uploader: %w", err)
		}
		activity = append(activity, models.Activity{
			User: name, Action: "uploaded", Doc: d.Title,
			Date: d.CreatedAt.Format("2006-01-02"), At: d.CreatedAt,
		})
	}
	for _, c := range comments {
		name := c.UserName
		if name == "" {
			if name, err = userName(c.UserID); err != nil {
				return nil, fmt.Errorf("resolve commenter: %w", err)
			}
		}
		title, err := docTitle(c.DocumentID)
		if err != nil {
			return nil, fmt.Errorf("resolve document: %w", err)
		}
		activity = append(activity, models.Activity{
			User: name, Action: "commented", Doc: title,
			Date: c.CreatedAt.Format("2006-01-02"), At: c.CreatedAt,
		})
	}

	sort.SliceStable(activity, func(i, j int) bool { return activity[i].At.After(activity[j].At) })
	if len(activity) > recentActivityN {
		activity = activity[:recentActivityN]
	}
	stats.RecentActivity = activity
	return stats, nil
}

// Profile counts the submissions of one user by review state.
func (s *StatsService) Profile(ctx context.Context, userID string) (*models.ProfileStats, error) {
	counts, err := s.db.CountDocumentsByStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	p := &models.ProfileStats{
		Accepted: counts[models.StatusApproved],
		Rejected: counts[models.StatusRejected],
		Pending:  counts[models.StatusPending],
	}
	for _, n := range counts {
		p.TotalUploaded += n
	}
	return p, nil
}
