package services

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/briefly/internal/client/client"
	"github.com/dmitrijs2005/briefly/internal/client/models"
	"github.com/dmitrijs2005/briefly/internal/common"
	"github.com/dmitrijs2005/briefly/internal/logging"
	"golang.org/x/sync/semaphore"
)

// Principal identifies the user on whose behalf summaries are fetched.
type Principal interface {
	User() (models.User, bool)
}

// SummarySync keeps a local copy of the user's summaries in step with the
// backend. Every mutation is followed by a re-fetch of the affected data,
// except Remove which subtracts the deleted record by id.
type SummarySync struct {
	api client.Client
	who Principal
	log logging.Logger

	mu        sync.RWMutex
	summaries []models.Summary
	shared    []models.SharedSummary

	creating     *semaphore.Weighted
	removing     *semaphore.Weighted
	regenerating *semaphore.Weighted
	sharing      *semaphore.Weighted
}

func NewSummarySync(api client.Client, who Principal, log logging.Logger) *SummarySync {
	if log == nil {
		log = logging.Nop()
	}
	return &SummarySync{
		api:          api,
		who:          who,
		log:          log.With("component", "summaries"),
		creating:     semaphore.NewWeighted(1),
		removing:     semaphore.NewWeighted(1),
		regenerating: semaphore.NewWeighted(1),
		sharing:      semaphore.NewWeighted(1),
	}
}

// List replaces the cached summaries with the backend's list for userID.
func (s *SummarySync) List(ctx context.Context, userID models.ID) ([]models.Summary, error) {
	items, err := s.api.ListSummaries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}

	s.mu.Lock()
	s.summaries = items
	s.mu.Unlock()

	s.log.Debug(ctx, "summaries synced", "count", len(items))
	return slices.Clone(items), nil
}

// ListShared replaces the cached shared summaries.
func (s *SummarySync) ListShared(ctx context.Context, userID models.ID) ([]models.SharedSummary, error) {
	items, err := s.api.ListSharedSummaries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shared summaries: %w", err)
	}

	s.mu.Lock()
	s.shared = items
	s.mu.Unlock()

	s.log.Debug(ctx, "shared summaries synced", "count", len(items))
	return slices.Clone(items), nil
}

// Create submits a new summary and re-fetches the list. The new id is
// returned even when the re-fetch fails.
func (s *SummarySync) Create(ctx context.Context, in models.NewSummary) (models.ID, error) {
	if err := validateNewSummary(in); err != nil {
		return "", err
	}
	user, err := s.currentUser()
	if err != nil {
		return "", err
	}
	if !s.creating.TryAcquire(1) {
		return "", ErrInFlight
	}
	defer s.creating.Release(1)

	var id models.ID
	switch in.UploadType {
	case models.UploadTypeText:
		id, err = s.api.CreateSummary(ctx, models.CreateSummaryRequest{
			UserID:      user.ID,
			Type:        in.Type,
			UploadType:  models.UploadTypeText,
			Title:       strings.TrimSpace(in.Title),
			InitialData: in.Text,
		})
	case models.UploadTypeUpload:
		id, err = s.api.UploadSummary(ctx, user.ID, in)
	}
	if err != nil {
		return "", fmt.Errorf("create summary: %w", err)
	}
	s.log.Info(ctx, "summary created", "summary_id", id)

	if _, err := s.List(ctx, user.ID); err != nil {
		return id, fmt.Errorf("summary %s created, refresh failed: %w", id, err)
	}
	return id, nil
}

// Remove deletes a summary and drops it from the cache by id.
func (s *SummarySync) Remove(ctx context.Context, id models.ID) error {
	if id == "" {
		return invalid("id", "is required")
	}
	if !s.removing.TryAcquire(1) {
		return ErrInFlight
	}
	defer s.removing.Release(1)

	if err := s.api.DeleteSummary(ctx, id); err != nil {
		return fmt.Errorf("delete summary: %w", err)
	}

	s.mu.Lock()
	s.summaries = slices.DeleteFunc(slices.Clone(s.summaries), func(sm models.Summary) bool {
		return sm.ID == id
	})
	s.mu.Unlock()

	s.log.Info(ctx, "summary deleted", "summary_id", id)
	return nil
}

// Regenerate asks the backend to redo a summary using feedback, then
// re-fetches that record and replaces it in place.
func (s *SummarySync) Regenerate(ctx context.Context, id models.ID, feedback string) (*models.Summary, error) {
	if id == "" {
		return nil, invalid("id", "is required")
	}
	if strings.TrimSpace(feedback) == "" {
		return nil, invalid("feedback", "is required")
	}
	if !s.regenerating.TryAcquire(1) {
		return nil, ErrInFlight
	}
	defer s.regenerating.Release(1)

	err := s.api.RegenerateSummary(ctx, models.RegenerateRequest{SummaryID: id, Feedback: feedback})
	if err != nil {
		return nil, fmt.Errorf("regenerate summary: %w", err)
	}

	fresh, err := s.api.GetSummary(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("summary %s regenerated, refresh failed: %w", id, err)
	}

	s.mu.Lock()
	if i := slices.IndexFunc(s.summaries, func(sm models.Summary) bool { return sm.ID == id }); i >= 0 {
		next := slices.Clone(s.summaries)
		next[i] = *fresh
		s.summaries = next
	}
	s.mu.Unlock()

	s.log.Info(ctx, "summary regenerated", "summary_id", id)
	out := *fresh
	return &out, nil
}

// Share grants recipient access to a summary and re-fetches the shared list.
func (s *SummarySync) Share(ctx context.Context, id models.ID, recipient string) error {
	if id == "" {
		return invalid("id", "is required")
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return invalid("recipient", "is required")
	}
	user, err := s.currentUser()
	if err != nil {
		return err
	}
	if !s.sharing.TryAcquire(1) {
		return ErrInFlight
	}
	defer s.sharing.Release(1)

	if err := s.api.ShareSummary(ctx, models.ShareRequest{SummaryID: id, Recipient: recipient}); err != nil {
		return fmt.Errorf("share summary: %w", err)
	}
	s.log.Info(ctx, "summary shared", "summary_id", id)

	if _, err := s.ListShared(ctx, user.ID); err != nil {
		return fmt.Errorf("summary %s shared, refresh failed: %w", id, err)
	}
	return nil
}

// DownloadInput streams the originally uploaded file of a summary to w.
func (s *SummarySync) DownloadInput(ctx context.Context, id models.ID, w io.Writer) (string, error) {
	sm, ok := s.Find(id)
	if !ok {
		return "", fmt.Errorf("summary %s: %w", id, common.ErrorNotFound)
	}
	if sm.UploadType != models.UploadTypeUpload || sm.FileID == "" {
		return "", invalid("id", "summary has no uploaded input file")
	}

	if err := s.api.DownloadInputFile(ctx, sm.FileID, w); err != nil {
		return "", fmt.Errorf("download input: %w", err)
	}
	return sm.FileName, nil
}

func (s *SummarySync) Summaries() []models.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.summaries)
}

func (s *SummarySync) Shared() []models.SharedSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.shared)
}

// Find looks id up among own summaries, then shared ones.
func (s *SummarySync) Find(id models.ID) (models.Summary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sm := range s.summaries {
		if sm.ID == id {
			return sm, true
		}
	}
	for _, sh := range s.shared {
		if sh.ID == id {
			return sh.Summary, true
		}
	}
	return models.Summary{}, false
}

// Reset drops the cached collections, e.g. after logout.
func (s *SummarySync) Reset() {
	s.mu.Lock()
	s.summaries = nil
	s.shared = nil
	s.mu.Unlock()
}

func (s *SummarySync) currentUser() (models.User, error) {
	user, ok := s.who.User()
	if !ok || user.ID == "" {
		return models.User{}, client.ErrUnauthenticated
	}
	return user, nil
}
