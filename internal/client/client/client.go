package client

import (
	"context"
	"io"
	"time"

	"github.com/dmitrijs2005/briefly/internal/client/models"
)

// Client is the backend API contract used by the services layer.
type Client interface {
	Close() error
	Register(ctx context.Context, reg models.Registration) error
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error)
	ListSummaries(ctx context.Context, userID models.ID) ([]models.Summary, error)
	ListSharedSummaries(ctx context.Context, userID models.ID) ([]models.SharedSummary, error)
	GetSummary(ctx context.Context, id models.ID) (*models.Summary, error)
	CreateSummary(ctx context.Context, req models.CreateSummaryRequest) (models.ID, error)
	UploadSummary(ctx context.Context, userID models.ID, in models.NewSummary) (models.ID, error)
	DeleteSummary(ctx context.Context, id models.ID) error
	ShareSummary(ctx context.Context, req models.ShareRequest) error
	RegenerateSummary(ctx context.Context, req models.RegenerateRequest) error
	DownloadInputFile(ctx context.Context, fileID models.ID, w io.Writer) error
}

// TokenSource supplies the bearer token for authenticated calls. It returns
// ErrUnauthenticated when there is no usable session.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Observer receives per-call measurements.
type Observer interface {
	RequestStarted()
	RequestFinished()
	ObserveRequest(method, route, outcome string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) RequestStarted()                                      {}
func (nopObserver) RequestFinished()                                     {}
func (nopObserver) ObserveRequest(string, string, string, time.Duration) {}
