package services

import (
	"context"
	"io"
	"sync"

	"github.com/dmitrijs2005/briefly/internal/client/models"
	"github.com/dmitrijs2005/briefly/internal/client/repositories/session"
)

type memStorage struct {
	mu      sync.Mutex
	rec     *session.Record
	loadErr error
	saveErr error
	clears  int
}

func (m *memStorage) Load(context.Context) (*session.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.rec == nil {
		return nil, session.ErrNoSession
	}
	rec := *m.rec
	return &rec, nil
}

func (m *memStorage) Save(_ context.Context, rec session.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.rec = &rec
	return nil
}

func (m *memStorage) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	m.rec = nil
	m.loadErr = nil
	return nil
}

func (m *memStorage) stored() *session.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec
}

type fakeAuth struct {
	LoginRet    *models.LoginResult
	LoginErr    error
	RegisterErr error

	LastCreds    models.Credentials
	LastRegister models.Registration
	LoginCalls   int
	RegCalls     int
}

func (f *fakeAuth) Login(_ context.Context, creds models.Credentials) (*models.LoginResult, error) {
	f.LoginCalls++
	f.LastCreds = creds
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	res := *f.LoginRet
	return &res, nil
}

func (f *fakeAuth) Register(_ context.Context, reg models.Registration) error {
	f.RegCalls++
	f.LastRegister = reg
	return f.RegisterErr
}

// fakeAPI implements client.Client for SummarySync tests. Block, when set,
// is waited on inside DeleteSummary.
type fakeAPI struct {
	mu sync.Mutex

	ListRet       []models.Summary
	ListErr       error
	SharedRet     []models.SharedSummary
	SharedErr     error
	GetRet        *models.Summary
	GetErr        error
	CreateRet     models.ID
	CreateErr     error
	UploadRet     models.ID
	UploadErr     error
	DeleteErr     error
	ShareErr      error
	RegenerateErr error
	DownloadBody  string
	DownloadErr   error

	Block   chan struct{}
	Entered chan struct{}

	calls        map[string]int
	LastCreate   models.CreateSummaryRequest
	LastUpload   models.NewSummary
	LastShare    models.ShareRequest
	LastRegen    models.RegenerateRequest
	LastDelete   models.ID
	LastDownload models.ID
}

func (f *fakeAPI) called(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeAPI) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) Close() error { return nil }

func (f *fakeAPI) Register(context.Context, models.Registration) error {
	f.called("Register")
	return nil
}

func (f *fakeAPI) Login(context.Context, models.Credentials) (*models.LoginResult, error) {
	f.called("Login")
	return nil, nil
}

func (f *fakeAPI) ListSummaries(context.Context, models.ID) ([]models.Summary, error) {
	f.called("ListSummaries")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]models.Summary(nil), f.ListRet...), nil
}

func (f *fakeAPI) ListSharedSummaries(context.Context, models.ID) ([]models.SharedSummary, error) {
	f.called("ListSharedSummaries")
	if f.SharedErr != nil {
		return nil, f.SharedErr
	}
	return append([]models.SharedSummary(nil), f.SharedRet...), nil
}

func (f *fakeAPI) GetSummary(context.Context, models.ID) (*models.Summary, error) {
	f.called("GetSummary")
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	s := *f.GetRet
	return &s, nil
}

func (f *fakeAPI) CreateSummary(_ context.Context, req models.CreateSummaryRequest) (models.ID, error) {
	f.called("CreateSummary")
	f.LastCreate = req
	return f.CreateRet, f.CreateErr
}

func (f *fakeAPI) UploadSummary(_ context.Context, _ models.ID, in models.NewSummary) (models.ID, error) {
	f.called("UploadSummary")
	f.LastUpload = in
	return f.UploadRet, f.UploadErr
}

func (f *fakeAPI) DeleteSummary(_ context.Context, id models.ID) error {
	f.called("DeleteSummary")
	f.LastDelete = id
	if f.Entered != nil {
		f.Entered <- struct{}{}
	}
	if f.Block != nil {
		<-f.Block
	}
	return f.DeleteErr
}

func (f *fakeAPI) ShareSummary(_ context.Context, req models.ShareRequest) error {
	f.called("ShareSummary")
	f.LastShare = req
	return f.ShareErr
}

func (f *fakeAPI) RegenerateSummary(_ context.Context, req models.RegenerateRequest) error {
	f.called("RegenerateSummary")
	f.LastRegen = req
	return f.RegenerateErr
}

func (f *fakeAPI) DownloadInputFile(_ context.Context, id models.ID, w io.Writer) error {
	f.called("DownloadInputFile")
	f.LastDownload = id
	if f.DownloadErr != nil {
		return f.DownloadErr
	}
	_, err := io.WriteString(w, f.DownloadBody)
	return err
}

type staticPrincipal struct {
	user models.User
	ok   bool
}

func (p staticPrincipal) User() (models.User, bool) { return p.user, p.ok }
