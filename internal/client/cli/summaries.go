package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/briefly/internal/client/client"
	"github.com/dmitrijs2005/briefly/internal/client/models"
	"github.com/dmitrijs2005/briefly/internal/common"
)

var summaryTypes = []string{
	string(models.SummaryTypeCode),
	string(models.SummaryTypeDocumentation),
	string(models.SummaryTypeResearch),
}

func (a *App) currentUser(ctx context.Context) (models.User, error) {
	user, ok := a.session.User()
	if !ok {
		return models.User{}, a.check(ctx, client.ErrUnauthenticated)
	}
	return user, nil
}

// List fetches and prints the user's summaries.
func (a *App) List(ctx context.Context) error {
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	var items []models.Summary
	err = a.withLoading("Loading summaries", func() error {
		items, err = a.summaries.List(ctx, user.ID)
		return err
	})
	if err != nil {
		return a.check(ctx, err)
	}

	printSummaries(a.out, items)
	return nil
}

// Shared fetches and prints the summaries shared with the user.
func (a *App) Shared(ctx context.Context) error {
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	var items []models.SharedSummary
	err = a.withLoading("Loading shared summaries", func() error {
		items, err = a.summaries.ListShared(ctx, user.ID)
		return err
	})
	if err != nil {
		return a.check(ctx, err)
	}

	printShared(a.out, items)
	return nil
}

// Show prints one summary, looking it up in the local collection first.
func (a *App) Show(ctx context.Context, id string) error {
	sm, ok := a.summaries.Find(models.ID(id))
	if !ok {
		if err := a.refresh(ctx); err != nil {
			return err
		}
		if sm, ok = a.summaries.Find(models.ID(id)); !ok {
			return fmt.Errorf("summary %s: %w", id, common.ErrorNotFound)
		}
	}

	printSummary(a.out, sm)
	return nil
}

// New prompts for the input of a new summary and submits it.
func (a *App) New(ctx context.Context) error {
	kind, err := GetChoice(a.reader, "Summary type", summaryTypes, a.out)
	if err != nil {
		return err
	}
	title, err := getSimpleText(a.reader, "Title (optional)", a.out)
	if err != nil {
		return err
	}
	source, err := GetChoice(a.reader, "Input", []string{"text", "file"}, a.out)
	if err != nil {
		return err
	}

	in := models.NewSummary{Type: models.SummaryType(kind), Title: title}

	if source == "text" {
		in.UploadType = models.UploadTypeText
		if in.Text, err = GetMultiline(a.reader, "Paste the text to summarize", a.out); err != nil {
			return err
		}
	} else {
		in.UploadType = models.UploadTypeUpload
		path, err := getSimpleText(a.reader, "Path of the file to upload", a.out)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		in.File = f
		in.FileName = filepath.Base(path)
	}

	var id models.ID
	err = a.withLoading("Summarizing", func() error {
		id, err = a.summaries.Create(ctx, in)
		return err
	})
	if err != nil {
		if id != "" {
			fmt.Fprintf(a.out, "Summary %s was created.\n", id)
		}
		return a.check(ctx, err)
	}

	fmt.Fprintf(a.out, "Summary %s created.\n", id)
	if sm, ok := a.summaries.Find(id); ok {
		printSummary(a.out, sm)
	}
	return nil
}

// Delete removes a summary after confirmation.
func (a *App) Delete(ctx context.Context, id string) error {
	ok, err := Confirm(a.reader, fmt.Sprintf("Delete summary %s?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	err = a.withLoading("Deleting", func() error {
		return a.summaries.Remove(ctx, models.ID(id))
	})
	if err != nil {
		return a.check(ctx, err)
	}

	fmt.Fprintf(a.out, "Summary %s deleted.\n", id)
	return nil
}

// Regenerate asks for feedback and prints the regenerated summary.
func (a *App) Regenerate(ctx context.Context, id string) error {
	feedback, err := GetMultiline(a.reader, "What should be improved?", a.out)
	if err != nil {
		return err
	}

	var sm *models.Summary
	err = a.withLoading("Regenerating", func() error {
		sm, err = a.summaries.Regenerate(ctx, models.ID(id), feedback)
		return err
	})
	if err != nil {
		return a.check(ctx, err)
	}

	printSummary(a.out, *sm)
	return nil
}

// Share asks for a recipient email or username and shares the summary with them.
func (a *App) Share(ctx context.Context, id string) error {
	recipient, err := getSimpleText(a.reader, "Recipient email or username", a.out)
	if err != nil {
		return err
	}

	err = a.withLoading("Sharing", func() error {
		return a.summaries.Share(ctx, models.ID(id), recipient)
	})
	if err != nil {
		return a.check(ctx, err)
	}

	fmt.Fprintf(a.out, "Summary %s shared with %s.\n", id, strings.TrimSpace(recipient))
	return nil
}

// Download saves the uploaded input file of a summary to path, or to its
// original file name in the working directory.
func (a *App) Download(ctx context.Context, id, path string) (err error) {
	sm, ok := a.summaries.Find(models.ID(id))
	if !ok {
		return fmt.Errorf("summary %s: %w", id, common.ErrorNotFound)
	}
	if path == "" {
		path = filepath.Base(sm.FileName)
	}
	if path == "" || path == "." {
		path = "summary-" + id + ".input"
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	err = a.withLoading("Downloading", func() error {
		_, err := a.summaries.DownloadInput(ctx, models.ID(id), f)
		return err
	})
	if err != nil {
		return a.check(ctx, err)
	}

	fmt.Fprintf(a.out, "Saved %s\n", path)
	return nil
}

// Refresh re-fetches own and shared summaries.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d summaries, %d shared with you.\n",
		len(a.summaries.Summaries()), len(a.summaries.Shared()))
	return nil
}

func (a *App) refresh(ctx context.Context) error {
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	err = a.withLoading("Refreshing", func() error {
		if _, err := a.summaries.List(ctx, user.ID); err != nil {
			return err
		}
		_, err := a.summaries.ListShared(ctx, user.ID)
		return err
	})
	return a.check(ctx, err)
}

// Stats prints per-route request counters collected in this process.
func (a *App) Stats(context.Context) error {
	stats, err := a.metrics.Snapshot()
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Fprintln(a.out, "No requests yet.")
		return nil
	}
	for _, s := range stats {
		fmt.Fprintln(a.out, s.String())
	}
	return nil
}
