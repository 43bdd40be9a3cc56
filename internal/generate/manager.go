package generate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"slidehub/internal/filestore"
	"slidehub/internal/notify"
	"slidehub/internal/page"
	snc "slidehub/internal/sync"
	"slidehub/pkg/models"
)

// ErrQueueFull is returned by Enqueue when the job buffer is saturated.
var ErrQueueFull = errors.New("generation queue full")

type job struct {
	projectID string
	pageID    string
}

// Manager runs page image generation on a fixed worker pool. Jobs move a
// page through generating → completed/failed and broadcast events at both
// edges. There is no rollback: a failed page keeps its previous image, only
// its status records the failure.
type Manager struct {
	pages  *page.Repo
	files  *filestore.Store
	hub    *snc.Hub
	notify *notify.Server
	log    *zap.SugaredLogger
	jobs   chan job
}

func NewManager(pages *page.Repo, files *filestore.Store, hub *snc.Hub, notifier *notify.Server, log *zap.SugaredLogger) *Manager {
	return &Manager{
		pages:  pages,
		files:  files,
		hub:    hub,
		notify: notifier,
		log:    log,
		jobs:   make(chan job, 64),
	}
}

// Enqueue schedules a page render. Non-blocking; a saturated queue is
// reported to the caller rather than stalling the request.
func (m *Manager) Enqueue(projectID, pageID string) error {
	select {
	case m.jobs <- job{projectID: projectID, pageID: pageID}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run consumes jobs with the given number of workers until ctx is canceled.
func (m *Manager) Run(ctx context.Context, workers int) error {
	if workers <= 0 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case j := <-m.jobs:
					m.process(ctx, j)
				}
			}
		})
	}
	return g.Wait()
}

func (m *Manager) process(ctx context.Context, j job) {
	if err := m.setStatus(ctx, j, models.PageStatusGenerating); err != nil {
		m.log.Errorw("mark generating failed", "error", err, "page_id", j.pageID)
		return
	}
	m.broadcast(snc.EventGenerationStarted, j, models.PageStatusGenerating)

	status := models.PageStatusCompleted
	if err := m.render(ctx, j); err != nil {
		m.log.Errorw("page render failed", "error", err, "page_id", j.pageID)
		status = models.PageStatusFailed
		if err := m.setStatus(ctx, j, status); err != nil {
			m.log.Errorw("mark failed failed", "error", err, "page_id", j.pageID)
		}
	}

	m.broadcast(snc.EventGenerationFinished, j, status)
	if m.notify != nil {
		m.notify.BroadcastPageReady(j.projectID, j.pageID, status)
	}
}

func (m *Manager) render(ctx context.Context, j job) error {
	p, err := m.pages.Get(ctx, j.pageID)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("page %s vanished before render", j.pageID)
	}
	total, err := m.pages.CountByProject(ctx, j.projectID)
	if err != nil {
		return err
	}

	img := RenderSlide(*p, total)
	relPath, err := m.files.SavePageImage(img, j.projectID, j.pageID)
	if err != nil {
		return err
	}

	status := models.PageStatusCompleted
	_, err = m.pages.Update(ctx, j.pageID, page.UpdateFields{
		Status:    &status,
		ImagePath: &relPath,
	})
	return err
}

func (m *Manager) setStatus(ctx context.Context, j job, status string) error {
	_, err := m.pages.Update(ctx, j.pageID, page.UpdateFields{Status: &status})
	return err
}

func (m *Manager) broadcast(eventType string, j job, status string) {
	if m.hub == nil {
		return
	}
	ev := snc.NewEvent(eventType)
	ev.ProjectID = j.projectID
	ev.PageID = j.pageID
	ev.Status = status
	m.hub.Broadcast(ev)
}
