package line

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/linekit/internal/catalog"
	"github.com/flemzord/linekit/internal/core"
	"github.com/flemzord/linekit/internal/cron"
	"github.com/flemzord/linekit/internal/gateway"
	"github.com/flemzord/linekit/internal/media"
	"github.com/flemzord/linekit/internal/reply"
	"github.com/flemzord/linekit/internal/router"
	"github.com/flemzord/linekit/internal/security"
)

// ModuleID is the id the module registers under.
const ModuleID core.ModuleID = "channel.line"

func init() {
	core.RegisterModule(&Line{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Line)(nil)
	_ core.Provisioner  = (*Line)(nil)
	_ core.Validator    = (*Line)(nil)
	_ core.Starter      = (*Line)(nil)
	_ core.Stopper      = (*Line)(nil)
)

// Line implements the LINE Messaging API channel.
type Line struct {
	config Config
	logger *slog.Logger
	appCtx *core.AppContext
	client *Client
	audit  *security.AuditLogger

	// Set by Bind.
	mu        sync.Mutex
	bound     bool
	router    *router.Router
	fetcher   *media.Fetcher
	scheduler *cron.Scheduler
}

// ModuleInfo implements core.Module.
func (l *Line) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  ModuleID,
		New: func() core.Module { return &Line{} },
	}
}

// Configure implements core.Configurable.
func (l *Line) Configure(node *yaml.Node) error {
	if err := node.Decode(&l.config); err != nil {
		return fmt.Errorf("line: decode config: %w", err)
	}
	l.config.defaults()
	return nil
}

// Provision implements core.Provisioner. It registers the channel
// credentials for log redaction and creates the API client. A relative
// download_dir is resolved against the data directory.
func (l *Line) Provision(ctx *core.AppContext) error {
	l.appCtx = ctx
	l.logger = ctx.Logger
	l.config.defaults()
	if !filepath.IsAbs(l.config.DownloadDir) && ctx.DataDir != "" {
		l.config.DownloadDir = filepath.Join(ctx.DataDir, l.config.DownloadDir)
	}

	if store, ok := core.ServiceAs[*security.CredentialStore](ctx, "security.credentials"); ok {
		store.Set(security.CredentialAccessToken, l.config.ChannelAccessToken)
		store.Set(security.CredentialChannelSecret, l.config.ChannelSecret)
		if r, ok := core.ServiceAs[*security.Redactor](ctx, "security.redactor"); ok {
			r.SyncCredentials(store)
		}
	}
	if audit, ok := core.ServiceAs[*security.AuditLogger](ctx, "security.audit"); ok {
		l.audit = audit
	}

	client, err := NewClient(l.config.ChannelAccessToken, l.config.APIEndpoint, l.config.DataEndpoint)
	if err != nil {
		return err
	}
	client.SetAuditLogger(l.audit)
	l.client = client
	return nil
}

// Validate implements core.Validator.
func (l *Line) Validate() error {
	return l.config.validate()
}

// Bind builds the reply pipeline against the public base URL and attaches
// the webhook and the download directory to gw. It must be called once,
// before Start.
func (l *Line) Bind(baseURL string, gw *gateway.Gateway) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.bound {
		return errors.New("line: already bound")
	}
	if baseURL == "" {
		return errors.New("line: base URL is required")
	}

	cat := catalog.Default()
	if l.config.CatalogFile != "" {
		loaded, err := catalog.Load(l.config.CatalogFile)
		if err != nil {
			return fmt.Errorf("line: %w", err)
		}
		cat = loaded
	}

	fetcher, err := media.NewFetcher(media.Config{
		Dir:        l.config.DownloadDir,
		BaseURL:    baseURL,
		Downloader: l.client,
		Transcoder: media.NewExecTranscoder(l.config.Media.Converter),
		Logger:     l.logger,
	})
	if err != nil {
		return fmt.Errorf("line: %w", err)
	}

	r, err := router.NewRouter(router.Config{
		Platform: l.client,
		Builder:  reply.New(baseURL, cat),
		Media:    fetcher,
		Logger:   l.logger,
		Metrics:  gw.Metrics(),
	})
	if err != nil {
		return fmt.Errorf("line: %w", err)
	}

	receiver := NewWebhookReceiver(l.config.ChannelSecret, r, l.logger, l.audit)
	gw.Dispatcher().Register(l.config.WebhookPath, receiver)
	gw.Mount(media.PublicPrefix, fetcher.Dir())

	l.router = r
	l.fetcher = fetcher
	l.bound = true
	l.logger.Info("listening on " + baseURL + l.config.WebhookPath)
	return nil
}

// Start implements core.Starter. It schedules the media retention job.
func (l *Line) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.bound {
		return errors.New("line: Bind must be called before Start")
	}

	maxAge := l.config.Media.Retention.maxAge()
	if maxAge == 0 {
		l.logger.Info("line: media retention disabled")
		return nil
	}

	sched := cron.NewScheduler(l.logger)
	job := &cron.MediaRetentionJob{
		Store:        l.fetcher,
		MaxAge:       maxAge,
		Logger:       l.logger,
		ScheduleExpr: l.config.Media.Retention.Schedule,
	}
	if err := sched.RegisterJob(job); err != nil {
		return fmt.Errorf("line: %w", err)
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("line: %w", err)
	}
	sched.RunNow(job.Name())
	l.scheduler = sched
	return nil
}

// Stop implements core.Stopper.
func (l *Line) Stop(ctx context.Context) error {
	l.mu.Lock()
	sched := l.scheduler
	l.scheduler = nil
	l.mu.Unlock()

	if sched == nil {
		return nil
	}
	return sched.Stop(ctx)
}
