// Package notify holds the scheduled notification jobs: the daily paper
// update and the weekly topic digest.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mikeboe/thesis-herald/pkg/arxiv"
	"github.com/mikeboe/thesis-herald/pkg/bot"
	"github.com/mikeboe/thesis-herald/pkg/history"
	"github.com/mikeboe/thesis-herald/pkg/scheduler"
)

const (
	DailyJobName  = "daily-papers"
	DigestJobName = "weekly-digest"

	digestThreadTopicLimit = 60
)

// CategorySearcher fetches the most recent papers of some categories.
type CategorySearcher interface {
	SearchByCategory(ctx context.Context, categories []string, limit int) ([]arxiv.Paper, error)
}

// DigestWriter writes a digest for a topic.
type DigestWriter interface {
	Digest(ctx context.Context, topic, language string) string
}

type DigestSettings struct {
	Enabled   bool
	Topics    []string
	ChannelID string
	Language  string
	Day       time.Weekday
	Time      string
}

// Notifier runs the notification jobs. Each run is recorded in History
// together with its log lines.
type Notifier struct {
	Repo       CategorySearcher
	Poster     *bot.Poster
	Writer     DigestWriter
	History    history.Store
	Categories []string
	MaxResults int
	ChannelID  string
	Time       string
	Digest     DigestSettings
	Logger     *slog.Logger

	now func() time.Time
}

// SendDaily fetches the newest papers of the configured categories and
// posts them to the notification channel. It returns the number of papers
// found.
func (n *Notifier) SendDaily(ctx context.Context) (int, error) {
	finish, log := n.startRun(ctx, history.KindDailyPapers, strings.Join(n.Categories, ","))
	log.Info("Running daily paper notification task", "categories", n.Categories)

	papers, err := n.Repo.SearchByCategory(ctx, n.Categories, n.MaxResults)
	if err != nil {
		var unavailable *arxiv.UnavailableError
		if errors.As(err, &unavailable) {
			log.Error("arXiv API error in daily notification", "status", unavailable.StatusCode, "error", err)
		} else {
			log.Error("Error in daily paper notification", "error", err)
		}
		finish(err, "")
		return 0, err
	}

	delivered, err := n.Poster.PostDaily(ctx, n.ChannelID, papers)
	if err != nil {
		log.Error("failed to post daily papers", "channel", n.ChannelID, "error", err)
		finish(err, "")
		return 0, err
	}

	log.Info("Successfully sent papers", "channel", n.ChannelID, "found", len(papers), "delivered", delivered)
	finish(nil, fmt.Sprintf("sent %d of %d papers", delivered, len(papers)))
	return len(papers), nil
}

// DailyJob adapts SendDaily to a scheduler job.
func (n *Notifier) DailyJob(ctx context.Context) error {
	_, err := n.SendDaily(ctx)
	return err
}

// WeeklyDigest posts one digest thread per configured topic. A failing
// topic does not stop the others.
func (n *Notifier) WeeklyDigest(ctx context.Context) error {
	n.Logger.Info("Running weekly digest notification task")

	switch {
	case !n.Digest.Enabled:
		n.Logger.Info("Weekly digest is disabled, skipping")
		return nil
	case len(n.Digest.Topics) == 0:
		n.Logger.Warn("No digest topics configured, skipping")
		return nil
	case n.Writer == nil:
		n.Logger.Error("LLM client not available, cannot generate digest")
		return nil
	}

	channelID := n.Digest.ChannelID
	if channelID == "" {
		channelID = n.ChannelID
	}

	var errs []error
	for _, topic := range n.Digest.Topics {
		if err := n.digestTopic(ctx, channelID, topic); err != nil {
			errs = append(errs, fmt.Errorf("topic %q: %w", topic, err))
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) digestTopic(ctx context.Context, channelID, topic string) error {
	finish, log := n.startRun(ctx, history.KindWeeklyDigest, topic)
	log.Info("Generating digest for topic", "topic", topic)

	digest := n.Writer.Digest(ctx, topic, n.Digest.Language)

	header := fmt.Sprintf("📊 Weekly digest for: **%s**", topic)
	thread := fmt.Sprintf("Weekly Digest: %s - %s", arxiv.Truncate(topic, digestThreadTopicLimit), n.clock().Format("2006-01-02"))
	if err := n.Poster.PostThreadText(ctx, channelID, header, thread, digest); err != nil {
		log.Error("failed to send digest", "topic", topic, "channel", channelID, "error", err)
		finish(err, "")
		return err
	}

	log.Info("Successfully sent digest for topic", "topic", topic)
	finish(nil, fmt.Sprintf("sent digest to %s", channelID))
	return nil
}

// Schedule registers the daily job and, when enabled, the weekly digest.
func (n *Notifier) Schedule(s *scheduler.Scheduler) error {
	n.Logger.Info("Scheduling daily notification", "time", n.Time)
	if err := s.Daily(DailyJobName, n.Time, n.DailyJob); err != nil {
		return fmt.Errorf("failed to schedule daily notification: %w", err)
	}

	if !n.Digest.Enabled {
		n.Logger.Info("Weekly digest is disabled, skipping scheduling")
		return nil
	}
	n.Logger.Info("Scheduling weekly digest", "day", n.Digest.Day, "time", n.Digest.Time)
	if err := s.Weekly(DigestJobName, n.Digest.Day, n.Digest.Time, n.WeeklyDigest); err != nil {
		return fmt.Errorf("failed to schedule weekly digest: %w", err)
	}
	return nil
}

// Weekday converts a day index where 0 is Monday. Out of range values
// fall back to Monday.
func Weekday(day int) time.Weekday {
	if day < 0 || day > 6 {
		return time.Monday
	}
	return time.Weekday((day + 1) % 7)
}

// startRun records a new run and returns a logger that also writes to the
// run log, plus a function that marks the run finished.
func (n *Notifier) startRun(ctx context.Context, kind, subject string) (func(err error, detail string), *slog.Logger) {
	log := n.Logger.With("job", kind)
	if !history.Enabled(n.History) {
		return func(error, string) {}, log
	}

	run, err := n.History.CreateRun(ctx, kind, subject)
	if err != nil {
		log.Warn("failed to record job run", "error", err)
		return func(error, string) {}, log
	}

	log = slog.New(history.NewLogHandler(n.History, run.ID, n.Logger.Handler())).With("job", kind)
	finish := func(runErr error, detail string) {
		status := history.StatusCompleted
		if runErr != nil {
			status, detail = history.StatusFailed, runErr.Error()
		}
		if err := n.History.FinishRun(context.WithoutCancel(ctx), run.ID, status, detail); err != nil {
			n.Logger.Warn("failed to update job run", "run", run.ID, "error", err)
		}
	}
	return finish, log
}

func (n *Notifier) clock() time.Time {
	if n.now != nil {
		return n.now()
	}
	return time.Now()
}
