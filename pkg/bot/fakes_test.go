package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mikeboe/thesis-herald/pkg/arxiv"
	"github.com/mikeboe/thesis-herald/pkg/history"
)

type sentMessage struct {
	ChannelID string
	Content   string
}

type fakeMessenger struct {
	mu       sync.Mutex
	sent     []sentMessage
	threads  []string
	failOn   map[string]bool
	failSend bool
	next     int
}

func (m *fakeMessenger) Send(ctx context.Context, channelID, content string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSend || m.failOn[content] {
		return "", errors.New("send failed")
	}
	m.sent = append(m.sent, sentMessage{ChannelID: channelID, Content: content})
	m.next++
	return fmt.Sprintf("msg-%d", m.next), nil
}

func (m *fakeMessenger) StartThread(ctx context.Context, channelID, messageID, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threads = append(m.threads, name)
	return "thread-" + messageID, nil
}

func (m *fakeMessenger) contents(channelID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.sent {
		if s.ChannelID == channelID {
			out = append(out, s.Content)
		}
	}
	return out
}

type fakeInteraction struct {
	channel   string
	user      string
	deferred  bool
	responses []string
	followups []string
}

func (i *fakeInteraction) Respond(ctx context.Context, content string) error {
	i.responses = append(i.responses, content)
	return nil
}

func (i *fakeInteraction) Defer(ctx context.Context) error {
	i.deferred = true
	return nil
}

func (i *fakeInteraction) Followup(ctx context.Context, content string) error {
	i.followups = append(i.followups, content)
	return nil
}

func (i *fakeInteraction) ChannelID() string { return i.channel }
func (i *fakeInteraction) UserID() string    { return i.user }

type fakeRepo struct {
	papers     []arxiv.Paper
	err        error
	gotLimit   int
	gotKw      []string
	gotCats    []string
	byID       map[string]*arxiv.Paper
	lookupsRun int
}

func (r *fakeRepo) SearchByCategory(ctx context.Context, categories []string, limit int) ([]arxiv.Paper, error) {
	r.gotCats, r.gotLimit = categories, limit
	return r.papers, r.err
}

func (r *fakeRepo) SearchByKeywords(ctx context.Context, keywords, categories []string, limit int) ([]arxiv.Paper, error) {
	r.gotKw, r.gotCats, r.gotLimit = keywords, categories, limit
	return r.papers, r.err
}

func (r *fakeRepo) GetByID(ctx context.Context, idOrURL string) (*arxiv.Paper, error) {
	r.lookupsRun++
	if r.err != nil {
		return nil, r.err
	}
	id, _ := arxiv.ExtractID(idOrURL)
	return r.byID[id], nil
}

type fakeAssistant struct {
	answer string
}

func (a *fakeAssistant) Converse(ctx context.Context, question string) string {
	return a.answer
}

func (a *fakeAssistant) Summarize(ctx context.Context, paper arxiv.Paper, language string) string {
	return fmt.Sprintf("summary of %s in %s", paper.ID, language)
}

func (a *fakeAssistant) Digest(ctx context.Context, topic, language string) string {
	return fmt.Sprintf("digest of %s in %s", topic, language)
}

type fakeTranslator struct {
	err error
}

func (t *fakeTranslator) Translate(ctx context.Context, text, language string) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	return "[" + language + "] " + text, nil
}

type memoryHistory struct {
	history.NopStore
	exchanges []history.Exchange
}

func (h *memoryHistory) SaveExchange(ctx context.Context, e *history.Exchange) error {
	h.exchanges = append(h.exchanges, *e)
	return nil
}

func samplePapers(n int) []arxiv.Paper {
	papers := make([]arxiv.Paper, n)
	for i := range papers {
		papers[i] = arxiv.Paper{
			ID:         fmt.Sprintf("2401.0000%d", i+1),
			Title:      fmt.Sprintf("Paper %d", i+1),
			Authors:    []string{"Ada Lovelace"},
			Abstract:   "An abstract.",
			PDFURL:     fmt.Sprintf("https://arxiv.org/pdf/2401.0000%d", i+1),
			Categories: []string{"cs.AI"},
		}
	}
	return papers
}
