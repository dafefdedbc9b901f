package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostPapers(t *testing.T) {
	m := &fakeMessenger{}
	p := NewPoster(m)

	n, err := p.PostPapers(context.Background(), "chan", "header", "Search: cs.AI (2 papers)", samplePapers(2))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, []string{"header"}, m.contents("chan"))
	assert.Equal(t, []string{"Search: cs.AI (2 papers)"}, m.threads)

	inThread := m.contents("thread-msg-1")
	require.Len(t, inThread, 2)
	assert.True(t, strings.HasPrefix(inThread[0], "**[1/2]**\n**Paper 1**"))
	assert.True(t, strings.HasPrefix(inThread[1], "**[2/2]**\n**Paper 2**"))
}

func TestPostPapersSkipsFailedItems(t *testing.T) {
	papers := samplePapers(3)
	failing := numbered(2, 3, FormatPaper(papers[1]))
	m := &fakeMessenger{failOn: map[string]bool{failing: true}}
	p := NewPoster(m)

	n, err := p.PostPapers(context.Background(), "chan", "header", "thread", papers)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, m.contents("thread-msg-1"), 2)
}

func TestPostPapersHeaderFailure(t *testing.T) {
	p := NewPoster(&fakeMessenger{failSend: true})

	_, err := p.PostPapers(context.Background(), "chan", "header", "thread", samplePapers(1))
	assert.Error(t, err)
}

func TestPostDaily(t *testing.T) {
	m := &fakeMessenger{}
	p := NewPoster(m)

	n, err := p.PostDaily(context.Background(), "chan", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{"No new papers found today."}, m.contents("chan"))

	n, err = p.PostDaily(context.Background(), "chan", samplePapers(3))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Contains(t, m.contents("chan"), "📚 **Daily Paper Update** - Found 3 new papers:")
	require.Len(t, m.threads, 1)
	assert.True(t, strings.HasPrefix(m.threads[0], "Daily Papers: "))
	assert.True(t, strings.HasSuffix(m.threads[0], "(3 papers)"))
}

func TestPosterTranslatesAbstracts(t *testing.T) {
	m := &fakeMessenger{}
	p := NewPoster(m)
	p.Translator = &fakeTranslator{}
	p.Language = "ja"

	_, err := p.PostPapers(context.Background(), "chan", "header", "thread", samplePapers(1))
	require.NoError(t, err)
	assert.Contains(t, m.contents("thread-msg-1")[0], "[ja] An abstract.")

	m = &fakeMessenger{}
	p.Messenger = m
	p.Translator = &fakeTranslator{err: errors.New("quota")}
	p.Logger = slog.New(slog.DiscardHandler)
	_, err = p.PostPapers(context.Background(), "chan", "header", "thread", samplePapers(1))
	require.NoError(t, err)
	assert.Contains(t, m.contents("thread-msg-1")[0], "\nAn abstract.\n")
}

func TestSendLongSplits(t *testing.T) {
	m := &fakeMessenger{}
	p := NewPoster(m)

	text := strings.Repeat("a", 1500) + "\n" + strings.Repeat("b", 1500)
	require.NoError(t, p.SendLong(context.Background(), "chan", text))
	got := m.contents("chan")
	require.Len(t, got, 2)
	assert.Equal(t, strings.Repeat("a", 1500), got[0])
}
