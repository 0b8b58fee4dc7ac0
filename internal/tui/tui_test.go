package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailpane/mailpane/internal/dom"
	"github.com/mailpane/mailpane/internal/model"
	"github.com/mailpane/mailpane/internal/push"
	"github.com/mailpane/mailpane/internal/widget"
)

type noopFetcher struct{}

func (noopFetcher) UnreadMessages(context.Context) ([]model.Message, error) {
	return nil, nil
}

type noopSource struct{}

func (noopSource) Subscribe(ctx context.Context, eventName string) (*push.Subscription, error) {
	return push.NewSubscription(make(chan model.Event), func() {}), nil
}

func testModel(t *testing.T) Model {
	t.Helper()
	doc := dom.New(dom.Spec{
		Tag:      "body",
		Children: []dom.Spec{{Tag: "div", ClassName: "widget-email__unread"}},
	})
	w := widget.Mount(doc, "widget-email__unread", "http://unused",
		widget.WithFetcher(noopFetcher{}),
		widget.WithPushSource(noopSource{}),
	)
	t.Cleanup(w.Destroy)
	return NewModel(w)
}

func TestView_StateTexts(t *testing.T) {
	m := testModel(t)

	assert.Contains(t, m.View(), "Загрузка...")

	cases := []struct {
		snap widget.Snapshot
		want string
	}{
		{widget.Snapshot{State: widget.StateEmpty}, "Нет новых сообщений"},
		{widget.Snapshot{State: widget.StateRetrying}, "повторная попытка"},
		{widget.Snapshot{State: widget.StateUnavailable}, "Сервис временно недоступен"},
	}
	for _, tc := range cases {
		next, _ := m.Update(snapshotMsg(tc.snap))
		assert.Contains(t, next.View(), tc.want, "state %s", tc.snap.State)
	}
}

func TestView_RendersItemsAndCounter(t *testing.T) {
	m := testModel(t)

	snap := widget.Snapshot{
		State: widget.StateOK,
		Count: 2,
		Items: []widget.Item{
			{Message: model.Message{ID: "2", From: "Борис", Subject: "свежая тема", Received: 1700000000}, New: true},
			{Message: model.Message{ID: "1", From: "Анна", Subject: "старая тема", Received: 1700000000}},
		},
	}
	next, cmd := m.Update(snapshotMsg(snap))
	require.NotNil(t, cmd, "update must re-arm the snapshot pump")

	view := next.View()
	assert.Contains(t, view, "Борис")
	assert.Contains(t, view, "Анна")
	assert.Contains(t, view, "●")
	assert.Contains(t, view, "2")
}

func TestUpdate_HighlightFades(t *testing.T) {
	m := testModel(t)

	snap := widget.Snapshot{
		State: widget.StateOK,
		Count: 1,
		Items: []widget.Item{
			{Message: model.Message{ID: "1", From: "Анна", Subject: "тема"}, New: true},
		},
	}
	next, _ := m.Update(snapshotMsg(snap))
	m = next.(Model)
	require.True(t, m.snap.Items[0].New)

	// A stale clear (older generation) leaves the highlight alone.
	next, _ = m.Update(clearHighlightMsg{gen: m.gen - 1})
	m = next.(Model)
	assert.True(t, m.snap.Items[0].New)

	// The matching clear fades it.
	next, _ = m.Update(clearHighlightMsg{gen: m.gen})
	m = next.(Model)
	assert.False(t, m.snap.Items[0].New)
}

func TestUpdate_QuitDestroysWidget(t *testing.T) {
	m := testModel(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.NotNil(t, next)

	// tea.Quit resolves to a QuitMsg.
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdate_StreamClosedQuits(t *testing.T) {
	m := testModel(t)

	next, cmd := m.Update(streamClosedMsg{})
	require.NotNil(t, cmd)
	assert.True(t, next.(Model).closed)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
