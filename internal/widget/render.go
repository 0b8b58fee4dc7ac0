package widget

import (
	"fmt"
	"time"

	"github.com/mailpane/mailpane/internal/dom"
	"github.com/mailpane/mailpane/internal/format"
	"github.com/mailpane/mailpane/internal/model"
)

// Class names are a compatibility surface for embedder styling; the
// container selector itself comes from configuration.
const (
	classTitle       = "widget-email__title"
	classCounter     = "widget-email__counter"
	classList        = "widget-email__list"
	classItem        = "widget-email__item"
	classEntering    = "widget-email__item--entering"
	classPlaceholder = "widget-email__placeholder"
)

// Placeholder modifiers; exactly one placeholder (or the populated
// list) is visible at any time.
const (
	placeholderLoading     = "loading"
	placeholderEmpty       = "empty"
	placeholderRetry       = "retry"
	placeholderUnavailable = "unavailable"
)

// User-visible strings.
const (
	titleText       = "Непрочитанные сообщения"
	fromTitlePrefix = "Получено от: "
	loadingText     = "Загрузка..."
	emptyText       = "Нет новых сообщений"
	retryText       = "Не удалось загрузить сообщения, повторная попытка..."
	unavailableText = "Сервис временно недоступен"
)

// Cascade timing: each new item gets an incremental transition delay,
// the entering class is lifted on the next frame so the transition
// plays, and the inline delays are cleared once the cascade is over.
const (
	staggerStepMs = 100
	staggerTailMs = 400
	frameDelay    = 16 * time.Millisecond
)

// renderLocked runs the render-and-diff procedure for one tick. The
// caller holds w.mu. It returns the rendered items in visual order
// (list head first) for the snapshot observers.
//
// Items are prepended one by one, so the source order ends up reversed
// in the DOM: an oldest-first feed renders newest-first. That inversion
// is deliberate and independent of any timestamp comparison.
func (w *Widget) renderLocked(msgs []model.Message) []Item {
	w.list.RemoveChildren()

	if len(msgs) == 0 {
		w.renderPlaceholderLocked(placeholderEmpty, emptyText)
		// Nothing is on screen, so nothing is "seen" anymore.
		w.seen = make(map[string]struct{})
		w.initialLoad = false
		return nil
	}

	items := make([]Item, len(msgs))
	entering := make([]*dom.Element, 0, len(msgs))
	seen := make(map[string]struct{}, len(msgs))

	for i, msg := range msgs {
		_, known := w.seen[msg.ID]
		isNew := !w.initialLoad && !known

		li := buildItem(msg)
		if isNew {
			li.AddClass(classEntering)
			li.SetAttr("style", fmt.Sprintf("transition-delay: %dms", len(entering)*staggerStepMs))
			entering = append(entering, li)
		}
		w.list.Prepend(li)

		// Prepending reverses the order, so fill items back to front.
		items[len(msgs)-1-i] = Item{Message: msg, New: isNew}
		seen[msg.ID] = struct{}{}
	}

	if len(entering) > 0 {
		w.scheduleReveal(entering)
	}

	w.seen = seen
	w.initialLoad = false
	return items
}

// renderPlaceholderLocked replaces the list content with one
// placeholder item. The caller holds w.mu.
func (w *Widget) renderPlaceholderLocked(kind, text string) {
	w.list.RemoveChildren()
	dom.New(dom.Spec{
		Tag:       "li",
		ClassName: classPlaceholder + " " + classPlaceholder + "--" + kind,
		Text:      text,
		Parent:    w.list,
	})
}

// setCounterLocked updates the live counter text node in place. The
// caller holds w.mu.
func (w *Widget) setCounterLocked(n int) {
	w.counter.SetText(fmt.Sprintf("%d", n))
}

// scheduleReveal drops the entering class on the next frame (layout has
// settled by then, so the CSS transition plays) and clears the inline
// stagger delays once the whole cascade has finished. The closures
// capture the item nodes directly: if a later render replaces the list,
// they touch detached nodes and the live DOM is unaffected.
func (w *Widget) scheduleReveal(entering []*dom.Element) {
	time.AfterFunc(frameDelay, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		for _, li := range entering {
			li.RemoveClass(classEntering)
		}
	})

	tail := time.Duration(len(entering)*staggerStepMs+staggerTailMs) * time.Millisecond
	time.AfterFunc(tail, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		for _, li := range entering {
			li.RemoveAttr("style")
		}
	})
}

// buildItem constructs the per-message list item. The shape is a
// compatibility surface for styling and tests:
//
//	li#<id>.widget-email__item > a > img + span.from + span.subject + time
func buildItem(msg model.Message) *dom.Element {
	li := dom.New(dom.Spec{
		Tag:       "li",
		ID:        msg.ID,
		ClassName: classItem,
	})
	link := dom.New(dom.Spec{
		Tag:    "a",
		Attrs:  map[string]string{"href": "#"},
		Parent: li,
	})
	dom.New(dom.Spec{
		Tag:       "img",
		ClassName: "widget-email__avatar",
		Attrs:     map[string]string{"src": msg.Avatar, "alt": msg.From},
		Parent:    link,
	})
	dom.New(dom.Spec{
		Tag:       "span",
		ClassName: "widget-email__from",
		Text:      msg.From,
		Attrs:     map[string]string{"title": fromTitlePrefix + msg.From},
		Parent:    link,
	})
	dom.New(dom.Spec{
		Tag:       "span",
		ClassName: "widget-email__subject",
		Text:      format.Truncate(msg.Subject),
		Parent:    link,
	})
	dom.New(dom.Spec{
		Tag:       "time",
		ClassName: "widget-email__time",
		Text:      format.Time(msg.Received),
		Attrs:     map[string]string{"datetime": format.ISO(msg.Received)},
		Parent:    link,
	})
	return li
}
