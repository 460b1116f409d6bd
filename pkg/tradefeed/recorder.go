// File: pkg/tradefeed/recorder.go

package tradefeed

import (
	"context"

	"github.com/ruslano69/tradelog/pkg/audit"
	"github.com/ruslano69/tradelog/pkg/ingest"
	"github.com/ruslano69/tradelog/pkg/ledger"
)

// Recorder оборачивает приёмник сделок публикацией в ленту: сделка
// сначала записывается, затем уходит подписчикам. Отказ публикации не
// считается отказом записи — лента живая, а не источник истины.
type Recorder struct {
	next ingest.TradeRecorder
	feed *Feed
	log  audit.Logger
}

var _ ingest.TradeRecorder = (*Recorder)(nil)

// NewRecorder создает публикующий приёмник; nil log заменяется на no-op.
func NewRecorder(next ingest.TradeRecorder, feed *Feed, log audit.Logger) *Recorder {
	if log == nil {
		log = audit.Nop()
	}
	return &Recorder{next: next, feed: feed, log: log}
}

// LogTrade записывает сделку и публикует её в ленту.
func (r *Recorder) LogTrade(ctx context.Context, trade ledger.LoggedTrade) error {
	if err := r.next.LogTrade(ctx, trade); err != nil {
		return err
	}
	if err := r.feed.Publish(ctx, trade); err != nil {
		r.log.Log(ctx, audit.NewEntry(audit.OpInsert, audit.StatusFailure).
			WithResource("tradefeed").
			WithDetail("trade stored but not published").
			WithError(err))
	}
	return nil
}
