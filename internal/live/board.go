// Package live 把登记和报表事件转成厨房看板的 websocket 推送。
package live

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/pubsub"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/ws"
)

// 推送给看板的消息类型
const (
	MessageSummary = "tomorrow_summary"
	MessageReport  = "report_progress"
)

type Broadcaster interface {
	Broadcast(msg *ws.Message) error
}

// SummarySource 按日期汇总确认用餐的份数
type SummarySource interface {
	KitchenSummary(ctx context.Context, date string) (*dto.KitchenSummary, error)
}

type Board struct {
	hub       Broadcaster
	summaries SummarySource
}

func NewBoard(hub Broadcaster, summaries SummarySource) *Board {
	return &Board{hub: hub, summaries: summaries}
}

// Run 阻塞订阅事件直到 ctx 结束，订阅断开后重连
func (b *Board) Run(ctx context.Context, sub *pubsub.Subscriber) {
	for {
		err := sub.Subscribe(ctx, func(evt *pubsub.Event) {
			b.Handle(ctx, evt)
		})
		if ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Msg("kitchen event subscription dropped, retrying")

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

// Handle 登记事件推送该日最新汇总，报表事件原样转发
func (b *Board) Handle(ctx context.Context, evt *pubsub.Event) {
	var msg *ws.Message
	switch evt.Type {
	case pubsub.EventVoteCommitted:
		summary, err := b.summaries.KitchenSummary(ctx, evt.ServiceDate)
		if err != nil {
			log.Error().Err(err).Str("service_date", evt.ServiceDate).Msg("refresh kitchen summary failed")
			return
		}
		msg = &ws.Message{Type: MessageSummary, Data: summary}
	case pubsub.EventReportProgress:
		msg = &ws.Message{Type: MessageReport, Data: evt}
	default:
		return
	}

	if err := b.hub.Broadcast(msg); err != nil {
		log.Warn().Err(err).Str("type", msg.Type).Msg("broadcast to kitchen board failed")
	}
}
