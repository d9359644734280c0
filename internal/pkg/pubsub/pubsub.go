package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const ChannelKitchenEvents = "rollbowl_kitchen_events"

// 事件类型
const (
	EventVoteCommitted  = "vote_committed"
	EventReportProgress = "report_progress"
)

// Event 推送给厨房看板的事件，登记事件带 ServiceDate/UserID，报表事件带 JobID/Step
type Event struct {
	Type        string `json:"type"`
	ServiceDate string `json:"service_date"`
	UserID      int64  `json:"user_id,omitempty"`
	WillEat     *bool  `json:"will_eat,omitempty"`
	Choice      string `json:"choice,omitempty"`
	JobID       int64  `json:"job_id,omitempty"`
	Status      string `json:"status,omitempty"`
	Step        string `json:"step,omitempty"`
	Progress    int    `json:"progress,omitempty"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
}

// 报表生成阶段
const (
	StepSummarizing = "summarizing"
	StepRendering   = "rendering"
	StepUploading   = "uploading"
	StepDone        = "done"
)

var StepProgress = map[string]int{
	StepSummarizing: 25,
	StepRendering:   50,
	StepUploading:   75,
	StepDone:        100,
}

var StepMessages = map[string]string{
	StepSummarizing: "正在汇总次日登记",
	StepRendering:   "正在生成厨房报表",
	StepUploading:   "正在上传报表",
	StepDone:        "报表已生成",
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishVote 发布一次登记提交成功事件
func (p *Publisher) PublishVote(ctx context.Context, serviceDate string, userID int64, willEat bool, choice string) error {
	return p.publish(ctx, &Event{
		Type:        EventVoteCommitted,
		ServiceDate: serviceDate,
		UserID:      userID,
		WillEat:     &willEat,
		Choice:      choice,
	})
}

// PublishReportProgress 发布报表进度，未指定时按阶段补全进度和提示
func (p *Publisher) PublishReportProgress(ctx context.Context, evt *Event) error {
	evt.Type = EventReportProgress
	fillStep(evt)
	return p.publish(ctx, evt)
}

func fillStep(evt *Event) {
	if evt.Step == "" {
		return
	}
	if evt.Progress == 0 {
		evt.Progress = StepProgress[evt.Step]
	}
	if evt.Message == "" {
		evt.Message = StepMessages[evt.Step]
	}
}

func (p *Publisher) publish(ctx context.Context, evt *Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.client.Publish(ctx, ChannelKitchenEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 阻塞订阅厨房事件直到 ctx 结束
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*Event)) error {
	sub := s.client.Subscribe(ctx, ChannelKitchenEvents)
	defer sub.Close()

	// 等待订阅确认，避免订阅前发布的消息丢失
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				continue
			}
			handler(&evt)
		}
	}
}
