package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMalformedMessage 队列里的数据无法解析，原始内容已转入死信列表
var ErrMalformedMessage = errors.New("malformed report message")

// Queue 基于 Redis List 的报表任务队列，LPUSH 入队、BRPOP 出队
type Queue struct {
	client    *redis.Client
	queueName string
}

// ReportMessage 厨房报表任务
type ReportMessage struct {
	JobID       int64  `json:"job_id"`
	ServiceDate string `json:"service_date"`
	RequestedBy string `json:"requested_by"`
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

// DeadLetterKey 解析失败的原始消息存放的列表
func (q *Queue) DeadLetterKey() string {
	return q.queueName + ":dead"
}

// Push 将任务加入队列
func (q *Queue) Push(ctx context.Context, msg *ReportMessage) error {
	if msg == nil || msg.JobID <= 0 {
		return fmt.Errorf("report message needs a job id")
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal report message: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop 阻塞获取任务，超时返回 nil, nil
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*ReportMessage, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var msg ReportMessage
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil || msg.JobID <= 0 {
		// 坏消息不丢弃，留给人工排查
		if dlErr := q.client.LPush(ctx, q.DeadLetterKey(), result[1]).Err(); dlErr != nil {
			return nil, fmt.Errorf("failed to dead-letter report message: %w", dlErr)
		}
		return nil, ErrMalformedMessage
	}

	return &msg, nil
}

// Length 获取队列长度
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}

// DeadLength 死信数量
func (q *Queue) DeadLength(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.DeadLetterKey()).Result()
}
