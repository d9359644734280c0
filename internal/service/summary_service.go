package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/qs3c/rollbowl_go_server/internal/model"
	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/repository"
)

// SummaryService 给厨房看的次日汇总
type SummaryService struct {
	voteRepo *repository.VoteRepository
	gate     *CutoffGate
}

func NewSummaryService(voteRepo *repository.VoteRepository, gate *CutoffGate) *SummaryService {
	return &SummaryService{voteRepo: voteRepo, gate: gate}
}

// Summarize 统计某天每个菜品的份数，只计确认用餐的登记
func (s *SummaryService) Summarize(ctx context.Context, date string) (map[string]int, error) {
	votes, err := s.voteRepo.ListWillEat(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return tally(votes), nil
}

func tally(votes []*model.Vote) map[string]int {
	counts := make(map[string]int)
	for _, v := range votes {
		for _, item := range strings.Split(v.Choice, ",") {
			if item = strings.TrimSpace(item); item != "" {
				counts[item]++
			}
		}
	}
	return counts
}

// TomorrowSummary now 之后那一天的汇总
func (s *SummaryService) TomorrowSummary(ctx context.Context, now time.Time) (*dto.KitchenSummary, error) {
	return s.KitchenSummary(ctx, s.gate.Tomorrow(now))
}

// KitchenSummary 某天的用餐人数和菜品份数
func (s *SummaryService) KitchenSummary(ctx context.Context, date string) (*dto.KitchenSummary, error) {
	votes, err := s.voteRepo.ListWillEat(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return &dto.KitchenSummary{
		Date:  date,
		Total: len(votes),
		Items: tally(votes),
	}, nil
}

// Diners 某天确认用餐的名单
func (s *SummaryService) Diners(ctx context.Context, date string) ([]dto.DinerInfo, error) {
	votes, err := s.voteRepo.ListWillEat(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}

	diners := make([]dto.DinerInfo, 0, len(votes))
	for _, v := range votes {
		d := dto.DinerInfo{UserID: v.UserID, Choice: v.Choice}
		if v.User != nil {
			d.Name = v.User.Name
			d.Phone = v.User.Phone
		}
		diners = append(diners, d)
	}
	return diners, nil
}

// Count 某天确认用餐的人数
func (s *SummaryService) Count(ctx context.Context, date string) (*dto.TomorrowCountResponse, error) {
	n, err := s.voteRepo.CountWillEat(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("count votes: %w", err)
	}
	return &dto.TomorrowCountResponse{Date: date, WillEatCount: n}, nil
}
