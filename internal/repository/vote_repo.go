package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/rollbowl_go_server/internal/model"
)

type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Upsert 按 (user_id, service_date) 创建或覆盖登记，同时返回写入前的记录（不存在时为 nil）。
// 必须在事务内调用，读取旧值与写入之间持有行锁。
func (r *VoteRepository) Upsert(ctx context.Context, userID int64, date string, willEat bool, choice string) (*model.Vote, *model.Vote, error) {
	db := r.db.WithContext(ctx)

	prior, err := r.lock(db, userID, date)
	if err != nil {
		return nil, nil, err
	}

	if prior == nil {
		vote := &model.Vote{
			UserID:      userID,
			ServiceDate: date,
			WillEat:     willEat,
			Choice:      choice,
		}
		result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(vote)
		if result.Error != nil {
			return nil, nil, result.Error
		}
		if result.RowsAffected == 1 {
			return vote, nil, nil
		}

		// 并发插入时对方先写入，改为覆盖
		prior, err = r.lock(db, userID, date)
		if err != nil {
			return nil, nil, err
		}
		if prior == nil {
			return nil, nil, fmt.Errorf("vote for user %d on %s not found after conflict", userID, date)
		}
	}

	err = db.Model(&model.Vote{}).Where("id = ?", prior.ID).Updates(map[string]interface{}{
		"will_eat": willEat,
		"choice":   choice,
	}).Error
	if err != nil {
		return nil, nil, err
	}

	vote := *prior
	vote.WillEat = willEat
	vote.Choice = choice
	vote.UpdatedAt = time.Now()
	return &vote, prior, nil
}

func (r *VoteRepository) lock(db *gorm.DB, userID int64, date string) (*model.Vote, error) {
	var vote model.Vote
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND service_date = ?", userID, date).
		Take(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// Charge 把登记计入订阅配额，已计入过的记录不会重复扣减
func (r *VoteRepository) Charge(ctx context.Context, voteID, subscriptionID int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Vote{}).
		Where("id = ? AND charged_subscription_id IS NULL", voteID).
		Update("charged_subscription_id", subscriptionID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CountCharged 统计订阅已消耗的餐数
func (r *VoteRepository) CountCharged(ctx context.Context, subscriptionID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Vote{}).
		Where("charged_subscription_id = ?", subscriptionID).
		Count(&count).Error
	return count, err
}

func (r *VoteRepository) GetByUserAndDate(ctx context.Context, userID int64, date string) (*model.Vote, error) {
	var vote model.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND service_date = ?", userID, date).
		First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// ListWillEat 某天确认用餐的登记，带用户信息
func (r *VoteRepository) ListWillEat(ctx context.Context, date string) ([]*model.Vote, error) {
	var votes []*model.Vote
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("service_date = ? AND will_eat = ?", date, true).
		Order("id ASC").
		Find(&votes).Error
	return votes, err
}

// CountWillEat 某天确认用餐的人数
func (r *VoteRepository) CountWillEat(ctx context.Context, date string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Vote{}).
		Where("service_date = ? AND will_eat = ?", date, true).
		Count(&count).Error
	return count, err
}

// CountByUserAndDate 用于校验 (user_id, service_date) 唯一
func (r *VoteRepository) CountByUserAndDate(ctx context.Context, userID int64, date string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Vote{}).
		Where("user_id = ? AND service_date = ?", userID, date).
		Count(&count).Error
	return count, err
}
