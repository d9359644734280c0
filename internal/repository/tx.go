package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRepos 绑定到同一事务的仓储
type TxRepos struct {
	Users         *UserRepository
	Subscriptions *SubscriptionRepository
	Votes         *VoteRepository
}

// TxRunner 在一个数据库事务中执行回调，回调返回错误时整体回滚
type TxRunner struct {
	db *gorm.DB
}

func NewTxRunner(db *gorm.DB) *TxRunner {
	return &TxRunner{db: db}
}

func (r *TxRunner) Run(ctx context.Context, fn func(repos *TxRepos) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&TxRepos{
			Users:         NewUserRepository(tx),
			Subscriptions: NewSubscriptionRepository(tx),
			Votes:         NewVoteRepository(tx),
		})
	})
}
