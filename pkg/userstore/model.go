package userstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/greenpay/aptopay-middleware/pkg/user"
)

// UserDao is a data access object that maps directly to the 'users' table in
// PostgreSQL.
type UserDao struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	ID            int64              `bun:"id,pk,autoincrement"`
	WalletAddress string             `bun:"wallet_address,unique,notnull,type:varchar(66)"`
	Name          string             `bun:"name,unique,notnull,type:varchar(64)"`
	PhotonUserID  *string            `bun:"photon_user_id,type:varchar(128)"`
	Rewards       []user.RewardEntry `bun:"rewards,type:jsonb,nullzero"`
	CreatedAt     time.Time          `bun:"created_at,nullzero,default:current_timestamp"`
}

// toUserDao converts a user.User to UserDao.
func toUserDao(usr *user.User) *UserDao {
	dao := &UserDao{
		ID:            usr.ID,
		WalletAddress: usr.WalletAddress,
		Name:          usr.Name,
		Rewards:       usr.Rewards,
	}

	if usr.PhotonUserID != "" {
		dao.PhotonUserID = &usr.PhotonUserID
	}

	return dao
}

// toUser converts a UserDao to user.User.
func toUser(dao *UserDao) *user.User {
	usr := &user.User{
		ID:            dao.ID,
		WalletAddress: dao.WalletAddress,
		Name:          dao.Name,
		Rewards:       dao.Rewards,
		CreatedAt:     dao.CreatedAt,
	}

	if dao.PhotonUserID != nil {
		usr.PhotonUserID = *dao.PhotonUserID
	}

	return usr
}
