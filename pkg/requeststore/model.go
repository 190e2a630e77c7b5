package requeststore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/greenpay/aptopay-middleware/pkg/request"
)

// RequestDao is a data access object that maps directly to the 'requests'
// table in PostgreSQL.
type RequestDao struct {
	bun.BaseModel    `bun:"table:requests,alias:r"`
	ID               int64     `bun:"id,pk,autoincrement"`
	RequestID        string    `bun:"request_id,unique,notnull,type:varchar(64)"`
	RequesterAddress string    `bun:"requester_address,notnull,type:varchar(66)"`
	RequesterName    string    `bun:"requester_name,type:varchar(64)"`
	PayerAddress     *string   `bun:"payer_address,type:varchar(66)"`
	PayerName        *string   `bun:"payer_name,type:varchar(64)"`
	Amount           string    `bun:"amount,notnull,type:numeric(38,0)"`
	AmountInHuman    *string   `bun:"amount_in_human,type:varchar(64)"`
	Memo             *string   `bun:"memo,type:varchar(500)"`
	Status           string    `bun:"status,notnull,default:'pending',type:varchar(16)"`
	TxHash           *string   `bun:"tx_hash,type:varchar(66)"`
	CreatedAt        time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// toRequestDao converts a request.Request to RequestDao.
func toRequestDao(r *request.Request) *RequestDao {
	dao := &RequestDao{
		ID:               r.ID,
		RequestID:        r.RequestID,
		RequesterAddress: r.RequesterAddress,
		RequesterName:    r.RequesterName,
		Amount:           r.Amount,
		Status:           string(r.Status),
	}

	if r.PayerAddress != "" {
		dao.PayerAddress = &r.PayerAddress
	}
	if r.PayerName != "" {
		dao.PayerName = &r.PayerName
	}
	if r.AmountInHuman != "" {
		dao.AmountInHuman = &r.AmountInHuman
	}
	if r.Memo != "" {
		dao.Memo = &r.Memo
	}
	if r.TxHash != "" {
		dao.TxHash = &r.TxHash
	}

	return dao
}

// toRequest converts a RequestDao to request.Request.
func toRequest(dao *RequestDao) *request.Request {
	r := &request.Request{
		ID:               dao.ID,
		RequestID:        dao.RequestID,
		RequesterAddress: dao.RequesterAddress,
		RequesterName:    dao.RequesterName,
		Amount:           dao.Amount,
		Status:           request.Status(dao.Status),
		CreatedAt:        dao.CreatedAt,
		UpdatedAt:        dao.UpdatedAt,
	}

	if dao.PayerAddress != nil {
		r.PayerAddress = *dao.PayerAddress
	}
	if dao.PayerName != nil {
		r.PayerName = *dao.PayerName
	}
	if dao.AmountInHuman != nil {
		r.AmountInHuman = *dao.AmountInHuman
	}
	if dao.Memo != nil {
		r.Memo = *dao.Memo
	}
	if dao.TxHash != nil {
		r.TxHash = *dao.TxHash
	}

	return r
}
