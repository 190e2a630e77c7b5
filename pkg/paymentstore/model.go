package paymentstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/greenpay/aptopay-middleware/pkg/payment"
)

// PaymentDao is a data access object that maps directly to the 'payments'
// table in PostgreSQL.
type PaymentDao struct {
	bun.BaseModel       `bun:"table:payments,alias:p"`
	ID                  int64     `bun:"id,pk,autoincrement"`
	SenderAddress       string    `bun:"sender_address,notnull,type:varchar(66)"`
	SenderName          string    `bun:"sender_name,type:varchar(64)"`
	ReceiverAddress     string    `bun:"receiver_address,notnull,type:varchar(66)"`
	ReceiverName        string    `bun:"receiver_name,type:varchar(64)"`
	Amount              string    `bun:"amount,notnull,type:numeric(38,0)"`
	AmountInHuman       *string   `bun:"amount_in_human,type:varchar(64)"`
	TransactionHash     *string   `bun:"transaction_hash,type:varchar(66)"`
	Status              string    `bun:"status,notnull,type:varchar(16)"`
	ExpirationTimestamp int64     `bun:"expiration_timestamp,notnull,default:0"`
	CreatedAt           time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt           time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// toPaymentDao converts a payment.Payment to PaymentDao.
func toPaymentDao(p *payment.Payment) *PaymentDao {
	dao := &PaymentDao{
		ID:                  p.ID,
		SenderAddress:       p.SenderAddress,
		SenderName:          p.SenderName,
		ReceiverAddress:     p.ReceiverAddress,
		ReceiverName:        p.ReceiverName,
		Amount:              p.Amount,
		Status:              string(p.Status),
		ExpirationTimestamp: p.ExpirationTimestamp,
	}

	if p.AmountInHuman != "" {
		dao.AmountInHuman = &p.AmountInHuman
	}
	if p.TransactionHash != "" {
		dao.TransactionHash = &p.TransactionHash
	}

	return dao
}

// toPayment converts a PaymentDao to payment.Payment.
func toPayment(dao *PaymentDao) *payment.Payment {
	p := &payment.Payment{
		ID:                  dao.ID,
		SenderAddress:       dao.SenderAddress,
		SenderName:          dao.SenderName,
		ReceiverAddress:     dao.ReceiverAddress,
		ReceiverName:        dao.ReceiverName,
		Amount:              dao.Amount,
		Status:              payment.Status(dao.Status),
		ExpirationTimestamp: dao.ExpirationTimestamp,
		CreatedAt:           dao.CreatedAt,
		UpdatedAt:           dao.UpdatedAt,
	}

	if dao.AmountInHuman != nil {
		p.AmountInHuman = *dao.AmountInHuman
	}
	if dao.TransactionHash != nil {
		p.TransactionHash = *dao.TransactionHash
	}

	return p
}
