package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/greenpay/aptopay-middleware/internal/metrics"
	apperrors "github.com/greenpay/aptopay-middleware/pkg/app/errors"
	"github.com/greenpay/aptopay-middleware/pkg/user"
	"github.com/greenpay/aptopay-middleware/pkg/userstore"
	"github.com/greenpay/aptopay-middleware/pkg/wallet"
)

// EventTypePaymentCompleted is emitted when a payment request settles.
const EventTypePaymentCompleted = "payment_completed"

// emitTimeout bounds the background notification fired after an accept.
const emitTimeout = 15 * time.Second

// Store is the narrow data-access interface for the rewards service.
type Store interface {
	GetUser(ctx context.Context, opts ...userstore.QueryOption) (*user.User, error)
	AppendReward(ctx context.Context, walletAddress string, entry user.RewardEntry) error
}

// NotifyRequest carries an attribution event for a wallet.
type NotifyRequest struct {
	WalletAddress string         `json:"walletAddress" validate:"required"`
	EventType     string         `json:"eventType" validate:"required"`
	CampaignID    string         `json:"campaignId"`
	Metadata      map[string]any `json:"metadata"`
}

// Service defines the interface for reward notification business logic
type Service interface {
	// Notify sends an attribution event for the wallet and appends it to the
	// user's reward history. The history is appended even when the upstream
	// call fails. A wallet with no linked attribution identity is a not-found
	// error on this path; only the background emission treats it as a soft
	// no-op.
	Notify(ctx context.Context, req *NotifyRequest) (*user.RewardEntry, error)
	// EmitPaymentCompleted fires a payment_completed notification in the
	// background. Errors are logged, never returned; settlement must not
	// depend on the rewards upstream.
	EmitPaymentCompleted(walletAddress string, metadata map[string]any)
}

type rewardService struct {
	store           Store
	client          Client
	validate        *validator.Validate
	defaultCampaign string
	enabled         bool
	logger          *zap.Logger
}

// NewService creates a new rewards service. A nil client or enabled=false
// turns every upstream call into a soft no-op while history recording keeps
// working.
func NewService(store Store, client Client, defaultCampaign string, enabled bool, logger *zap.Logger) Service {
	return &rewardService{
		store:           store,
		client:          client,
		validate:        validator.New(),
		defaultCampaign: defaultCampaign,
		enabled:         enabled && client != nil,
		logger:          logger,
	}
}

func (s *rewardService) Notify(ctx context.Context, req *NotifyRequest) (*user.RewardEntry, error) {
	return s.notify(ctx, req, true)
}

// notify implements both notification paths. requireLinked distinguishes the
// HTTP endpoint, where an unlinked wallet is a caller-visible not-found, from
// the background emission after a settlement, where it is a soft no-op that
// still records local history.
func (s *rewardService) notify(ctx context.Context, req *NotifyRequest, requireLinked bool) (*user.RewardEntry, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.BadRequestError(err, "missing required fields")
	}

	addr := wallet.NormalizeAddress(req.WalletAddress)
	if err := wallet.ValidateAddress(addr); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid walletAddress")
	}

	usr, err := s.store.GetUser(ctx, userstore.WithWalletAddress(addr))
	if err != nil {
		if errors.Is(err, userstore.ErrUserNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "user not found")
		}
		return nil, apperrors.GeneralError(fmt.Errorf("failed to look up user: %w", err))
	}

	if requireLinked && usr.PhotonUserID == "" {
		metrics.RewardNotifications.WithLabelValues("unlinked").Inc()
		return nil, apperrors.ResourceNotFoundError(nil, "wallet has no linked attribution identity")
	}

	now := time.Now().UTC()
	entry := user.RewardEntry{
		EventType: req.EventType,
		Timestamp: now,
	}

	var upstreamErr error
	switch {
	case !s.enabled:
		metrics.RewardNotifications.WithLabelValues("disabled").Inc()
	case usr.PhotonUserID == "":
		// Unlinked wallets are a soft no-op upstream; the local history
		// still records that the event happened.
		s.logger.Debug("reward notification skipped, wallet not linked",
			zap.String("wallet_address", addr))
		metrics.RewardNotifications.WithLabelValues("skipped").Inc()
	default:
		campaign := req.CampaignID
		if campaign == "" {
			campaign = s.defaultCampaign
		}
		ev := &Event{
			EventID:      fmt.Sprintf("%s-%d", req.EventType, now.UnixMilli()),
			ClientUserID: usr.PhotonUserID,
			CampaignID:   campaign,
			EventType:    req.EventType,
			Metadata:     req.Metadata,
			Timestamp:    now.Unix(),
		}
		reward, sendErr := s.client.SendEvent(ctx, ev)
		if sendErr != nil {
			metrics.RewardNotifications.WithLabelValues("failed").Inc()
			upstreamErr = sendErr
		} else {
			metrics.RewardNotifications.WithLabelValues("sent").Inc()
			entry.Reward = reward
		}
	}

	if appendErr := s.store.AppendReward(ctx, addr, entry); appendErr != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to append reward history: %w", appendErr))
	}

	if upstreamErr != nil {
		return nil, apperrors.UpstreamError(upstreamErr, "rewards API call failed")
	}
	return &entry, nil
}

func (s *rewardService) EmitPaymentCompleted(walletAddress string, metadata map[string]any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()

		_, err := s.notify(ctx, &NotifyRequest{
			WalletAddress: walletAddress,
			EventType:     EventTypePaymentCompleted,
			Metadata:      metadata,
		}, false)
		if err != nil {
			s.logger.Warn("background reward notification failed",
				zap.String("wallet_address", walletAddress),
				zap.Error(err))
		}
	}()
}
