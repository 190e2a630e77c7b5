package rewards

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/greenpay/aptopay-middleware/pkg/app/errors"
	apphttp "github.com/greenpay/aptopay-middleware/pkg/app/http"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers HTTP endpoints for the rewards service on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/rewards", apphttp.HandleError(h.notify))
}

type rewardEnvelope struct {
	Success bool        `json:"success"`
	Reward  *rewardJSON `json:"reward"`
}

type rewardJSON struct {
	EventType string          `json:"eventType"`
	Timestamp int64           `json:"timestamp"`
	Reward    json.RawMessage `json:"reward,omitempty"`
}

func (h *HTTP) notify(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	var req NotifyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}

	entry, err := h.service.Notify(r.Context(), &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &rewardEnvelope{
		Success: true,
		Reward: &rewardJSON{
			EventType: entry.EventType,
			Timestamp: entry.Timestamp.Unix(),
			Reward:    entry.Reward,
		},
	})
	return nil
}
