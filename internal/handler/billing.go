package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/haven-journal/haven/internal/api"
	"github.com/haven-journal/haven/internal/ctxkeys"
	"github.com/haven-journal/haven/internal/model"
	"github.com/haven-journal/haven/internal/service/payment"
)

type billingHandler struct {
	paymentService payment.Provider
}

func NewBillingHandler(paymentService payment.Provider) *billingHandler {
	return &billingHandler{paymentService: paymentService}
}

type checkoutRequest struct {
	PlanID   string `json:"plan_id"`
	Interval string `json:"interval"`
}

// CreateCheckout starts a paid-plan checkout and returns the provider's
// hosted checkout URL for the client to navigate to.
func (h *billingHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	profile := ctxkeys.Profile(r.Context())
	if profile == nil {
		api.Error(w, http.StatusInternalServerError, "profile not found")
		return
	}

	var req checkoutRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.PlanID != model.PlanPro && req.PlanID != model.PlanPremium {
		api.Error(w, http.StatusBadRequest, "invalid plan selected")
		return
	}

	if req.Interval == "" {
		req.Interval = model.SubscriptionIntervalMonthly
	}

	checkoutURL, err := h.paymentService.CreateCheckoutURL(user.ID, req.PlanID, req.Interval, user.Email, profile.Name)
	if err != nil {
		slog.Error("failed to create checkout", "error", err, "user_id", user.ID, "plan_id", req.PlanID, "provider", h.paymentService.Name())
		api.Error(w, http.StatusInternalServerError, "failed to create checkout session")
		return
	}

	slog.Info("checkout created", "user_id", user.ID, "provider", h.paymentService.Name())
	api.JSON(w, http.StatusOK, map[string]string{"url": checkoutURL})
}

// CustomerPortal returns the provider's billing portal URL.
func (h *billingHandler) CustomerPortal(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	portalURL, err := h.paymentService.CustomerPortalURL(user.ID)
	if err != nil {
		slog.Error("failed to get customer portal", "error", err, "user_id", user.ID, "provider", h.paymentService.Name())
		api.Error(w, http.StatusInternalServerError, "failed to access customer portal")
		return
	}

	api.JSON(w, http.StatusOK, map[string]string{"url": portalURL})
}

func (h *billingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read webhook payload", "error", err)
		api.Error(w, http.StatusBadRequest, "failed to read payload")
		return
	}
	defer func() {
		closeErr := r.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close request body", "error", closeErr)
		}
	}()

	err = h.paymentService.HandleWebhook(payload, r.Header)
	if err != nil {
		slog.Error("failed to handle webhook", "error", err, "provider", h.paymentService.Name())
		api.Error(w, http.StatusBadRequest, "failed to process webhook")
		return
	}

	api.JSON(w, http.StatusOK, map[string]bool{"received": true})
}
