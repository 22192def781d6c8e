package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jredh-dev/hochzeit/internal/wishlist"
	"github.com/jredh-dev/hochzeit/pkg/models"
)

const (
	msgListUnavailable = "Die Wunschliste kann gerade nicht geladen werden."
	msgReserveFailed   = "Wir konnten die Reservierung nicht speichern. Bitte versucht es später nochmals."
	msgBadRequest      = "Ungültige Anfrage."
)

type giftsResp struct {
	Gifts []models.Gift `json:"gifts"`
}

// ListGifts returns the current wishlist.
// GET /wishlist, GET /api/wishlist
func (h *Handler) ListGifts(w http.ResponseWriter, r *http.Request) {
	gifts, err := h.wishlist.Gifts(r.Context())
	if err != nil {
		h.log.Error("load wishlist failed", zap.Error(err))
		jsonError(w, msgListUnavailable, http.StatusInternalServerError)
		return
	}
	jsonOK(w, http.StatusOK, giftsResp{Gifts: gifts})
}

// reserveReq accepts both the basket body (items) and the older single-gift
// body (giftId, parts).
type reserveReq struct {
	Name    string              `json:"name"`
	Email   string              `json:"email"`
	Message string              `json:"message"`
	Items   []wishlist.LineItem `json:"items"`

	GiftID string             `json:"giftId"`
	Parts  wishlist.PartCount `json:"parts"`
}

type reserveResp struct {
	*wishlist.Result
	Gift *wishlist.ItemResult `json:"gift,omitempty"`
}

type reserveErrorResp struct {
	Error          string `json:"error"`
	GiftID         string `json:"giftId,omitempty"`
	RemainingParts *int   `json:"remainingParts,omitempty"`
}

// Reserve applies a contribution to one or more gifts.
// POST /wishlist, POST /api/wishlist
func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveReq
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, msgBadRequest, http.StatusBadRequest)
		return
	}

	sub := wishlist.Submission{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
		Items:   req.Items,
	}
	single := len(req.Items) == 0 && req.GiftID != ""
	if single {
		sub.Items = []wishlist.LineItem{{GiftID: req.GiftID, Parts: req.Parts}}
		sub.EmailOptional = true
	}

	res, err := h.wishlist.Reserve(r.Context(), sub)
	if err != nil {
		h.reserveError(w, err)
		return
	}

	h.log.Info("reservation accepted",
		zap.String("submission_id", res.SubmissionID),
		zap.Int("gifts", len(res.Items)))

	resp := reserveResp{Result: res}
	if single && len(res.Items) == 1 {
		resp.Gift = &res.Items[0]
	}
	jsonOK(w, http.StatusOK, resp)
}

func (h *Handler) reserveError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, wishlist.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, wishlist.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, wishlist.ErrConflict):
		status = http.StatusConflict
	default:
		h.log.Error("reservation failed", zap.Error(err))
	}

	resp := reserveErrorResp{Error: wishlist.UserMessage(err, msgReserveFailed)}
	var re *wishlist.RequestError
	if errors.As(err, &re) {
		resp.GiftID = re.GiftID
		if status == http.StatusConflict && re.Remaining > 0 {
			remaining := re.Remaining
			resp.RemainingParts = &remaining
		}
	}
	jsonOK(w, status, resp)
}

type basketReq struct {
	Items []wishlist.BasketEntry `json:"items"`
}

// Basket reconciles the browser basket against the live wishlist.
// POST /api/wishlist/basket
func (h *Handler) Basket(w http.ResponseWriter, r *http.Request) {
	var req basketReq
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, msgBadRequest, http.StatusBadRequest)
		return
	}

	view, err := h.wishlist.Basket(r.Context(), req.Items)
	if err != nil {
		h.log.Error("reconcile basket failed", zap.Error(err))
		jsonError(w, msgListUnavailable, http.StatusInternalServerError)
		return
	}
	jsonOK(w, http.StatusOK, view)
}

type giftView struct {
	models.Gift
	Available    bool
	PricePerPart string
}

// WishlistPage renders the gift list.
// GET /wunschliste
func (h *Handler) WishlistPage(w http.ResponseWriter, r *http.Request) {
	data := h.pageData("Wunschliste", nil)

	gifts, err := h.wishlist.Gifts(r.Context())
	if err != nil {
		h.log.Error("load wishlist failed", zap.Error(err))
		data["Error"] = msgListUnavailable
	}

	views := make([]giftView, 0, len(gifts))
	for _, g := range gifts {
		views = append(views, giftView{
			Gift:         g,
			Available:    g.State() == models.GiftStateAvailable,
			PricePerPart: wishlist.PricePerPart(g.Price, g.TotalParts),
		})
	}
	data["Gifts"] = views

	h.renderTemplate(w, "wishlist.html", data)
}

// BasketPage renders the basket; its contents live in the browser.
// GET /wunschliste/korb
func (h *Handler) BasketPage(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, "basket.html", h.pageData("Korb", nil))
}
