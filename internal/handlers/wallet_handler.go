package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/marketdata"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
	"github.com/ternarybob/tradedeck/internal/services/wallets"
)

// WalletHandler serves the wallet and portfolio surface
type WalletHandler struct {
	service interfaces.WalletService
	logger  arbor.ILogger
}

func NewWalletHandler(service interfaces.WalletService, logger arbor.ILogger) *WalletHandler {
	return &WalletHandler{
		service: service,
		logger:  logger,
	}
}

type walletRequest struct {
	Label   string  `json:"label"`
	Address string  `json:"address"`
	Chain   string  `json:"chain"`
	Asset   string  `json:"asset"`
	Balance float64 `json:"balance"`
}

// ListHandler handles GET /api/wallets (list) and POST /api/wallets (create)
func (h *WalletHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.listWallets(w, r)
	case "POST":
		h.createWallet(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *WalletHandler) listWallets(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListWallets(r.Context(), RequestUserID(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list wallets")
		WriteError(w, http.StatusInternalServerError, "Failed to list wallets")
		return
	}
	if list == nil {
		list = []*models.Wallet{}
	}
	WriteJSON(w, http.StatusOK, list)
}

func (h *WalletHandler) createWallet(w http.ResponseWriter, r *http.Request) {
	var req walletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	wallet := &models.Wallet{
		ID:      common.NewWalletID(),
		UserID:  RequestUserID(r),
		Label:   req.Label,
		Address: req.Address,
		Chain:   req.Chain,
		Asset:   strings.ToLower(req.Asset),
		Balance: req.Balance,
	}
	if err := wallet.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.CreateWallet(r.Context(), wallet)
	if err != nil {
		h.logger.Error().Err(err).Str("label", req.Label).Msg("Failed to create wallet")
		WriteError(w, http.StatusInternalServerError, "Failed to create wallet")
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// ItemHandler routes wallet item and sub-resource paths:
//
//	GET    /api/wallets/{id}
//	PUT    /api/wallets/{id}
//	DELETE /api/wallets/{id}
//	GET    /api/wallets/{id}/value
//	GET    /api/wallets/{id}/transactions
//	POST   /api/wallets/{id}/transactions
//	GET    /api/wallets/{id}/transactions/export
func (h *WalletHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/wallets/"), "/")
	if rest == "" {
		WriteError(w, http.StatusBadRequest, "Wallet id is required")
		return
	}
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && r.Method == "GET":
		h.getWallet(w, r, parts[0])
	case len(parts) == 1 && r.Method == "PUT":
		h.updateWallet(w, r, parts[0])
	case len(parts) == 1 && r.Method == "DELETE":
		h.deleteWallet(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "value" && r.Method == "GET":
		h.walletValue(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "transactions" && r.Method == "GET":
		h.listTransactions(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "transactions" && r.Method == "POST":
		h.addTransaction(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "transactions" && parts[2] == "export" && r.Method == "GET":
		h.exportTransactions(w, r, parts[0])
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *WalletHandler) getWallet(w http.ResponseWriter, r *http.Request, id string) {
	wallet, err := h.service.GetWallet(r.Context(), id)
	if err != nil {
		h.writeWalletError(w, err, "Failed to load wallet")
		return
	}
	WriteJSON(w, http.StatusOK, wallet)
}

func (h *WalletHandler) updateWallet(w http.ResponseWriter, r *http.Request, id string) {
	var req walletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	wallet, err := h.service.GetWallet(r.Context(), id)
	if err != nil {
		h.writeWalletError(w, err, "Failed to load wallet")
		return
	}

	if req.Label != "" {
		wallet.Label = req.Label
	}
	if req.Address != "" {
		wallet.Address = req.Address
	}
	if req.Chain != "" {
		wallet.Chain = req.Chain
	}
	if req.Asset != "" {
		wallet.Asset = strings.ToLower(req.Asset)
	}
	if err := wallet.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.UpdateWallet(r.Context(), wallet)
	if err != nil {
		h.writeWalletError(w, err, "Failed to update wallet")
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

func (h *WalletHandler) deleteWallet(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeleteWallet(r.Context(), id); err != nil {
		h.writeWalletError(w, err, "Failed to delete wallet")
		return
	}
	WriteSuccess(w, "Wallet deleted")
}

func (h *WalletHandler) walletValue(w http.ResponseWriter, r *http.Request, id string) {
	value, err := h.service.WalletValue(r.Context(), id)
	if err != nil {
		h.writeWalletError(w, err, "Failed to price wallet")
		return
	}
	WriteJSON(w, http.StatusOK, value)
}

func (h *WalletHandler) listTransactions(w http.ResponseWriter, r *http.Request, walletID string) {
	filter, err := ParseTransactionFilter(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := h.service.ListTransactions(r.Context(), walletID, filter)
	if err != nil {
		h.writeWalletError(w, err, "Failed to list transactions")
		return
	}
	if txs == nil {
		txs = []*models.Transaction{}
	}
	WriteJSON(w, http.StatusOK, txs)
}

func (h *WalletHandler) addTransaction(w http.ResponseWriter, r *http.Request, walletID string) {
	var tx models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	tx.ID = common.NewTransactionID()
	tx.WalletID = walletID
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now().UTC()
	}
	tx.Asset = strings.ToLower(tx.Asset)
	if err := tx.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.AddTransaction(r.Context(), &tx)
	if err != nil {
		h.writeWalletError(w, err, "Failed to add transaction")
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

func (h *WalletHandler) exportTransactions(w http.ResponseWriter, r *http.Request, walletID string) {
	filter, err := ParseTransactionFilter(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Existence check first so a bad wallet id still yields JSON, not a
	// half-written CSV
	if _, err := h.service.GetWallet(r.Context(), walletID); err != nil {
		h.writeWalletError(w, err, "Failed to load wallet")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", walletID+"-transactions.csv"))
	if err := h.service.ExportTransactionsCSV(r.Context(), w, walletID, filter); err != nil {
		h.logger.Error().Err(err).Str("wallet_id", walletID).Msg("Failed to export transactions")
	}
}

// PortfolioValueHandler handles GET /api/portfolio/value
func (h *WalletHandler) PortfolioValueHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	userID := RequestUserID(r)
	total, err := h.service.PortfolioValue(r.Context(), userID)
	if err != nil {
		h.writeWalletError(w, err, "Failed to price portfolio")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"value":   total,
	})
}

func (h *WalletHandler) writeWalletError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		WriteError(w, http.StatusNotFound, "Wallet not found")
	case errors.Is(err, wallets.ErrInsufficientBalance):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, marketdata.ErrNoPrice):
		WriteError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error().Err(err).Msg(message)
		WriteError(w, http.StatusInternalServerError, message)
	}
}
