package webserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/openvasp/openvasp-host/message"
	"github.com/openvasp/openvasp-host/registry"
	"github.com/openvasp/openvasp-host/transfers"
	"github.com/openvasp/openvasp-host/webhooks"
)

// AliveResponse is a response for alive and version check.
type AliveResponse struct {
	Alive      bool   `json:"alive"`
	APIVersion string `json:"api_version"`
	APIHeader  string `json:"api_header"`
}

func (s *server) alive(c *fiber.Ctx) error {
	return c.JSON(
		AliveResponse{
			Alive:      true,
			APIVersion: ApiVersion,
			APIHeader:  Header,
		})
}

// TransferCreateRequest is a request to start an outgoing transfer towards
// the beneficiary VASP resolved from the beneficiary VAAN.
type TransferCreateRequest struct {
	Originator   message.Originator   `json:"originator"`
	Beneficiary  message.Beneficiary  `json:"beneficiary"`
	Asset        message.VirtualAsset `json:"asset"`
	TransferType message.TransferType `json:"transfer_type"`
	Amount       string               `json:"amount"`
}

// TransferCreateResponse is a response for the outgoing transfer creation.
type TransferCreateResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
	Err       string `json:"error,omitempty"`
}

func (s *server) transferCreate(c *fiber.Ctx) error {
	var req TransferCreateRequest
	if err := c.BodyParser(&req); err != nil {
		s.log.Error(fmt.Sprintf("web server cannot parse transfer create request, %s", err.Error()))
		return fiber.ErrBadRequest
	}

	sessionID, err := s.engine.StartTransfer(c.Context(), transfers.Draft{
		Originator:   req.Originator,
		Beneficiary:  req.Beneficiary,
		Asset:        req.Asset,
		TransferType: req.TransferType,
		Amount:       req.Amount,
	})
	if err != nil {
		s.log.Error(fmt.Sprintf("web server cannot start transfer, %s", err.Error()))
		return c.JSON(TransferCreateResponse{Success: false, SessionID: sessionID, Err: err.Error()})
	}

	return c.JSON(TransferCreateResponse{Success: true, SessionID: sessionID})
}

// SessionActionResponse is a response for all decision endpoints acting on a
// single session.
type SessionActionResponse struct {
	Success bool   `json:"success"`
	Err     string `json:"error,omitempty"`
}

// SessionRequestByID is a request carrying only the session identifier.
type SessionRequestByID struct {
	SessionID string `json:"session_id"`
}

func (s *server) transferResume(c *fiber.Ctx) error {
	var req SessionRequestByID
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	return s.action(c, s.engine.Resume(c.Context(), req.SessionID))
}

// SessionReplyRequest is a request to accept or decline an inbound session.
type SessionReplyRequest struct {
	SessionID string `json:"session_id"`
	Code      int    `json:"code"`
}

func (s *server) sessionReply(c *fiber.Ctx) error {
	var req SessionReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	return s.action(c, s.engine.SessionReply(c.Context(), req.SessionID, message.SessionReplyCode(req.Code)))
}

// TransferReplyRequest is a request to answer an inbound transfer request.
// DestinationAddress is required when the transfer is allowed.
type TransferReplyRequest struct {
	SessionID          string `json:"session_id"`
	Code               int    `json:"code"`
	DestinationAddress string `json:"destination_address"`
}

func (s *server) transferReply(c *fiber.Ctx) error {
	var req TransferReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	return s.action(c, s.engine.TransferReply(c.Context(), req.SessionID, message.TransferReplyCode(req.Code), req.DestinationAddress))
}

// TransferConfirmRequest is a request to confirm or deny a dispatched transfer.
type TransferConfirmRequest struct {
	SessionID string `json:"session_id"`
	Code      int    `json:"code"`
}

func (s *server) transferConfirm(c *fiber.Ctx) error {
	var req TransferConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	return s.action(c, s.engine.ConfirmTransfer(c.Context(), req.SessionID, message.TransferConfirmationCode(req.Code)))
}

// TransferDispatchRequest is a request to announce the settled blockchain
// transaction to the beneficiary VASP.
type TransferDispatchRequest struct {
	SessionID       string    `json:"session_id"`
	SendingAddress  string    `json:"sending_address"`
	TransactionHash string    `json:"transaction_hash"`
	Time            time.Time `json:"time"`
}

func (s *server) transferDispatch(c *fiber.Ctx) error {
	var req TransferDispatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	at := req.Time
	if at.IsZero() {
		at = time.Now()
	}
	return s.action(c, s.engine.Dispatch(c.Context(), req.SessionID, req.SendingAddress, req.TransactionHash, at))
}

// SessionTerminateRequest is a request to terminate a session with a wire code.
type SessionTerminateRequest struct {
	SessionID string `json:"session_id"`
	Code      int    `json:"code"`
}

func (s *server) sessionTerminate(c *fiber.Ctx) error {
	var req SessionTerminateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	return s.action(c, s.engine.Terminate(c.Context(), req.SessionID, message.TerminationCode(req.Code)))
}

func (s *server) action(c *fiber.Ctx, err error) error {
	if err != nil {
		s.log.Error(fmt.Sprintf("web server session action failed, %s", err.Error()))
		return c.JSON(SessionActionResponse{Success: false, Err: err.Error()})
	}
	return c.JSON(SessionActionResponse{Success: true})
}

// TransferListRequest is a request to list transactions by direction.
type TransferListRequest struct {
	Type transfers.Type `json:"type"`
}

// TransferListResponse is a response with transactions, newest first.
type TransferListResponse struct {
	Success      bool                    `json:"success"`
	Transactions []transfers.Transaction `json:"transactions"`
}

func (s *server) transferList(c *fiber.Ctx) error {
	var req TransferListRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	trxs, err := s.store.Transactions(c.Context(), req.Type)
	if err != nil {
		s.log.Error(fmt.Sprintf("web server cannot list transactions, %s", err.Error()))
		return c.JSON(TransferListResponse{Success: false})
	}
	return c.JSON(TransferListResponse{Success: true, Transactions: trxs})
}

// TransferViewRequest is a request to read one transaction by its identifier
// or by the session driving it.
type TransferViewRequest struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
}

// TransferViewResponse is a response with a single transaction.
type TransferViewResponse struct {
	Success     bool                  `json:"success"`
	Transaction transfers.Transaction `json:"transaction"`
}

func (s *server) transferView(c *fiber.Ctx) error {
	var req TransferViewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}

	var trx transfers.Transaction
	var err error
	switch {
	case req.ID != "":
		trx, err = s.store.TransactionByID(c.Context(), req.ID)
	case req.SessionID != "":
		trx, err = s.store.TransactionBySession(c.Context(), req.SessionID)
	default:
		return fiber.ErrBadRequest
	}
	if err != nil {
		if errors.Is(err, transfers.ErrNotFound) {
			return fiber.ErrNotFound
		}
		s.log.Error(fmt.Sprintf("web server cannot read transaction, %s", err.Error()))
		return fiber.ErrInternalServerError
	}
	return c.JSON(TransferViewResponse{Success: true, Transaction: trx})
}

// SessionListResponse is a response with all live sessions.
type SessionListResponse struct {
	Sessions []registry.View `json:"sessions"`
}

func (s *server) sessionList(c *fiber.Ctx) error {
	return c.JSON(SessionListResponse{Sessions: s.engine.Sessions()})
}

// SessionViewResponse is a response with one live session.
type SessionViewResponse struct {
	Success bool          `json:"success"`
	Session registry.View `json:"session"`
}

func (s *server) sessionView(c *fiber.Ctx) error {
	var req SessionRequestByID
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	v, err := s.engine.Session(req.SessionID)
	if err != nil {
		return fiber.ErrNotFound
	}
	return c.JSON(SessionViewResponse{Success: true, Session: v})
}

// AnomalyView is the REST form of one protocol anomaly.
type AnomalyView struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	State     string `json:"state"`
	Trigger   string `json:"trigger"`
	Reason    string `json:"reason"`
}

// AnomaliesResponse is a response with the most recent protocol anomalies.
type AnomaliesResponse struct {
	Anomalies []AnomalyView `json:"anomalies"`
}

func (s *server) anomalies(c *fiber.Ctx) error {
	as := s.engine.Anomalies()
	views := make([]AnomalyView, 0, len(as))
	for _, a := range as {
		views = append(views, AnomalyView{
			SessionID: a.SessionID,
			Role:      a.Role.String(),
			State:     a.State.String(),
			Trigger:   a.Trigger,
			Reason:    a.Reason,
		})
	}
	return c.JSON(AnomaliesResponse{Anomalies: views})
}

// WebhookCreateRequest is a request to create or replace a webhook for the
// given trigger and client.
type WebhookCreateRequest struct {
	Trigger  byte          `json:"trigger"`
	ClientID string        `json:"client_id"`
	Hook     webhooks.Hook `json:"hook"`
}

// WebhookRemoveRequest is a request to remove a webhook.
type WebhookRemoveRequest struct {
	Trigger  byte   `json:"trigger"`
	ClientID string `json:"client_id"`
}

// WebhookResponse is a response for webhook management.
type WebhookResponse struct {
	Success bool   `json:"success"`
	Err     string `json:"error,omitempty"`
}

func (s *server) webhookCreate(c *fiber.Ctx) error {
	var req WebhookCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := s.wh.CreateWebhook(req.Trigger, req.ClientID, req.Hook); err != nil {
		return c.JSON(WebhookResponse{Success: false, Err: err.Error()})
	}
	return c.JSON(WebhookResponse{Success: true})
}

func (s *server) webhookRemove(c *fiber.Ctx) error {
	var req WebhookRemoveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := s.wh.RemoveWebhook(req.Trigger, req.ClientID); err != nil {
		return c.JSON(WebhookResponse{Success: false, Err: err.Error()})
	}
	return c.JSON(WebhookResponse{Success: true})
}
