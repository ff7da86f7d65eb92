package transfers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openvasp/openvasp-host/logger"
	"github.com/openvasp/openvasp-host/message"
	"github.com/openvasp/openvasp-host/reactive"
)

// Store abstracts the transaction repository.
type Store interface {
	SaveTransaction(ctx context.Context, trx *Transaction) error
	TransactionByID(ctx context.Context, id string) (Transaction, error)
	TransactionBySession(ctx context.Context, sessionID string) (Transaction, error)
	Transactions(ctx context.Context, t Type) ([]Transaction, error)
}

// Projection folds session events into transaction records. Every update is
// persisted in the store and published on the observable for live watchers.
type Projection struct {
	store Store
	log   logger.Logger
	obs   *reactive.Observable[Transaction]
}

// NewProjection creates the Projection writing to the given store.
func NewProjection(store Store, log logger.Logger, obs *reactive.Observable[Transaction]) *Projection {
	return &Projection{store: store, log: log, obs: obs}
}

// Track persists the freshly created outgoing transaction under its session.
// Called before the session towards the counterparty VASP is opened.
func (p *Projection) Track(ctx context.Context, trx Transaction, sessionID string) error {
	trx.SessionID = sessionID
	if err := p.store.SaveTransaction(ctx, &trx); err != nil {
		return fmt.Errorf("tracking transaction [ %s ]: %w", trx.ID, err)
	}
	p.publish(trx)
	return nil
}

func (p *Projection) publish(trx Transaction) {
	if p.obs != nil {
		p.obs.Publish(trx)
	}
}

// apply loads the transaction of the session, mutates it and saves it back.
// Events for sessions without a tracked transaction are logged and dropped.
func (p *Projection) apply(ctx context.Context, sessionID, event string, mutate func(trx *Transaction)) {
	trx, err := p.store.TransactionBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			p.log.Warn(fmt.Sprintf("event [ %s ] for session [ %s ] has no tracked transaction", event, sessionID))
			return
		}
		p.log.Error(fmt.Sprintf("reading transaction of session [ %s ]: %s", sessionID, err))
		return
	}
	mutate(&trx)
	trx.UpdatedAt = time.Now()
	if err := p.store.SaveTransaction(ctx, &trx); err != nil {
		p.log.Error(fmt.Sprintf("saving transaction of session [ %s ]: %s", sessionID, err))
		return
	}
	p.publish(trx)
}

func (p *Projection) SessionRequestSent(ctx context.Context, sessionID string) {
	p.apply(ctx, sessionID, "SessionRequestSent", func(trx *Transaction) {
		trx.Status = StatusSessionRequested
	})
}

// SessionRequestReceived opens the incoming transaction record. Details of
// the transfer itself arrive later with the TransferRequest.
func (p *Projection) SessionRequestReceived(ctx context.Context, sessionID string, vasp message.VaspInformation) {
	now := time.Now()
	trx := Transaction{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Type:       TypeIncoming,
		Status:     StatusSessionRequested,
		PeerVaspID: vasp.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := p.store.SaveTransaction(ctx, &trx); err != nil {
		p.log.Error(fmt.Sprintf("tracking incoming transaction of session [ %s ]: %s", sessionID, err))
		return
	}
	p.publish(trx)
}

func (p *Projection) SessionReplySent(ctx context.Context, sessionID string, code message.SessionReplyCode) {
	p.apply(ctx, sessionID, "SessionReplySent", func(trx *Transaction) {
		applySessionDecision(trx, code)
	})
}

func (p *Projection) SessionReplyReceived(ctx context.Context, sessionID string, code message.SessionReplyCode, vasp message.VaspInformation) {
	p.apply(ctx, sessionID, "SessionReplyReceived", func(trx *Transaction) {
		trx.PeerVaspID = vasp.ID
		applySessionDecision(trx, code)
	})
}

func applySessionDecision(trx *Transaction, code message.SessionReplyCode) {
	if code == message.SessionAccepted {
		trx.Status = StatusSessionConfirmed
		return
	}
	trx.Status = StatusSessionDeclined
	trx.SessionDeclineCode = code.Wire()
}

func (p *Projection) TransferRequestSent(ctx context.Context, sessionID string) {
	p.apply(ctx, sessionID, "TransferRequestSent", func(trx *Transaction) {
		trx.Status = StatusTransferRequested
	})
}

func (p *Projection) TransferRequestReceived(ctx context.Context, sessionID string, msg message.TransferRequest) {
	p.apply(ctx, sessionID, "TransferRequestReceived", func(trx *Transaction) {
		trx.Status = StatusTransferRequested
		trx.OriginatorName = msg.Originator.Name
		trx.OriginatorVaan = msg.Originator.VAAN
		trx.BeneficiaryName = msg.Beneficiary.Name
		trx.BeneficiaryVaan = msg.Beneficiary.VAAN
		trx.Asset = msg.Transfer.VirtualAsset
		amount, err := decimal.NewFromString(msg.Transfer.Amount)
		if err != nil {
			p.log.Warn(fmt.Sprintf("session [ %s ] transfer request carries amount [ %s ] that is not a number", sessionID, msg.Transfer.Amount))
			return
		}
		trx.Amount = amount
	})
}

func (p *Projection) TransferReplySent(ctx context.Context, sessionID string, code message.TransferReplyCode, destinationAddress string) {
	p.apply(ctx, sessionID, "TransferReplySent", func(trx *Transaction) {
		applyTransferDecision(trx, code, destinationAddress)
	})
}

func (p *Projection) TransferReplyReceived(ctx context.Context, sessionID string, code message.TransferReplyCode, destinationAddress string) {
	p.apply(ctx, sessionID, "TransferReplyReceived", func(trx *Transaction) {
		applyTransferDecision(trx, code, destinationAddress)
	})
}

func applyTransferDecision(trx *Transaction, code message.TransferReplyCode, destinationAddress string) {
	if code == message.TransferAccepted {
		trx.Status = StatusTransferAllowed
		trx.DestinationAddress = destinationAddress
		return
	}
	trx.Status = StatusTransferForbidden
	trx.TransferDeclineCode = code.Wire()
}

func (p *Projection) TransferDispatchSent(ctx context.Context, sessionID string, transaction message.BlockchainTransaction) {
	p.apply(ctx, sessionID, "TransferDispatchSent", func(trx *Transaction) {
		applyDispatch(trx, transaction)
	})
}

func (p *Projection) TransferDispatchReceived(ctx context.Context, sessionID string, transaction message.BlockchainTransaction) {
	p.apply(ctx, sessionID, "TransferDispatchReceived", func(trx *Transaction) {
		applyDispatch(trx, transaction)
	})
}

func applyDispatch(trx *Transaction, transaction message.BlockchainTransaction) {
	trx.Status = StatusTransferDispatched
	trx.TransactionHash = transaction.ID
	trx.SendingAddress = transaction.SendingAddress
	trx.TransferredAt = transaction.DateTime
}

func (p *Projection) TransferConfirmationSent(ctx context.Context, sessionID string, code message.TransferConfirmationCode) {
	p.apply(ctx, sessionID, "TransferConfirmationSent", func(trx *Transaction) {
		trx.Status = StatusTransferConfirmed
		trx.ConfirmationCode = code.Wire()
	})
}

func (p *Projection) TransferConfirmationReceived(ctx context.Context, sessionID string, code message.TransferConfirmationCode) {
	p.apply(ctx, sessionID, "TransferConfirmationReceived", func(trx *Transaction) {
		trx.Status = StatusTransferConfirmed
		trx.ConfirmationCode = code.Wire()
	})
}

// SessionTerminated closes the record unless the transfer already confirmed;
// a confirmed transaction keeps its final status and only the code is kept.
func (p *Projection) SessionTerminated(ctx context.Context, sessionID string, code message.TerminationCode) {
	p.apply(ctx, sessionID, "SessionTerminated", func(trx *Transaction) {
		trx.TerminationCode = code.Wire()
		if trx.Status == StatusTransferConfirmed {
			return
		}
		trx.Status = StatusClosed
	})
}
