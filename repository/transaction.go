package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openvasp/openvasp-host/message"
	"github.com/openvasp/openvasp-host/transfers"
)

const transactionColumns = `id, session_id, type, status, asset, amount,
	originator_name, originator_vaan, beneficiary_name, beneficiary_vaan,
	peer_vasp_id, destination_address, sending_address, transaction_hash,
	transferred_at, session_decline_code, transfer_decline_code,
	confirmation_code, termination_code, created_at, updated_at`

// SaveTransaction writes or overwrites the transaction record.
func (db DataBase) SaveTransaction(ctx context.Context, trx *transfers.Transaction) error {
	_, err := db.inner.ExecContext(
		ctx,
		`INSERT INTO
			transactions(`+transactionColumns+`)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
			ON CONFLICT (id) DO UPDATE SET
			session_id = EXCLUDED.session_id, status = EXCLUDED.status, asset = EXCLUDED.asset,
			amount = EXCLUDED.amount, originator_name = EXCLUDED.originator_name,
			originator_vaan = EXCLUDED.originator_vaan, beneficiary_name = EXCLUDED.beneficiary_name,
			beneficiary_vaan = EXCLUDED.beneficiary_vaan, peer_vasp_id = EXCLUDED.peer_vasp_id,
			destination_address = EXCLUDED.destination_address, sending_address = EXCLUDED.sending_address,
			transaction_hash = EXCLUDED.transaction_hash, transferred_at = EXCLUDED.transferred_at,
			session_decline_code = EXCLUDED.session_decline_code, transfer_decline_code = EXCLUDED.transfer_decline_code,
			confirmation_code = EXCLUDED.confirmation_code, termination_code = EXCLUDED.termination_code,
			updated_at = EXCLUDED.updated_at`,
		trx.ID, trx.SessionID, int(trx.Type), int(trx.Status), int(trx.Asset), trx.Amount.String(),
		trx.OriginatorName, trx.OriginatorVaan, trx.BeneficiaryName, trx.BeneficiaryVaan,
		trx.PeerVaspID, trx.DestinationAddress, trx.SendingAddress, trx.TransactionHash,
		trx.TransferredAt.UnixMicro(), trx.SessionDeclineCode, trx.TransferDeclineCode,
		trx.ConfirmationCode, trx.TerminationCode, trx.CreatedAt.UnixMicro(), trx.UpdatedAt.UnixMicro())
	if err != nil {
		return errors.Join(ErrInsertFailed, err)
	}
	return nil
}

// TransactionByID reads the transaction of the given id.
func (db DataBase) TransactionByID(ctx context.Context, id string) (transfers.Transaction, error) {
	row := db.inner.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	return scanTransaction(row)
}

// TransactionBySession reads the transaction tracked for the given session.
func (db DataBase) TransactionBySession(ctx context.Context, sessionID string) (transfers.Transaction, error) {
	row := db.inner.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE session_id = $1`, sessionID)
	return scanTransaction(row)
}

// Transactions reads all the transactions of the given type, most recent first.
func (db DataBase) Transactions(ctx context.Context, t transfers.Type) ([]transfers.Transaction, error) {
	rows, err := db.inner.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE type = $1 ORDER BY created_at DESC`, int(t))
	if err != nil {
		return nil, errors.Join(ErrSelectFailed, err)
	}
	defer rows.Close()

	var trxs []transfers.Transaction
	for rows.Next() {
		trx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		trxs = append(trxs, trx)
	}
	return trxs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (transfers.Transaction, error) {
	var trx transfers.Transaction
	var typ, status, asset int
	var amount string
	var transferredAt, createdAt, updatedAt int64
	err := s.Scan(
		&trx.ID, &trx.SessionID, &typ, &status, &asset, &amount,
		&trx.OriginatorName, &trx.OriginatorVaan, &trx.BeneficiaryName, &trx.BeneficiaryVaan,
		&trx.PeerVaspID, &trx.DestinationAddress, &trx.SendingAddress, &trx.TransactionHash,
		&transferredAt, &trx.SessionDeclineCode, &trx.TransferDeclineCode,
		&trx.ConfirmationCode, &trx.TerminationCode, &createdAt, &updatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return transfers.Transaction{}, transfers.ErrNotFound
	case err != nil:
		return transfers.Transaction{}, errors.Join(ErrScanFailed, err)
	}
	trx.Type = transfers.Type(typ)
	trx.Status = transfers.Status(status)
	trx.Asset = message.VirtualAsset(asset)
	trx.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return transfers.Transaction{}, errors.Join(ErrScanFailed, err)
	}
	trx.TransferredAt = time.UnixMicro(transferredAt)
	trx.CreatedAt = time.UnixMicro(createdAt)
	trx.UpdatedAt = time.UnixMicro(updatedAt)
	return trx, nil
}
