// Package relay moves encoded protocol payloads between VASP hosts over the
// nats pub/sub. Every VASP code owns one ingress subject, outbound packets
// are signed with the node wallet and inbound signatures are verified before
// the payload reaches the registry.
package relay

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/nats-io/nats.go"

	"github.com/openvasp/openvasp-host/logger"
)

var (
	ErrNotConnected     = errors.New("relay is not connected")
	ErrPacketCorrupted  = errors.New("packet is corrupted")
	ErrSignatureInvalid = errors.New("packet signature is not valid")
)

const subjectPrefix = "openvasp.ingress."

// Config contains all arguments required to connect to the nats service.
type Config struct {
	Address string `yaml:"server_address"`
	Name    string `yaml:"client_name"`
	Token   string `yaml:"token"`
}

type signer interface {
	Sign(message []byte) (digest [32]byte, signature []byte)
	Address() string
}

type verifier interface {
	Verify(message, signature []byte, hash [32]byte, address string) error
}

type receiver interface {
	OnReceive(ctx context.Context, payload string) error
}

// packet is the nats wire frame around one protocol payload.
type packet struct {
	SessionID string `json:"session_id"`
	Address   string `json:"address"`
	Payload   string `json:"payload"`
	Digest    string `json:"digest"`
	Signature string `json:"signature"`
}

// Relay is the nats backed transport of one VASP host.
type Relay struct {
	conn      *nats.Conn
	sub       *nats.Subscription
	signer    signer
	verifier  verifier
	log       logger.Logger
	localCode string
}

// Connect dials the nats service and prepares the relay for the local
// VASP code.
func Connect(cfg Config, localCode string, s signer, v verifier, log logger.Logger) (*Relay, error) {
	if _, err := url.Parse(cfg.Address); err != nil {
		return nil, err
	}
	conn, err := nats.Connect(cfg.Address, nats.Name(cfg.Name), nats.Token(cfg.Token))
	if err != nil {
		return nil, err
	}
	return &Relay{conn: conn, signer: s, verifier: v, log: log, localCode: localCode}, nil
}

// Disconnect drains the subscriptions and closes the connection.
func (r *Relay) Disconnect() error {
	if r.conn == nil {
		return ErrNotConnected
	}
	return r.conn.Drain()
}

// Send publishes the signed payload on the ingress subject of the addressed
// VASP code. Implements the session gateway.
func (r *Relay) Send(_ context.Context, sessionID, vaspCode, payload string) error {
	if r.conn == nil {
		return ErrNotConnected
	}
	data, err := seal(r.signer, sessionID, payload)
	if err != nil {
		return err
	}
	return r.conn.Publish(subjectFor(vaspCode), data)
}

// Listen subscribes to the local ingress subject and feeds verified payloads
// into the receiver. The subscription lives until ctx is cancelled.
func (r *Relay) Listen(ctx context.Context, rec receiver) error {
	if r.conn == nil {
		return ErrNotConnected
	}
	sub, err := r.conn.Subscribe(subjectFor(r.localCode), func(m *nats.Msg) {
		p, err := open(r.verifier, m.Data)
		if err != nil {
			r.log.Warn(fmt.Sprintf("dropping inbound packet: %s", err))
			return
		}
		if err := rec.OnReceive(ctx, p.Payload); err != nil {
			r.log.Warn(fmt.Sprintf("inbound payload of session [ %s ] rejected: %s", p.SessionID, err))
		}
	})
	if err != nil {
		return err
	}
	r.sub = sub
	go func() {
		<-ctx.Done()
		if err := r.sub.Unsubscribe(); err != nil {
			r.log.Warn(fmt.Sprintf("unsubscribing from [ %s ]: %s", subjectFor(r.localCode), err))
		}
	}()
	return nil
}

func subjectFor(vaspCode string) string {
	return subjectPrefix + vaspCode
}

// seal wraps and signs one payload into the nats wire frame.
func seal(s signer, sessionID, payload string) ([]byte, error) {
	digest, signature := s.Sign([]byte(payload))
	return json.Marshal(packet{
		SessionID: sessionID,
		Address:   s.Address(),
		Payload:   payload,
		Digest:    hex.EncodeToString(digest[:]),
		Signature: hex.EncodeToString(signature),
	})
}

// open unwraps one wire frame verifying the embedded signature against the
// sender address.
func open(v verifier, data []byte) (packet, error) {
	var p packet
	if err := json.Unmarshal(data, &p); err != nil {
		return packet{}, errors.Join(ErrPacketCorrupted, err)
	}
	digest, err := hex.DecodeString(p.Digest)
	if err != nil || len(digest) != 32 {
		return packet{}, ErrPacketCorrupted
	}
	signature, err := hex.DecodeString(p.Signature)
	if err != nil {
		return packet{}, ErrPacketCorrupted
	}
	var hash [32]byte
	copy(hash[:], digest)
	if err := v.Verify([]byte(p.Payload), signature, hash, p.Address); err != nil {
		return packet{}, errors.Join(ErrSignatureInvalid, err)
	}
	return p, nil
}
