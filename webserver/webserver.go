package webserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/openvasp/openvasp-host/logger"
	"github.com/openvasp/openvasp-host/message"
	"github.com/openvasp/openvasp-host/registry"
	"github.com/openvasp/openvasp-host/session"
	"github.com/openvasp/openvasp-host/transfers"
	"github.com/openvasp/openvasp-host/webhooks"
)

const (
	ApiVersion = "1.0.0"
	Header     = "OpenVASP-Host"
)

const (
	transferGroupURL = "/transfer"
	sessionGroupURL  = "/session"
	webhookGroupURL  = "/webhook"
	createURL        = "/create"
	resumeURL        = "/resume"
	replyURL         = "/reply"
	confirmURL       = "/confirm"
	dispatchURL      = "/dispatch"
	terminateURL     = "/terminate"
	listURL          = "/list"
	viewURL          = "/view"
	removeURL        = "/remove"
)

const (
	AliveURL            = "/alive"                        // URL to check if server is alive and version.
	TransferCreateURL   = transferGroupURL + createURL    // URL to start an outgoing transfer.
	TransferResumeURL   = transferGroupURL + resumeURL    // URL to retry the opening message of a stalled transfer.
	TransferReplyURL    = transferGroupURL + replyURL     // URL to answer an inbound transfer request.
	TransferConfirmURL  = transferGroupURL + confirmURL   // URL to confirm a dispatched transfer.
	TransferDispatchURL = transferGroupURL + dispatchURL  // URL to announce the blockchain transaction.
	TransferListURL     = transferGroupURL + listURL      // URL to list transactions by direction.
	TransferViewURL     = transferGroupURL + viewURL      // URL to read one transaction.
	SessionReplyURL     = sessionGroupURL + replyURL      // URL to answer an inbound session request.
	SessionTerminateURL = sessionGroupURL + terminateURL  // URL to terminate a session.
	SessionListURL      = sessionGroupURL + listURL       // URL to list live sessions.
	SessionViewURL      = sessionGroupURL + viewURL       // URL to read one live session.
	AnomaliesURL        = "/anomalies"                    // URL to read recent protocol anomalies.
	WebhookCreateURL    = webhookGroupURL + createURL     // URL to create a webhook.
	WebhookRemoveURL    = webhookGroupURL + removeURL     // URL to remove a webhook.
	WsURL               = "/ws"                           // URL to connect to websocket.
)

var ErrWrongPortSpecified = errors.New("port must be between 1 and 65535")

// Engine abstracts the travel rule operations the REST surface drives.
type Engine interface {
	StartTransfer(ctx context.Context, d transfers.Draft) (string, error)
	Resume(ctx context.Context, sessionID string) error
	SessionReply(ctx context.Context, sessionID string, code message.SessionReplyCode) error
	TransferReply(ctx context.Context, sessionID string, code message.TransferReplyCode, destinationAddress string) error
	ConfirmTransfer(ctx context.Context, sessionID string, code message.TransferConfirmationCode) error
	Dispatch(ctx context.Context, sessionID, sendingAddress, transactionHash string, at time.Time) error
	Terminate(ctx context.Context, sessionID string, code message.TerminationCode) error
	Session(sessionID string) (registry.View, error)
	Sessions() []registry.View
	Anomalies() []session.Anomaly
}

// WebhookRegisterer abstracts webhook subscription management.
type WebhookRegisterer interface {
	CreateWebhook(trigger byte, clientID string, h webhooks.Hook) error
	RemoveWebhook(trigger byte, clientID string) error
}

// ReactiveSubscriberProvider provides reactive subscription to transaction
// status changes. It allows the websocket hub to listen for updates made by
// the transfer projection.
type ReactiveSubscriberProvider interface {
	Cancel()
	Channel() <-chan transfers.Transaction
}

// Config contains configuration of the server.
type Config struct {
	Port  int    `yaml:"port"`  // Port to listen on.
	Token string `yaml:"token"` // Token required from websocket clients.
}

type server struct {
	engine Engine
	store  transfers.Store
	wh     WebhookRegisterer
	hub    *hub
	log    logger.Logger
	rx     ReactiveSubscriberProvider
	token  string
}

// Run initializes routing and runs the server. To stop the server cancel the context.
// It blocks until the context is canceled.
func Run(
	ctx context.Context, c Config, engine Engine, store transfers.Store,
	wh WebhookRegisterer, log logger.Logger, rx ReactiveSubscriberProvider,
) error {
	var err error
	ctxx, cancel := context.WithCancel(ctx)
	defer cancel()

	if c.Port == 0 || c.Port > 65535 {
		return ErrWrongPortSpecified
	}

	s := &server{
		engine: engine,
		store:  store,
		wh:     wh,
		hub:    newHub(log),
		log:    log,
		rx:     rx,
		token:  c.Token,
	}

	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   time.Second * 5,
		WriteTimeout:  time.Second * 5,
		ServerHeader:  Header,
		AppName:       ApiVersion,
		Concurrency:   4096,
	})
	router.Use(recover.New())

	router.Get(AliveURL, s.alive)

	transfer := router.Group(transferGroupURL)
	transfer.Post(createURL, s.transferCreate)
	transfer.Post(resumeURL, s.transferResume)
	transfer.Post(replyURL, s.transferReply)
	transfer.Post(confirmURL, s.transferConfirm)
	transfer.Post(dispatchURL, s.transferDispatch)
	transfer.Post(listURL, s.transferList)
	transfer.Post(viewURL, s.transferView)

	sess := router.Group(sessionGroupURL)
	sess.Post(replyURL, s.sessionReply)
	sess.Post(terminateURL, s.sessionTerminate)
	sess.Get(listURL, s.sessionList)
	sess.Post(viewURL, s.sessionView)

	router.Get(AnomaliesURL, s.anomalies)

	webhook := router.Group(webhookGroupURL)
	webhook.Post(createURL, s.webhookCreate)
	webhook.Post(removeURL, s.webhookRemove)

	router.Group(WsURL, func(c *fiber.Ctx) error { return s.wsWrapper(ctxx, c) })

	go func() {
		err := router.Listen(fmt.Sprintf("0.0.0.0:%v", c.Port))
		if err != nil {
			cancel()
		}
	}()
	go s.hub.run(ctxx)
	go s.runSubscriber(ctxx)

	<-ctxx.Done()

	if errx := router.Shutdown(); errx != nil {
		err = errors.Join(err, errx)
	}

	return err
}

func (s *server) runSubscriber(ctx context.Context) {
	defer s.rx.Cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case trx := <-s.rx.Channel():
			m := Message{
				Command:     CommandTransactionUpdated,
				Transaction: trx,
			}
			s.hub.broadcast <- &m
		}
	}
}
