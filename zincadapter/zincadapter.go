package zincadapter

import (
	"errors"
	"fmt"
	"time"

	"github.com/openvasp/openvasp-host/httpclient"
)

const (
	healthz        = "/healthz"
	createDocument = "/api/%s/_doc"
)

const timeout = time.Second * 5

var (
	ErrZincServerNotResponding = errors.New("zinc server not responding on given address")
	ErrZincServerWriteFailed   = errors.New("zinc server write failed")
)

// Config contains configuration for the log document back-end.
type Config struct {
	Address string `yaml:"address"` // logger back-end server address
	Index   string `yaml:"index"`   // unique index per service to easy search for logs by the service
	Token   string `yaml:"token"`   // authorization token
}

type message struct {
	AdditionalProp1 struct {
		Message string `json:"message"`
	} `json:"additionalProp1"`
}

// ZincClient provides a client that sends logs to the zincsearch backend.
type ZincClient struct {
	address   string
	indexName string
	token     string
}

// New creates a new ZincClient checking the back-end health first.
func New(cfg Config) (ZincClient, error) {
	if err := httpclient.MakeGetAuth(timeout, cfg.Token, fmt.Sprintf("%s%s", cfg.Address, healthz), nil); err != nil {
		return ZincClient{}, errors.Join(ErrZincServerNotResponding, err)
	}
	return ZincClient{cfg.Address, cfg.Index, cfg.Token}, nil
}

// Write satisfies io.Writer abstraction.
func (z *ZincClient) Write(p []byte) (n int, err error) {
	var msg message
	msg.AdditionalProp1.Message = string(p)
	err = httpclient.MakePostAuth(timeout, z.token, fmt.Sprintf("%s%s", z.address, fmt.Sprintf(createDocument, z.indexName)), msg, nil)
	if err != nil {
		return 0, errors.Join(ErrZincServerWriteFailed, err)
	}
	return len(p), nil
}
