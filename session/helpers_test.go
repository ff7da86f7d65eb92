package session

import (
	"context"
	"errors"
	"sync"

	"github.com/openvasp/openvasp-host/message"
)

type fakeGateway struct {
	mux      sync.Mutex
	payloads []message.Msg
	failNext bool
}

func (f *fakeGateway) Send(ctx context.Context, sessionID, vaspCode, payload string) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.failNext {
		f.failNext = false
		return errors.New("relay unreachable")
	}
	m, err := message.Decode(payload)
	if err != nil {
		return err
	}
	f.payloads = append(f.payloads, m)
	return nil
}

func (f *fakeGateway) sent() []message.Msg {
	f.mux.Lock()
	defer f.mux.Unlock()
	out := make([]message.Msg, len(f.payloads))
	copy(out, f.payloads)
	return out
}

func (f *fakeGateway) last() message.Msg {
	f.mux.Lock()
	defer f.mux.Unlock()
	if len(f.payloads) == 0 {
		return nil
	}
	return f.payloads[len(f.payloads)-1]
}

type recordedEvent struct {
	name      string
	sessionID string
}

type fakeEvents struct {
	mux    sync.Mutex
	events []recordedEvent
}

func (f *fakeEvents) record(name, sessionID string) {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.events = append(f.events, recordedEvent{name: name, sessionID: sessionID})
}

func (f *fakeEvents) names() []string {
	f.mux.Lock()
	defer f.mux.Unlock()
	out := make([]string, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.name)
	}
	return out
}

func (f *fakeEvents) SessionRequestSent(_ context.Context, id string) { f.record("SessionRequestSent", id) }
func (f *fakeEvents) SessionRequestReceived(_ context.Context, id string, _ message.VaspInformation) {
	f.record("SessionRequestReceived", id)
}
func (f *fakeEvents) SessionReplySent(_ context.Context, id string, _ message.SessionReplyCode) {
	f.record("SessionReplySent", id)
}
func (f *fakeEvents) SessionReplyReceived(_ context.Context, id string, _ message.SessionReplyCode, _ message.VaspInformation) {
	f.record("SessionReplyReceived", id)
}
func (f *fakeEvents) TransferRequestSent(_ context.Context, id string) { f.record("TransferRequestSent", id) }
func (f *fakeEvents) TransferRequestReceived(_ context.Context, id string, _ message.TransferRequest) {
	f.record("TransferRequestReceived", id)
}
func (f *fakeEvents) TransferReplySent(_ context.Context, id string, _ message.TransferReplyCode, _ string) {
	f.record("TransferReplySent", id)
}
func (f *fakeEvents) TransferReplyReceived(_ context.Context, id string, _ message.TransferReplyCode, _ string) {
	f.record("TransferReplyReceived", id)
}
func (f *fakeEvents) TransferDispatchSent(_ context.Context, id string, _ message.BlockchainTransaction) {
	f.record("TransferDispatchSent", id)
}
func (f *fakeEvents) TransferDispatchReceived(_ context.Context, id string, _ message.BlockchainTransaction) {
	f.record("TransferDispatchReceived", id)
}
func (f *fakeEvents) TransferConfirmationSent(_ context.Context, id string, _ message.TransferConfirmationCode) {
	f.record("TransferConfirmationSent", id)
}
func (f *fakeEvents) TransferConfirmationReceived(_ context.Context, id string, _ message.TransferConfirmationCode) {
	f.record("TransferConfirmationReceived", id)
}
func (f *fakeEvents) SessionTerminated(_ context.Context, id string, _ message.TerminationCode) {
	f.record("SessionTerminated", id)
}

type fakeReporter struct {
	mux       sync.Mutex
	anomalies []Anomaly
}

func (f *fakeReporter) Report(a Anomaly) {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.anomalies = append(f.anomalies, a)
}

func (f *fakeReporter) count() int {
	f.mux.Lock()
	defer f.mux.Unlock()
	return len(f.anomalies)
}

func localVasp() message.VaspInformation {
	return message.VaspInformation{
		Name: "Originator VASP",
		ID:   "aa0000ff12345678",
		PK:   "0x04aa",
		PostalAddress: message.PostalAddress{
			Street: "Mainstreet", Building: "1", PostCode: "8000", Town: "Zurich", Country: "CH",
		},
	}
}

func peerVasp() message.VaspInformation {
	return message.VaspInformation{
		Name: "Beneficiary VASP",
		ID:   "bb0000ff87654321",
		PK:   "0x04bb",
		PostalAddress: message.PostalAddress{
			Street: "Sidestreet", Building: "2", PostCode: "1010", Town: "Vienna", Country: "AT",
		},
	}
}

func testOriginatorEntity() message.Originator {
	o, _ := message.NewOriginator(
		"John Smith",
		"1234567800000000000001",
		message.PostalAddress{Street: "Mainstreet", Building: "1", PostCode: "8000", Town: "Zurich", Country: "CH"},
	)
	return o
}

func testTransfer() message.TransferDetails {
	return message.TransferDetails{
		VirtualAsset: message.AssetETH,
		TransferType: message.TransferTypeBlockchain,
		Amount:       "1.5",
	}
}

func newTestOriginator(gw *fakeGateway, ev *fakeEvents, rep *fakeReporter) *Originator {
	return NewOriginator(
		"session-test",
		testOriginatorEntity(),
		message.Beneficiary{Name: "Jane Doe", VAAN: "8765432100000000000002"},
		testTransfer(),
		localVasp(), peerVasp(),
		gw, ev, rep,
	)
}
