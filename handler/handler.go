package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/Doridian/synthDNS/util"
	"github.com/Doridian/synthDNS/zone"
	"github.com/miekg/dns"
	"go.uber.org/zap"
)

const servFailHandlerName = "servfail"

type Handler struct {
	// UDPSize is the EDNS0 buffer size advertised in replies. Set it before serving.
	UDPSize uint16

	zones      *zone.Zones
	counter    *util.RequestCounter
	generators map[zone.Kind]Generator
	log        *zap.Logger
}

// New returns a dns.Handler dispatching queries under zones to one generator
// per zone kind. Every kind needs a generator.
func New(zones *zone.Zones, counter *util.RequestCounter, generators map[zone.Kind]Generator, log *zap.Logger) (*Handler, error) {
	for _, k := range zone.Kinds() {
		if generators[k] == nil {
			return nil, fmt.Errorf("no generator for zone %s", k)
		}
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Handler{
		UDPSize:    util.DefaultUDPSize,
		zones:      zones,
		counter:    counter,
		generators: generators,
		log:        log,
	}, nil
}

func (h *Handler) ServeDNS(wr dns.ResponseWriter, msg *dns.Msg) {
	startTime := time.Now()

	reply, handlerName, err := h.handle(wr, msg)
	if err == nil {
		err = wr.WriteMsg(reply)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrTransportSend, err)
		}
	}

	if err != nil {
		h.log.Warn("Error handling query",
			zap.String("name", questionName(msg)),
			zap.String("kind", ErrorKind(err)),
			zap.Stringer("remote", wr.RemoteAddr()),
			zap.Error(err),
		)

		reply = serverFailure(msg)
		handlerName = servFailHandlerName
		sendErr := wr.WriteMsg(reply)
		if sendErr != nil {
			h.log.Error("Error sending SERVFAIL",
				zap.String("name", questionName(msg)),
				zap.Stringer("remote", wr.RemoteAddr()),
				zap.Error(sendErr),
			)
			return
		}
	}

	MeasureQuery(startTime, reply, handlerName)
}

func (h *Handler) handle(wr dns.ResponseWriter, msg *dns.Msg) (*dns.Msg, string, error) {
	if msg.Opcode != dns.OpcodeQuery {
		return nil, "", fmt.Errorf("%w %s", ErrInvalidOpCode, opcodeString(msg.Opcode))
	}

	if msg.Response {
		return nil, "", fmt.Errorf("%w response", ErrInvalidMessageType)
	}

	if len(msg.Question) == 0 {
		return nil, "", ErrNoQuestion
	}

	q := &msg.Question[0]
	kind, ok := h.zones.Classify(q.Name)
	if !ok {
		return nil, "", fmt.Errorf("%w %s", ErrInvalidZone, q.Name)
	}

	gen := h.generators[kind]
	req := &Request{
		Question: q,
		RemoteIP: util.ExtractIP(wr.RemoteAddr()),
		Count:    h.counter.Increment(),
	}

	answer, rcode, err := gen.HandleQuestion(req)
	if err != nil {
		return nil, gen.GetName(), fmt.Errorf("zone %s: %w", kind, err)
	}

	reply := &dns.Msg{
		Compress: true,
		MsgHdr: dns.MsgHdr{
			Authoritative: true,
		},
	}
	reply.SetRcode(msg, rcode)
	reply.Answer = answer

	util.ApplyEDNS0Reply(msg, reply, h.UDPSize)

	h.log.Debug("Answered query",
		zap.String("name", q.Name),
		zap.String("zone", kind.String()),
		zap.String("rcode", dns.RcodeToString[reply.Rcode]),
		zap.Int("answers", len(reply.Answer)),
	)

	return reply, gen.GetName(), nil
}

func serverFailure(msg *dns.Msg) *dns.Msg {
	reply := &dns.Msg{}
	reply.SetRcode(msg, dns.RcodeServerFailure)
	return reply
}

func questionName(msg *dns.Msg) string {
	if len(msg.Question) == 0 {
		return ""
	}
	return msg.Question[0].Name
}

func opcodeString(opcode int) string {
	str, ok := dns.OpcodeToString[opcode]
	if !ok {
		return fmt.Sprintf("%d", opcode)
	}
	return str
}

func (h *Handler) loadables() []Loadable {
	loadables := make([]Loadable, 0, len(h.generators))
	seen := make(map[Generator]bool, len(h.generators))
	for _, k := range zone.Kinds() {
		gen := h.generators[k]
		if seen[gen] {
			continue
		}
		seen[gen] = true

		loadable, ok := gen.(Loadable)
		if ok {
			loadables = append(loadables, loadable)
		}
	}
	return loadables
}

func (h *Handler) Refresh() error {
	var errs []error
	for _, l := range h.loadables() {
		errs = append(errs, l.Refresh())
	}
	return errors.Join(errs...)
}

func (h *Handler) Start() error {
	for _, l := range h.loadables() {
		err := l.Start()
		if err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) Stop() error {
	var errs []error
	for _, l := range h.loadables() {
		errs = append(errs, l.Stop())
	}
	return errors.Join(errs...)
}
