package metrics

import (
	"strings"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/apperr"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeReplayed = "replayed"
)

// Outcome classifies a command result: rejected for domain errors, error for
// everything else.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case apperr.ClassOf(err) != nil:
		return OutcomeRejected
	default:
		return OutcomeError
	}
}

// Metrics exposes domain command instruments.
type Metrics struct {
	commands      *prometheus.CounterVec
	rsvps         *prometheus.CounterVec
	donations     *prometheus.CounterVec
	donationTotal *prometheus.CounterVec
	transitions   *prometheus.CounterVec
}

// New registers the domain collectors on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_commands_total",
			Help: "Domain commands executed, by command and outcome.",
		}, []string{"command", "outcome"}),
		rsvps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_rsvps_total",
			Help: "RSVP responses recorded, by response status.",
		}, []string{"status"}),
		donations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_donations_total",
			Help: "Give or Get donation log entries, by type.",
		}, []string{"type"}),
		donationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_donation_amount_total",
			Help: "Sum of logged donation amounts in minor units, by type.",
		}, []string{"type"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_state_transitions_total",
			Help: "Lifecycle transitions, by machine and target state.",
		}, []string{"machine", "to"}),
	}
	for _, c := range []prometheus.Collector{m.commands, m.rsvps, m.donations, m.donationTotal, m.transitions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordCommand counts a command outcome. Safe on a nil receiver.
func (m *Metrics) RecordCommand(command, outcome string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(strings.TrimSpace(command), outcome).Inc()
}

func (m *Metrics) RecordRSVP(status string) {
	if m == nil {
		return
	}
	m.rsvps.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordDonation(donationType string, amount int64) {
	if m == nil {
		return
	}
	m.donations.WithLabelValues(donationType).Inc()
	m.donationTotal.WithLabelValues(donationType).Add(float64(amount))
}

func (m *Metrics) RecordTransition(machine, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(machine, to).Inc()
}
