package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/railzwaylabs/directdebit/internal/payment/domain"
)

type Metrics struct {
	transactions *prometheus.CounterVec
	gatewayCalls *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "directdebit_transactions_total",
			Help: "Transactions executed, by kind and resulting status.",
		}, []string{"kind", "status"}),
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "directdebit_gateway_calls_total",
			Help: "Gateway API calls, by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	if m.transactions, err = register(reg, m.transactions); err != nil {
		return nil, err
	}
	if m.gatewayCalls, err = register(reg, m.gatewayCalls); err != nil {
		return nil, err
	}
	return m, nil
}

// register reuses an identical collector that is already registered.
func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func (m *Metrics) observeTransaction(kind domain.TransactionKind, status domain.TransactionStatus) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(string(kind), string(status)).Inc()
}

func (m *Metrics) observeGatewayCall(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	var gatewayErr *domain.GatewayError
	switch {
	case err == nil:
	case errors.As(err, &gatewayErr):
		outcome = "rejected"
	default:
		outcome = "error"
	}
	m.gatewayCalls.WithLabelValues(operation, outcome).Inc()
}
