package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersPaidTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_paid_total",
		Help: "Total number of orders confirmed as paid",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order operations",
	}, []string{"reason"})

	PaymentConfirmLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_confirm_latency_seconds",
		Help:    "Latency of payment confirmation including inventory commit",
		Buckets: prometheus.DefBuckets,
	})

	TicketsMintedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickets_minted_total",
		Help: "Total number of tickets minted by paid orders",
	})

	TicketsRedeemedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickets_redeemed_total",
		Help: "Total number of tickets redeemed at validation",
	})

	TicketValidationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ticket_validations_failed_total",
		Help: "Total number of rejected ticket validations",
	}, []string{"reason"})

	CouponApplicationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_applications_total",
		Help: "Total number of coupon applications at order creation",
	}, []string{"result"})

	InventoryCommitsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_commits_failed_total",
		Help: "Total number of payment confirmations rejected by inventory",
	}, []string{"kind"})

	AuditPublishFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_publish_failed_total",
		Help: "Total number of audit events that could not be published",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
