package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sellit_chat_messages_sent_total",
		Help: "Messages appended to chats.",
	})
	PushesDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sellit_push_notifications_dispatched_total",
		Help: "Push notifications accepted by the provider.",
	})
	PushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sellit_push_notification_failures_total",
		Help: "Push chunks that failed submission or validation.",
	})
)

// Handler exposes the registry for Prometheus scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
