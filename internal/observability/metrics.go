package observability

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fashionetl/internal/transform"
)

var (
	PagesFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_pages_fetched_total",
			Help: "Total de páginas baixadas e processadas",
		},
	)
	PagesFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_pages_failed_total",
			Help: "Total de páginas ignoradas por erro de download ou parsing",
		},
	)
	RawProducts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_raw_products_total",
			Help: "Total de produtos brutos extraídos",
		},
	)
	StageRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "normalizer_stage_rows",
			Help: "Linhas restantes após cada etapa da limpeza na última execução",
		},
		[]string{"stage"},
	)
	CoercionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "normalizer_coercion_failures_total",
			Help: "Total de lotes com falha na conversão final de tipos",
		},
	)
	ProductsLoaded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loader_products_total",
			Help: "Total de produtos limpos gravados, por destino",
		},
		[]string{"sink"},
	)
)

var registerOnce sync.Once

func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(PagesFetched, PagesFailed, RawProducts, StageRows, CoercionFailures, ProductsLoaded)
	})
}

func Start(port string) {
	Register(prometheus.DefaultRegisterer)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			slog.Warn("servidor de métricas parado", "err", err)
		}
	}()
}

// NormalizerObserver records normalizer passes as metrics.
type NormalizerObserver struct{}

func (NormalizerObserver) StageDone(stage transform.Stage, rows int) {
	StageRows.WithLabelValues(string(stage)).Set(float64(rows))
}

func (NormalizerObserver) CoercionFailed(error) {
	CoercionFailures.Inc()
}
