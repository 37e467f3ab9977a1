package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "ChatPay-Relay/docs"
	"ChatPay-Relay/internal/observability/metrics"
)

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(instrument)

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	r.HandleFunc("/intent", s.handleIntent).Methods(http.MethodPost)
	r.HandleFunc("/create-unsigned-tx", s.handleCreateUnsignedTx).Methods(http.MethodPost)
	r.HandleFunc("/submit-signed-tx", s.handleSubmitSignedTx).Methods(http.MethodPost)
	r.HandleFunc("/verify-tx", s.handleVerifyTx).Methods(http.MethodPost)
	r.HandleFunc("/save-history", s.handleSaveHistory).Methods(http.MethodPost)
	r.HandleFunc("/debug/decode-unsigned", s.handleDecodeUnsigned).Methods(http.MethodPost)

	koios := r.PathPrefix("/koios").Subrouter()
	koios.HandleFunc("/address_info", s.handleAddressInfoQuery).Methods(http.MethodGet)
	koios.HandleFunc("/address_info", s.handleAddressInfoBatch).Methods(http.MethodPost)
	koios.HandleFunc("/address_utxo", s.handleAddressUTXO).Methods(http.MethodPost)

	policy := cors.New(cors.Options{
		AllowedOrigins:   s.deps.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return policy.Handler(r)
}

// statusRecorder 记录写出的状态码。
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument 以路由模板为标签记录请求指标。
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		label := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				label = tpl
			}
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		metrics.ObserveHTTPRequest(label, r.Method, rec.status, time.Since(start))
	})
}
