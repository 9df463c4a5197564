package health

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/mkaric/squadup/internal/modules/core"

	"github.com/go-chi/chi"
)

type status struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Goroutines    int     `json:"goroutines"`
	AllocBytes    uint64  `json:"alloc_bytes"`
}

// NewServer builds the process liveness endpoint. No session data is
// exposed here.
func NewServer(port int) *http.Server {
	started := time.Now()

	r := chi.NewRouter()
	r.Use(core.CorrelationIDHTTPMiddleware)
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		core.WriteOK(w, req, status{
			Status:        "ok",
			UptimeSeconds: time.Since(started).Seconds(),
			Goroutines:    runtime.NumGoroutine(),
			AllocBytes:    mem.Alloc,
		})
	})

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}
}
