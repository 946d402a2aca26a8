package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nobelidx/internal/domain"
	logpkg "github.com/kailas-cloud/nobelidx/internal/logger"
	"github.com/kailas-cloud/nobelidx/internal/metrics"
)

// Error codes carried in errorResponse.Code.
const (
	codeInvalidArgument = "invalid_argument"
	codeInternal        = "internal"
	codeUnauthorized    = "unauthorized"
	codeNotFound        = "not_found"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns the code it wrote, or "" if not handled.
type errorHandler func(w http.ResponseWriter, err error) string

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		// the wrapped message already describes the bad argument
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, codeInvalidArgument, true),
	}
}

// sentinelHandler matches a single sentinel. exposeMessage controls whether
// err.Error() is sent to the client or only the sentinel's text.
func sentinelHandler(sentinel error, status int, code string, exposeMessage bool) errorHandler {
	return func(w http.ResponseWriter, err error) string {
		if !errors.Is(err, sentinel) {
			return ""
		}
		msg := sentinel.Error()
		if exposeMessage {
			msg = err.Error()
		}
		writeError(w, status, code, msg)
		return code
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, method string, err error) {
	_, log := logpkg.With(r.Context(), zap.String("rpc", method))
	for _, h := range s.errorHandlers {
		if code := h(w, err); code != "" {
			log.Debug("rpc rejected", zap.String("code", code), zap.Error(err))
			metrics.RecordRPCError(method, code)
			return
		}
	}
	log.Error("rpc failed", zap.Error(err))
	metrics.RecordRPCError(method, codeInternal)
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
