package trigger

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

// DefaultMaxBodyBytes caps a single webhook delivery.
const DefaultMaxBodyBytes = int64(1 << 20)

type HTTPHandler struct {
	Trigger      *Trigger
	MaxBodyBytes int64
}

func NewHTTPHandler(trigger *Trigger) *HTTPHandler {
	return &HTTPHandler{Trigger: trigger, MaxBodyBytes: DefaultMaxBodyBytes}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeText(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeText(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeText(w, http.StatusBadRequest, MessageInvalidBody)
		return
	}

	res, _ := h.Trigger.Handle(r.Context(), Request{
		Headers: flattenHeaders(r.Header),
		Body:    body,
	})
	writeText(w, res.StatusCode, res.Body)
}

func flattenHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for key, values := range headers {
		out[strings.ToLower(key)] = strings.Join(values, ",")
	}
	return out
}

func writeText(w http.ResponseWriter, status int, body string) {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
