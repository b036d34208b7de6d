package utils

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/itchan-dev/nanashi/shared/errors"
	"github.com/itchan-dev/nanashi/shared/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// WriteErrorAndStatusCode maps core error kinds to HTTP. Anything without a
// status (storage failures included) becomes a generic 500; the cause is
// logged, not sent.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	var withStatus *errors.ErrorWithStatusCode
	if stderrors.As(err, &withStatus) {
		http.Error(w, withStatus.Message, withStatus.StatusCode)
		return
	}
	var validationErr *errors.ValidationError
	if stderrors.As(err, &validationErr) {
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return
	}
	logger.Log.Error("request failed", "error", err)
	http.Error(w, "internal error, try again later", http.StatusInternalServerError)
}

// GetIP returns the poster's address. Forwarding headers are read only when
// the connection comes from a trusted proxy; from anyone else they are
// spoofable and ignored.
func GetIP(r *http.Request, proxies *Proxies) (string, error) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	remote := net.ParseIP(host)
	if remote == nil {
		return "", &errors.ErrorWithStatusCode{Message: fmt.Sprintf("invalid client address %q", host), StatusCode: http.StatusBadRequest}
	}
	if !proxies.Contains(remote) {
		return host, nil
	}

	if ip, ok := forwardedFor(r.Header.Values("X-Forwarded-For"), proxies); ok {
		return ip, nil
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip, nil
	}
	return host, nil
}

// forwardedFor walks the chain from the nearest hop and returns the first
// address outside the trusted set. Hops left of a malformed entry are not
// believed.
func forwardedFor(values []string, proxies *Proxies) (string, bool) {
	var hops []string
	for _, v := range values {
		for _, hop := range strings.Split(v, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}

	client := ""
	for i := len(hops) - 1; i >= 0; i-- {
		ip := net.ParseIP(hops[i])
		if ip == nil {
			break
		}
		client = hops[i]
		if !proxies.Contains(ip) {
			return client, true
		}
	}
	// every hop is a trusted proxy: the farthest one is the client
	return client, client != ""
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("request validation failed", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("request body is not json", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}
