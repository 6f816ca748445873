package apierror

import (
	"fmt"
	"net/http"

	"github.com/rotisserie/eris"
	log "github.com/sirupsen/logrus"

	"github.com/tauhid97k/voters-info-api/internal/validation"
	"github.com/tauhid97k/voters-info-api/pkg"
)

type response struct {
	Message         string                  `json:"message"`
	ValidationError []validation.FieldError `json:"validationError,omitempty"`

	// development only
	Type       string `json:"type,omitempty"`
	StackTrace string `json:"stackTrace,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Responder is the single place where failures are turned into HTTP responses.
type Responder struct {
	verbose bool
}

func NewResponder(verbose bool) *Responder {
	return &Responder{verbose: verbose}
}

func (rs *Responder) Respond(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := From(err)

	if apiErr.Kind == KindUnexpected || apiErr.Kind == KindTimeout {
		log.Errorf("[%s %s] %s: %s", r.Method, r.URL.Path, apiErr.Kind, err)
	} else {
		log.Tracef("[%s %s] %s: %s", r.Method, r.URL.Path, apiErr.Kind, apiErr.Message)
	}

	resp := response{
		Message:         apiErr.Message,
		ValidationError: apiErr.Fields,
	}

	if rs.verbose {
		resp.Type = string(apiErr.Kind)
		resp.StackTrace = eris.ToString(apiErr.cause, true)
		resp.Error = err.Error()
		// reveal the underlying failure while developing
		if apiErr.Kind == KindUnexpected {
			resp.Message = err.Error()
		}
	}

	pkg.WriteJSON(w, apiErr.Status, resp)
}

func (rs *Responder) NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.Respond(w, r, NotFound(fmt.Sprintf("%s not found", r.URL.Path)))
	})
}

func (rs *Responder) MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.Respond(w, r, Operational(
			http.StatusMethodNotAllowed,
			fmt.Sprintf("%s %s not allowed", r.Method, r.URL.Path),
		))
	})
}
