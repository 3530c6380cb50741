package http

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/driftlock/identity/pkg/apperr"
)

const (
	nameMinLen     = 2
	nameMaxLen     = 50
	passwordMinLen = 6
	// bcrypt only reads the first 72 bytes; longer inputs are rejected
	// up front instead of silently truncated.
	passwordMaxLen = 72
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// decodeJSON parses the request body into dst. A missing or malformed
// body is a validation error, not an internal one.
func decodeJSON(r *http.Request, dst any) *apperr.Error {
	if r.Body == nil {
		return apperr.Validation("request body is required")
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("invalid JSON body")
	}
	return nil
}

// fieldErrors accumulates per-field validation messages.
type fieldErrors map[string]string

func (f fieldErrors) toError() *apperr.Error {
	if len(f) == 0 {
		return nil
	}
	return apperr.Validation("validation failed").WithDetails(f)
}

func validateName(f fieldErrors, name string) {
	switch {
	case strings.TrimSpace(name) == "":
		f["name"] = "name is required"
	case len(name) < nameMinLen:
		f["name"] = "name must be at least 2 characters"
	case len(name) > nameMaxLen:
		f["name"] = "name must be at most 50 characters"
	}
}

func validateEmail(f fieldErrors, email string) {
	switch {
	case email == "":
		f["email"] = "email is required"
	case !emailPattern.MatchString(email):
		f["email"] = "email is not a valid address"
	}
}

func validatePassword(f fieldErrors, password string) {
	switch {
	case password == "":
		f["password"] = "password is required"
	case len(password) < passwordMinLen:
		f["password"] = "password must be at least 6 characters"
	case len(password) > passwordMaxLen:
		f["password"] = "password must be at most 72 characters"
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *registerRequest) validate() *apperr.Error {
	f := fieldErrors{}
	validateName(f, req.Name)
	validateEmail(f, req.Email)
	validatePassword(f, req.Password)
	return f.toError()
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *loginRequest) validate() *apperr.Error {
	f := fieldErrors{}
	validateEmail(f, req.Email)
	if req.Password == "" {
		f["password"] = "password is required"
	}
	return f.toError()
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (req *refreshRequest) validate() *apperr.Error {
	if req.RefreshToken == "" {
		return apperr.Validation("refresh token is required")
	}
	return nil
}

type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (req *updateUserRequest) validate() *apperr.Error {
	if req.Name == nil && req.Email == nil {
		return apperr.Validation("at least one of name or email is required")
	}

	f := fieldErrors{}
	if req.Name != nil {
		validateName(f, *req.Name)
	}
	if req.Email != nil {
		validateEmail(f, *req.Email)
	}
	return f.toError()
}
