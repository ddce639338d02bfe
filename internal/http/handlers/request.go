package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/middleware"
	"github.com/hongminglow/lateral-entry-be/internal/models"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it. An empty body decodes to the zero
// value so optional payloads can be omitted.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Wrap(apperr.ErrValidation, "Invalid JSON payload", err)
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError reports the first failing field.
func validationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return apperr.Wrap(apperr.ErrValidation, "Parameter error", err)
	}
	fe := errs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return apperr.Newf(apperr.ErrValidation, "%s is required", field)
	case "oneof":
		return apperr.Newf(apperr.ErrValidation, "%s must be one of: %s", field, fe.Param())
	case "max":
		return apperr.Newf(apperr.ErrValidation, "%s is too long", field)
	default:
		return apperr.Newf(apperr.ErrValidation, "%s is invalid", field)
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Newf(apperr.ErrValidation, "%s must be a positive integer", name)
	}
	return id, nil
}

// page reads page and per_page, leaving zero for absent or malformed values so the
// services apply their defaults.
func page(r *http.Request) (int, int) {
	q := r.URL.Query()
	p, _ := strconv.Atoi(q.Get("page"))
	pp, _ := strconv.Atoi(q.Get("per_page"))
	return models.ClampPage(p, pp)
}

// currentUser returns the user the gate attached. Routes behind RequireAuth always have one.
func currentUser(r *http.Request) *models.UserContext {
	user, _ := middleware.UserFrom(r.Context())
	return user
}

func userID(r *http.Request) int64 {
	if user := currentUser(r); user != nil {
		return user.UserID
	}
	return 0
}

func paginated(key string, items any, pageNum, perPage int, total int64) map[string]any {
	return map[string]any{
		key:          items,
		"pagination": models.NewPagination(pageNum, perPage, total),
	}
}
