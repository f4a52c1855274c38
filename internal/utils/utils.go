package utils

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vaughan-dsouza/thepath/internal/validation"
)

// URLParamInt64 parses the named chi path parameter. A non-integer value
// yields a *validation.Error located at ["path", name].
func URLParamInt64(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, validation.PathInt64Error(name)
	}
	return id, nil
}
