package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/mbjewelry/appraisal-server/internal/errors"
)

// maxRequestBody caps request bodies. Valuation batches can be large but
// bounded; anything past this is abuse.
const maxRequestBody = 10 << 20 // 10 MiB

// decodeJSON reads and decodes a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.UnmarshalRead(r.Body, dst); err != nil {
		return domainerrors.Validation("invalid JSON body").WithCause(err)
	}
	return nil
}

// urlParamInt64 parses a chi URL parameter as int64.
func urlParamInt64(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, domainerrors.Validationf("invalid %s", name)
	}
	return v, nil
}

// queryInt parses an optional integer query parameter, returning 0 when
// absent or malformed. Services apply their own defaults and clamps.
func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}
