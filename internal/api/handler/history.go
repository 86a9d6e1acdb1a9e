package handler

import (
	"net/http"
	"strconv"

	"github.com/ansium/paperdigest/internal/api/middleware"
	"github.com/ansium/paperdigest/internal/api/response"
	"github.com/ansium/paperdigest/internal/store"
)

// NewHistoryHandler returns the handler for GET /api/v1/history, listing the
// caller's interpretation records newest first.
func NewHistoryHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		limit := queryInt(r, "limit", 20)
		offset := queryInt(r, "offset", 0)

		records, total, err := st.ListHistory(r.Context(), userID, limit, offset)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to list history", nil)
			return
		}

		response.Collection(w, records, response.PaginationMeta{
			Limit:   limit,
			Offset:  offset,
			Total:   total,
			HasNext: offset+len(records) < total,
		})
	}
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}
