package handler

import (
	"net/http"
	"strconv"

	"telehealth-booking/internal/delivery/http/middleware"
	"telehealth-booking/internal/domain/entity"
	"telehealth-booking/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func actorFromRequest(w http.ResponseWriter, r *http.Request) (entity.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
	}
	return actor, ok
}

func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid "+label+" ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// pageFromQuery reads ?page= and ?limit=; bad values fall back to defaults.
func pageFromQuery(r *http.Request) entity.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return entity.Page{Page: page, Limit: limit}.Normalize()
}
