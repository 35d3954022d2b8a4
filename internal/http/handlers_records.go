package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func (s *Server) decodePayload(w http.ResponseWriter, r *http.Request) (core.Payload, error) {
	parser := NewRequestBodyParser(w, r)
	if err := parser.Parse(); err != nil {
		return core.Payload{}, err
	}
	return ParsePayload(parser)
}

func (s *Server) handleCreate(svc *services.RecordService) http.HandlerFunc {
	kind := svc.Kind()
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.decodePayload(w, r)
		if err != nil {
			s.writeServiceError(w, r, kind, log.OpCreate, err)
			return
		}
		if _, err := svc.Create(r.Context(), p); err != nil {
			s.writeServiceError(w, r, kind, log.OpCreate, err)
			return
		}
		NewJSONResponse().Message(kind.Label() + " Added").Write(w)
	}
}

func (s *Server) handleList(svc *services.RecordService) http.HandlerFunc {
	kind := svc.Kind()
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.List(r.Context())
		if err != nil {
			s.writeServiceError(w, r, kind, log.OpList, err)
			return
		}
		NewJSONResponse().Body(records).Write(w)
	}
}

func (s *Server) handleGet(svc *services.RecordService) http.HandlerFunc {
	kind := svc.Kind()
	return func(w http.ResponseWriter, r *http.Request) {
		tx, err := svc.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			s.writeServiceError(w, r, kind, log.OpRead, err)
			return
		}
		NewJSONResponse().Body(tx).Write(w)
	}
}

func (s *Server) handleUpdate(svc *services.RecordService) http.HandlerFunc {
	kind := svc.Kind()
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.decodePayload(w, r)
		if err != nil {
			s.writeServiceError(w, r, kind, log.OpUpdate, err)
			return
		}
		tx, err := svc.Update(r.Context(), r.PathValue("id"), p)
		if err != nil {
			s.writeServiceError(w, r, kind, log.OpUpdate, err)
			return
		}
		NewJSONResponse().Body(map[string]any{
			"message":     kind.Label() + " Updated Successfully",
			kind.String(): tx,
		}).Write(w)
	}
}

func (s *Server) handleDelete(svc *services.RecordService) http.HandlerFunc {
	kind := svc.Kind()
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), r.PathValue("id")); err != nil {
			s.writeServiceError(w, r, kind, log.OpDelete, err)
			return
		}
		NewJSONResponse().Message(kind.Label() + " Deleted Successfully").Write(w)
	}
}
