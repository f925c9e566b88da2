package httpapi

import (
	"mime"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/presensi-app/presensi/internal/photos"
	"github.com/presensi-app/presensi/internal/presensi/service"
	"github.com/presensi-app/presensi/internal/presensi/types"
)

// multipartMemory is how much of a multipart form is buffered in memory
// before parts spill to temp files.
const multipartMemory = 1 << 20

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	id := identity(r.Context())

	in, err := s.readCheckIn(w, r, id)
	if err != nil {
		s.writeRequestError(w, r, err)
		return
	}

	resp, err := s.attendance.CheckIn(r.Context(), id, in)
	if err != nil {
		if in.ProofPhotoPath != "" {
			if rmErr := s.photos.Remove(in.ProofPhotoPath); rmErr != nil {
				s.logger.Printf("check-in: remove orphaned photo %s: %v", in.ProofPhotoPath, rmErr)
			}
		}
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// readCheckIn accepts a multipart form (latitude, longitude, image) or a
// JSON body. A photo, if any, is stored before the session is opened.
func (s *Server) readCheckIn(w http.ResponseWriter, r *http.Request, id types.Identity) (service.CheckIn, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return service.CheckIn{}, nil
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return service.CheckIn{}, &requestError{status: http.StatusUnsupportedMediaType, code: "unsupported_media_type", msg: "malformed Content-Type"}
	}

	switch mediaType {
	case "application/json":
		var req types.CheckInRequest
		if err := decodeJSON(r, &req); err != nil {
			return service.CheckIn{}, badRequest("bad_json", "invalid JSON body")
		}
		return service.CheckIn{Latitude: req.Latitude, Longitude: req.Longitude}, nil

	case "multipart/form-data", "application/x-www-form-urlencoded":
		return s.readCheckInForm(w, r, id)

	default:
		return service.CheckIn{}, &requestError{status: http.StatusUnsupportedMediaType, code: "unsupported_media_type", msg: "unsupported Content-Type " + mediaType}
	}
}

func (s *Server) readCheckInForm(w http.ResponseWriter, r *http.Request, id types.Identity) (service.CheckIn, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartMemory)

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return service.CheckIn{}, &requestError{status: http.StatusRequestEntityTooLarge, code: "too_large", msg: "upload is too large"}
		}
		return service.CheckIn{}, badRequest("bad_form", "invalid form body")
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	var in service.CheckIn
	if in.Latitude, err = parseCoordinate("latitude", r.FormValue("latitude")); err != nil {
		return service.CheckIn{}, err
	}
	if in.Longitude, err = parseCoordinate("longitude", r.FormValue("longitude")); err != nil {
		return service.CheckIn{}, err
	}

	file, hdr, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return in, nil
	case err != nil:
		return service.CheckIn{}, badRequest("bad_form", "unreadable image part")
	}
	defer file.Close()

	if s.photos == nil {
		return service.CheckIn{}, &requestError{status: http.StatusServiceUnavailable, code: "uploads_disabled", msg: "photo uploads are not configured"}
	}
	ref, err := s.photos.Save(id.UserID, hdr.Filename, file)
	switch {
	case errors.Is(err, photos.ErrNotImage):
		return service.CheckIn{}, badField("image", "only image files are allowed")
	case errors.Is(err, photos.ErrTooLarge):
		return service.CheckIn{}, &requestError{status: http.StatusRequestEntityTooLarge, code: "too_large", msg: "photo is too large"}
	case err != nil:
		return service.CheckIn{}, err
	}
	in.ProofPhotoPath = ref
	return in, nil
}

func (s *Server) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	resp, err := s.attendance.CheckOut(r.Context(), identity(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r)
	if err != nil {
		s.writeRequestError(w, r, err)
		return
	}

	if err := s.attendance.DeleteSession(r.Context(), identity(r.Context()).UserID, sessionID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEditSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r)
	if err != nil {
		s.writeRequestError(w, r, err)
		return
	}

	var req types.EditSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.writeRequestError(w, r, err)
		return
	}

	checkIn, err := parseOptionalTimestamp("checkIn", req.CheckIn, s.loc)
	if err != nil {
		s.writeRequestError(w, r, err)
		return
	}
	checkOut, err := parseOptionalTimestamp("checkOut", req.CheckOut, s.loc)
	if err != nil {
		s.writeRequestError(w, r, err)
		return
	}

	resp, err := s.attendance.EditSession(r.Context(), sessionID, checkIn, checkOut)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
