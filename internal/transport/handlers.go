package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/rpggio/chromalabel/internal/domain/activity"
	"github.com/rpggio/chromalabel/internal/domain/palette"
	"github.com/rpggio/chromalabel/internal/domain/result"
	"github.com/rpggio/chromalabel/internal/domain/trial"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

type indexPage struct {
	Colors []palette.Color
}

type setupResponse struct {
	ParticipantID  string   `json:"participant_id"`
	SessionID      string   `json:"session_id"`
	Trials         []string `json:"trials"`
	TotalTrials    int      `json:"total_trials"`
	CatchPositions []int    `json:"catch_positions,omitempty"`
}

type getTrialRequest struct {
	ImageName     string `json:"image_name"`
	ParticipantID string `json:"participant_id"`
	SessionID     string `json:"session_id"`
}

type saveResultRequest struct {
	ParticipantID     string   `json:"participant_id"`
	ImageName         string   `json:"image_name"`
	Folder            string   `json:"folder"`
	SegmentationLabel int      `json:"segmentation_label"`
	SelectedColors    []string `json:"selected_colors"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type colorResponse struct {
	Name string `json:"name"`
	RGB  [3]int `json:"rgb"`
	Hex  string `json:"hex"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var colors []palette.Color
	if s.cfg.Palette != nil {
		colors = s.cfg.Palette.Colors()
	}
	s.render(w, r, "index.html", indexPage{Colors: colors})
}

func (s *Server) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "upload.html", nil)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.cfg.Pages == nil || s.cfg.Pages.Lookup(name) == nil {
		s.writeError(w, r, fmt.Errorf("page %s not loaded", name))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.cfg.Pages.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("render page", "page", name, "error", err)
	}
}

func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	participantID := strings.TrimSpace(r.FormValue("participant_id"))
	if participantID == "" {
		participantID = s.cfg.DefaultParticipant
	}

	if err := s.cfg.Services.Results.Ensure(participantID); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.cfg.Services.Sequences.Build(r.Context(), participantID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, setupResponse{
		ParticipantID:  sess.ParticipantID,
		SessionID:      sess.SessionID,
		Trials:         sess.Trials,
		TotalTrials:    sess.TotalTrials(),
		CatchPositions: sess.CatchPositions,
	})
}

func (s *Server) handleGetTrial(w http.ResponseWriter, r *http.Request) {
	var req getTrialRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ImageName == "" {
		s.writeError(w, r, fmt.Errorf("%w: image_name is required", errInvalidBody))
		return
	}

	content, err := s.cfg.Services.Trials.Get(r.Context(), trial.Request{
		ImageName:     req.ImageName,
		ParticipantID: req.ParticipantID,
		SessionID:     req.SessionID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (s *Server) handleSaveResult(w http.ResponseWriter, r *http.Request) {
	var req saveResultRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	participantID := strings.TrimSpace(req.ParticipantID)
	if participantID == "" {
		participantID = s.cfg.DefaultParticipant
	}

	row := result.Row{
		ImageName:         req.ImageName,
		Folder:            req.Folder,
		SegmentationLabel: req.SegmentationLabel,
		SelectedColors:    req.SelectedColors,
	}
	if err := s.cfg.Services.Results.Append(r.Context(), participantID, row); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "upload too large"})
			return
		}
		s.writeError(w, r, fmt.Errorf("%w: %v", errInvalidBody, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	rgbSaved, err := s.saveFiles(r.MultipartForm.File["rgb_images"], s.cfg.UploadRGB)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	segSaved, err := s.saveFiles(r.MultipartForm.File["seg_images"], s.cfg.UploadSeg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.cfg.Services.Activity != nil {
		s.cfg.Services.Activity.Record(r.Context(), &activity.ActivityEntry{
			ActivityType: activity.TypeImagesUploaded,
			Summary:      fmt.Sprintf("uploaded %d rgb and %d segmentation images", len(rgbSaved), len(segSaved)),
			Details:      activity.Details(map[string][]string{"rgb": rgbSaved, "segmentation": segSaved}),
		})
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Files uploaded successfully"})
}

func (s *Server) saveFiles(headers []*multipart.FileHeader, category string) ([]string, error) {
	saved := make([]string, 0, len(headers))
	for _, fh := range headers {
		if fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return saved, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
		}
		id, err := s.cfg.Services.Uploads.Save(category, fh.Filename, f)
		_ = f.Close()
		if err != nil {
			return saved, err
		}
		saved = append(saved, id)
	}
	return saved, nil
}

func (s *Server) handleColors(w http.ResponseWriter, _ *http.Request) {
	out := []colorResponse{}
	if s.cfg.Palette != nil {
		for _, c := range s.cfg.Palette.Colors() {
			out = append(out, colorResponse{
				Name: c.Name,
				RGB:  [3]int{int(c.RGB[0]), int(c.RGB[1]), int(c.RGB[2])},
				Hex:  c.Hex,
			})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Services.Activity == nil {
		writeJSON(w, http.StatusOK, []activity.ActivityEntry{})
		return
	}

	opts := activity.ListActivityOptions{
		ParticipantID: r.URL.Query().Get("participant_id"),
		Limit:         defaultActivityLimit,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			s.writeError(w, r, fmt.Errorf("%w: limit must be a positive integer", errInvalidBody))
			return
		}
		opts.Limit = min(limit, maxActivityLimit)
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		typ := activity.ActivityType(raw)
		opts.ActivityType = &typ
	}

	entries, err := s.cfg.Services.Activity.GetRecentActivity(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []activity.ActivityEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}
