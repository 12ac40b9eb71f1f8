package meals

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/fdg312/meal-lens/internal/biometrics"
	"github.com/fdg312/meal-lens/internal/imaging"
)

// multipartOverhead covers form fields sent next to the image.
const multipartOverhead = 1 << 20

// Handler handles HTTP requests for meal images.
type Handler struct {
	service  *Service
	ingestor *imaging.Ingestor
}

func NewHandler(service *Service, ingestor *imaging.Ingestor) *Handler {
	return &Handler{service: service, ingestor: ingestor}
}

// HandlePreview handles POST /v1/meals/preview
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.readImage(w, r)
	if !ok {
		return
	}

	data, contentType, err := imaging.Preview(payload)
	if err != nil {
		if errors.Is(err, imaging.ErrUndecodable) {
			writeError(w, http.StatusUnprocessableEntity, "undecodable_image", "Image could not be decoded")
			return
		}
		if errors.Is(err, imaging.ErrImageTooLarge) {
			writeError(w, http.StatusUnprocessableEntity, "image_too_large", "Image dimensions exceed the preview limit")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to render preview")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleAnalyze handles POST /v1/meals/analyze
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.readImage(w, r)
	if !ok {
		return
	}

	profile, err := parseProfile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	analysis, err := h.service.Analyze(r.Context(), payload)
	if err != nil {
		var extErr *ExternalServiceError
		if errors.As(err, &extErr) {
			writeErrorDetail(w, http.StatusBadGateway, "analysis_failed", UnprocessedMessage, extErr.Detail())
			return
		}
		if errors.Is(err, imaging.ErrMissingInput) {
			writeError(w, http.StatusBadRequest, "missing_image", MissingImageMessage)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to analyze meal")
		return
	}

	resp := AnalyzeResponse{
		ID:       analysis.ID,
		Provider: analysis.Provider,
		Response: analysis.Text,
		Labels:   analysis.Labels,
	}
	if profile.WeightKg > 0 && profile.HeightM > 0 {
		calories := biometrics.DailyCalorieNeeds(profile.WeightKg, profile.HeightM, profile.Age, profile.Gender, profile.Activity)
		resp.DailyCalories = &calories
		resp.Notes = []string{
			fmt.Sprintf(dailyCaloriesNoteFmt, calories),
			goalAlignmentNote,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// readImage parses the multipart form and ingests the "image" part. It
// writes the error response itself and reports false on failure.
func (h *Handler) readImage(w http.ResponseWriter, r *http.Request) (imaging.Payload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.ingestor.MaxBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(h.ingestor.MaxBytes()); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "file_too_large", "Image exceeds the upload limit")
			return imaging.Payload{}, false
		}
		writeError(w, http.StatusBadRequest, "invalid_payload", "Expected multipart/form-data")
		return imaging.Payload{}, false
	}

	source := imaging.ParseSource(r.FormValue("source"))

	var upload io.Reader
	file, fileHeader, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		upload = file
	case !errors.Is(err, http.ErrMissingFile):
		writeError(w, http.StatusBadRequest, "invalid_payload", "Failed to read image")
		return imaging.Payload{}, false
	}

	payload, err := h.ingestor.IngestFile(source, upload, fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, imaging.ErrMissingInput):
			writeError(w, http.StatusBadRequest, "missing_image", MissingImageMessage)
		case errors.Is(err, imaging.ErrFileTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "file_too_large", "Image exceeds the upload limit")
		case errors.Is(err, imaging.ErrUnsupportedMime):
			writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", err.Error())
		default:
			writeError(w, http.StatusBadRequest, "invalid_payload", "Failed to read image")
		}
		return imaging.Payload{}, false
	}

	return payload, true
}

// parseProfile reads the optional biometric form fields. Missing numbers
// are zero, which skips the calorie note.
func parseProfile(r *http.Request) (biometrics.Profile, error) {
	weight, err := formFloat(r, "weight_kg")
	if err != nil {
		return biometrics.Profile{}, err
	}
	height, err := formFloat(r, "height_m")
	if err != nil {
		return biometrics.Profile{}, err
	}

	age := 0
	if raw := strings.TrimSpace(r.FormValue("age")); raw != "" {
		age, err = strconv.Atoi(raw)
		if err != nil || age < 0 {
			return biometrics.Profile{}, fmt.Errorf("age must be a non-negative integer")
		}
	}

	return biometrics.Profile{
		WeightKg: weight,
		HeightM:  height,
		Age:      age,
		Gender:   biometrics.ParseGender(r.FormValue("gender")),
		Activity: biometrics.ParseActivity(r.FormValue("activity_level")),
	}, nil
}

func formFloat(r *http.Request, key string) (float64, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number", key)
	}
	return v, nil
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeErrorDetail(w http.ResponseWriter, status int, code, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
			"detail":  detail,
		},
	})
}
