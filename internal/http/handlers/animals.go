package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pawws/internal/domain"
)

type animalCreateRequest struct {
	Name         string `json:"name"`
	Bio          string `json:"bio"`
	JourneyStory string `json:"journey_story"`
	Status       string `json:"status"`
}

type animalDTO struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Bio           string         `json:"bio"`
	JourneyStory  string         `json:"journey_story"`
	PhotoKey      *string        `json:"photo_key"`
	Status        string         `json:"status"`
	AdmissionDate time.Time      `json:"admission_date"`
	Milestones    []milestoneDTO `json:"milestones,omitempty"`
}

func animalToDTO(a domain.Animal) animalDTO {
	dto := animalDTO{
		ID:            a.ID,
		Name:          a.Name,
		Bio:           a.Bio,
		JourneyStory:  a.JourneyStory,
		PhotoKey:      a.PhotoKey,
		Status:        string(a.Status),
		AdmissionDate: a.AdmissionDate,
	}
	for _, m := range a.Milestones {
		dto.Milestones = append(dto.Milestones, milestoneToDTO(m))
	}
	return dto
}

func (a *App) AnimalsCreate(w http.ResponseWriter, r *http.Request) {
	var req animalCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Name == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}
	status := domain.AnimalStatus(req.Status)
	if req.Status == "" {
		status = domain.AnimalStatusRecovering
	}
	if !domain.ValidAnimalStatus(status) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid status value")
		return
	}

	animal := &domain.Animal{
		Name:         req.Name,
		Bio:          req.Bio,
		JourneyStory: req.JourneyStory,
		Status:       status,
	}
	if err := a.Animals.Create(r.Context(), animal); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, animalToDTO(*animal))
}

func (a *App) AnimalsList(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 50)
	animals, err := a.Animals.List(r.Context(), limit, offset)
	if err != nil {
		a.domainError(w, err)
		return
	}
	items := make([]animalDTO, 0, len(animals))
	for _, animal := range animals {
		items = append(items, animalToDTO(animal))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) AnimalsGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid animal id")
		return
	}
	animal, err := a.Animals.GetByID(r.Context(), id)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, animalToDTO(*animal))
}

type animalStatusRequest struct {
	Status string `json:"status"`
}

// AnimalsSetStatus is the only way an animal's status moves; milestone
// completion never promotes it automatically.
func (a *App) AnimalsSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid animal id")
		return
	}
	var req animalStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	status := domain.AnimalStatus(req.Status)
	if !domain.ValidAnimalStatus(status) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid status value")
		return
	}
	if err := a.Animals.UpdateStatus(r.Context(), id, status); err != nil {
		a.domainError(w, err)
		return
	}
	animal, err := a.Animals.GetByID(r.Context(), id)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, animalToDTO(*animal))
}

func (a *App) AnimalsUploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid animal id")
		return
	}
	data, _, err := readUpload(r, "photo")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "photo file required")
		return
	}
	key, err := a.Store.Write(r.Context(), "animals/"+uuid.NewString(), data)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if err := a.Animals.UpdatePhoto(r.Context(), id, key); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"photo_key": key})
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func pagination(r *http.Request, defaultLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

const maxUploadBytes = 10 << 20

func readUpload(r *http.Request, field string) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", err
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, "", err
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}
