// Package server exposes word-cloud rendering over HTTP.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/AnechkaShv/freqcloud/internal/cloud"
	"github.com/AnechkaShv/freqcloud/internal/frequency"
	"github.com/AnechkaShv/freqcloud/internal/storage"
)

const maxUploadSize = 10 << 20

// imageOpener is implemented by stores that can serve images back.
type imageOpener interface {
	Open(id string) (*os.File, error)
}

type WordCloudHandler struct {
	renderer *cloud.Renderer
	store    storage.Store
	fontPath string
	log      logrus.FieldLogger
}

func NewWordCloudHandler(renderer *cloud.Renderer, store storage.Store, fontPath string, log logrus.FieldLogger) *WordCloudHandler {
	return &WordCloudHandler{
		renderer: renderer,
		store:    store,
		fontPath: fontPath,
		log:      log,
	}
}

// NewRouter registers the word-cloud routes and a health check.
func NewRouter(h *WordCloudHandler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/wordcloud", h.GenerateWordCloud).Methods("POST")
	r.HandleFunc("/api/wordcloud/{id}", h.GetWordCloud).Methods("GET")
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return r
}

// GenerateWordCloud renders the uploaded csv and stores the PNG.
// Form fields: file (csv), label_column and freq_column (default word, freq).
func (h *WordCloudHandler) GenerateWordCloud(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Failed to read file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	labelColumn := formValue(r, "label_column", "word")
	freqColumn := formValue(r, "freq_column", "freq")

	table, err := frequency.Read(file, labelColumn, freqColumn)
	if err != nil {
		h.log.WithError(err).Warn("Rejected frequency csv")
		http.Error(w, "Invalid frequency csv: "+err.Error(), http.StatusBadRequest)
		return
	}

	mapping := frequency.BuildMapping(table)
	img, err := h.renderer.Draw(mapping, h.fontPath)
	if err != nil {
		status := http.StatusInternalServerError
		if cloud.StageOf(err) == cloud.StageLayout {
			status = http.StatusBadRequest
		}
		h.log.WithError(err).Error("Failed to generate word cloud")
		http.Error(w, "Failed to generate word cloud", status)
		return
	}

	imageBytes, err := h.renderer.Encode(img)
	if err != nil {
		h.log.WithError(err).Error("Failed to encode word cloud")
		http.Error(w, "Failed to generate word cloud", http.StatusInternalServerError)
		return
	}

	location, err := h.store.Save(r.Context(), imageBytes)
	if err != nil {
		h.log.WithError(err).Error("Failed to save word cloud")
		http.Error(w, "Failed to save word cloud", http.StatusInternalServerError)
		return
	}

	h.log.WithFields(logrus.Fields{
		"location": location,
		"labels":   len(mapping),
	}).Info("Word cloud generated")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"location": location,
	})
}

// GetWordCloud serves a stored PNG by id.
func (h *WordCloudHandler) GetWordCloud(w http.ResponseWriter, r *http.Request) {
	opener, ok := h.store.(imageOpener)
	if !ok {
		http.Error(w, "Word cloud not found", http.StatusNotFound)
		return
	}

	file, err := opener.Open(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Word cloud not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "image/png")
	io.Copy(w, file)
}

func formValue(r *http.Request, key, defaultValue string) string {
	if value := r.FormValue(key); value != "" {
		return value
	}
	return defaultValue
}
