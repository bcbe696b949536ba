package devserver

import (
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

const (
	maxUploadBytes = 64 << 20
	ecgSamples     = 120
)

var audioTypes = map[string]string{
	".wav": "audio/wav",
	".m4a": "audio/m4a",
	".mp3": "audio/mpeg",
}

type recording struct {
	ID          string
	Title       string
	Duration    float64
	CreatedAt   time.Time
	ContentType string
	Audio       []byte
	Owner       string
}

type recordingJSON struct {
	ID        string  `json:"_id"`
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Duration  float64 `json:"duration"`
	CreatedAt string  `json:"createdAt"`
}

func (rec *recording) toJSON(r *http.Request) recordingJSON {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return recordingJSON{
		ID:        rec.ID,
		Title:     rec.Title,
		URL:       fmt.Sprintf("%s://%s/api/files/%s", scheme, r.Host, rec.ID),
		Duration:  rec.Duration,
		CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleListRecordings(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]recordingJSON, 0, len(s.recordings))
	for i := len(s.recordings) - 1; i >= 0; i-- {
		out = append(out, s.recordings[i].toJSON(r))
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeMessage(w, http.StatusBadRequest, "Expected multipart form data")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()
	audio, err := io.ReadAll(file)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Could not read uploaded file")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = header.Filename
	}
	if title == "" {
		writeMessage(w, http.StatusBadRequest, "Title is required")
		return
	}
	duration := 0.0
	if raw := strings.TrimSpace(r.FormValue("duration")); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			writeMessage(w, http.StatusBadRequest, "Duration must be a non-negative number")
			return
		}
		duration = d
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeFor(title)
	}
	owner := ""
	if c, ok := claimsFrom(r.Context()); ok {
		owner = c.Subject
	}

	rec := s.addRecording(title, duration, contentType, audio, owner)
	s.logger.Info("recording uploaded", "id", rec.ID, "bytes", len(audio), "duration", duration, "owner", owner)
	writeJSON(w, http.StatusCreated, rec.toJSON(r))
}

// addRecording stores rec under its title, suffixing the id on collision.
func (s *Server) addRecording(title string, duration float64, contentType string, audio []byte, owner string) *recording {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := title
	for n := 2; ; n++ {
		if _, taken := s.byID[id]; !taken {
			break
		}
		id = fmt.Sprintf("%s-%d", title, n)
	}
	rec := &recording{
		ID:          id,
		Title:       title,
		Duration:    duration,
		CreatedAt:   s.clock.Now(),
		ContentType: contentType,
		Audio:       audio,
		Owner:       owner,
	}
	s.recordings = append(s.recordings, rec)
	s.byID[id] = rec
	return rec
}

// handleBulkUpload imports audio files from the inbox that were not
// imported before.
func (s *Server) handleBulkUpload(w http.ResponseWriter, r *http.Request) {
	if s.cfg.InboxDir == "" {
		writeJSON(w, http.StatusOK, map[string]int{"count": 0})
		return
	}
	entries, err := os.ReadDir(s.cfg.InboxDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeJSON(w, http.StatusOK, map[string]int{"count": 0})
			return
		}
		s.logger.Error("read inbox", "dir", s.cfg.InboxDir, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Bulk upload failed")
		return
	}
	owner := ""
	if c, ok := claimsFrom(r.Context()); ok {
		owner = c.Subject
	}
	count := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || audioTypes[strings.ToLower(filepath.Ext(name))] == "" {
			continue
		}
		if !s.claimInboxFile(name) {
			continue
		}
		audio, err := os.ReadFile(filepath.Join(s.cfg.InboxDir, name))
		if err != nil {
			s.logger.Warn("skip inbox file", "file", name, "error", err)
			s.mu.Lock()
			delete(s.imported, name)
			s.mu.Unlock()
			continue
		}
		s.addRecording(name, 0, contentTypeFor(name), audio, owner)
		count++
	}
	s.logger.Info("bulk upload", "count", count)
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// claimInboxFile marks name as imported and reports whether this call won it.
func (s *Server) claimInboxFile(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.imported[name] {
		return false
	}
	s.imported[name] = true
	return true
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		writeMessage(w, http.StatusNotFound, "Recording not found")
		return
	}
	delete(s.byID, id)
	s.recordings = slices.DeleteFunc(s.recordings, func(rec *recording) bool { return rec.ID == id })
	s.logger.Info("recording deleted", "id", id)
	writeMessage(w, http.StatusOK, "Recording deleted")
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	rec, ok := s.byID[mux.Vars(r)["id"]]
	s.mu.RUnlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "Recording not found")
		return
	}
	w.Header().Set("Content-Type", rec.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(rec.Audio)))
	_, _ = w.Write(rec.Audio)
}

type analysisJSON struct {
	BPM    float64   `json:"bpm"`
	ECG    []float64 `json:"ecg"`
	Status string    `json:"status"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.RLock()
	_, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "Recording not found")
		return
	}
	writeJSON(w, http.StatusOK, analyze(id))
}

// analyze derives a stable synthetic result from the recording id.
func analyze(id string) analysisJSON {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed>>7))

	bpm := float64(58 + rng.IntN(45))
	status := "Normal"
	switch seed % 10 {
	case 0:
		status = "Murmur detected"
	case 1:
		status = "Irregular rhythm"
	}

	// One synthetic beat spans samplesPerBeat points at 50 Hz.
	samplesPerBeat := int(math.Round(50 * 60 / bpm))
	ecg := make([]float64, ecgSamples)
	for i := range ecg {
		phase := float64(i%samplesPerBeat) / float64(samplesPerBeat)
		v := 0.05 * math.Sin(2*math.Pi*float64(i)/float64(ecgSamples))
		switch {
		case phase < 0.08:
			v += 0.15 * math.Sin(math.Pi*phase/0.08)
		case phase >= 0.16 && phase < 0.19:
			v -= 0.1
		case phase >= 0.19 && phase < 0.23:
			v += 1.0
		case phase >= 0.23 && phase < 0.26:
			v -= 0.25
		case phase >= 0.4 && phase < 0.55:
			v += 0.3 * math.Sin(math.Pi*(phase-0.4)/0.15)
		}
		v += (rng.Float64() - 0.5) * 0.02
		ecg[i] = math.Round(v*1000) / 1000
	}
	return analysisJSON{BPM: bpm, ECG: ecg, Status: status}
}

func contentTypeFor(name string) string {
	if ct, ok := audioTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}
