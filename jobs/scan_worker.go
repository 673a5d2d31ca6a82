package jobs

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/leohmarruda/health-food-score/database"
	"github.com/leohmarruda/health-food-score/extraction"
	"github.com/leohmarruda/health-food-score/forms"
	"github.com/leohmarruda/health-food-score/logger"
	"github.com/leohmarruda/health-food-score/models"
)

// ScanJob asks the worker to run the AI extraction over a record's photos.
type ScanJob struct {
	FoodID string
	Mode   string
}

// ScanUpdate is sent to SSE subscribers when an extraction pass lands.
type ScanUpdate struct {
	FoodID string `json:"food_id"`
	Mode   string `json:"mode"`
	Fields int    `json:"fields"`
	Error  string `json:"error,omitempty"`
}

// ScanWorker processes extraction jobs in the background so uploads do not
// block on the AI service.
type ScanWorker struct {
	jobs        chan ScanJob
	extractor   *extraction.Client
	subscribers map[chan ScanUpdate]bool
	subMux      sync.RWMutex
}

var (
	worker     *ScanWorker
	workerOnce sync.Once
)

// GetWorker returns the singleton ScanWorker instance
func GetWorker() *ScanWorker {
	workerOnce.Do(func() {
		worker = &ScanWorker{
			jobs:        make(chan ScanJob, 100),
			extractor:   extraction.NewClient(),
			subscribers: make(map[chan ScanUpdate]bool),
		}
		go worker.run()
		logger.Info("Scan worker started")
	})
	return worker
}

// Enqueue adds an extraction job to the queue
func (w *ScanWorker) Enqueue(job ScanJob) {
	select {
	case w.jobs <- job:
		logger.Info("Scan job enqueued", "food_id", job.FoodID, "mode", job.Mode)
	default:
		logger.Warn("Scan job queue full, dropping job", "food_id", job.FoodID)
	}
}

// Subscribe registers a channel to receive scan updates
func (w *ScanWorker) Subscribe(ch chan ScanUpdate) {
	w.subMux.Lock()
	defer w.subMux.Unlock()
	w.subscribers[ch] = true
}

// Unsubscribe removes a channel from scan updates
func (w *ScanWorker) Unsubscribe(ch chan ScanUpdate) {
	w.subMux.Lock()
	defer w.subMux.Unlock()
	delete(w.subscribers, ch)
	close(ch)
}

func (w *ScanWorker) run() {
	for job := range w.jobs {
		w.processJob(job)
	}
}

func (w *ScanWorker) processJob(job ScanJob) {
	logger.Info("Processing scan job", "food_id", job.FoodID, "mode", job.Mode)

	var food models.Food
	if err := database.DB.First(&food, "id = ?", job.FoodID).Error; err != nil {
		logger.Error("Failed to fetch food for scan job", "food_id", job.FoodID, "error", err)
		return
	}

	urls := food.ImageURLs()
	if len(urls) == 0 {
		logger.Warn("Food has no images to scan", "food_id", job.FoodID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	fields, err := w.extractor.Process(ctx, urls, job.Mode)
	if err != nil {
		logger.Warn("Extraction failed", "food_id", job.FoodID, "error", err)
		w.broadcast(ScanUpdate{FoodID: job.FoodID, Mode: job.Mode, Error: err.Error()})
		return
	}

	raw, _ := json.Marshal(food)
	var draft forms.Payload
	if err := json.Unmarshal(raw, &draft); err != nil {
		logger.Error("Failed to build draft for merge", "food_id", job.FoodID, "error", err)
		return
	}

	// Background scans have no per-field lock set; raw-text fields still
	// only take non-empty new values.
	merged := forms.MergeExtraction(draft, fields, nil)

	updated := food
	mergedRaw, _ := json.Marshal(merged)
	if err := json.Unmarshal(mergedRaw, &updated); err != nil {
		logger.Error("Failed to apply extraction fields", "food_id", job.FoodID, "error", err)
		return
	}
	updated.ID = food.ID
	updated.CreatedAt = food.CreatedAt
	updated.LastUpdate = time.Now().UTC()

	if err := database.DB.Save(&updated).Error; err != nil {
		logger.Error("Failed to save scanned food", "food_id", job.FoodID, "error", err)
		return
	}

	logger.Info("Scan data merged", "food_id", job.FoodID, "fields", len(fields))
	w.broadcast(ScanUpdate{FoodID: job.FoodID, Mode: job.Mode, Fields: len(fields)})
}

func (w *ScanWorker) broadcast(update ScanUpdate) {
	w.subMux.RLock()
	for ch := range w.subscribers {
		select {
		case ch <- update:
		default:
			// Drop update if subscriber is slow
		}
	}
	w.subMux.RUnlock()
}
