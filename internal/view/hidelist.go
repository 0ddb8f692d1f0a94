package view

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// HideList tracks the task ids the current viewer has hidden from the
// table. It is a view preference, not classroom ground truth, so it lives
// outside the entity store and persists through an external key-value
// collaborator under a classroom-scoped key. Persistence failures are
// non-fatal: the in-memory set stays authoritative for the session.
type HideList struct {
	mu     sync.RWMutex
	ids    map[int]struct{}
	cache  *redis.Client
	key    string
	logger zerolog.Logger
}

// NewHideList builds an empty hide list persisted under the classroom code.
func NewHideList(cache *redis.Client, classroomCode string, logger zerolog.Logger) *HideList {
	return &HideList{
		ids:    make(map[int]struct{}),
		cache:  cache,
		key:    fmt.Sprintf("hidden_tasks:%s", classroomCode),
		logger: logger.With().Str("component", "hide_list").Logger(),
	}
}

// Load restores the persisted hide list. A missing key leaves the list
// empty; a malformed payload is discarded with a diagnostic.
func (h *HideList) Load(ctx context.Context) error {
	if h.cache == nil {
		return nil
	}

	raw, err := h.cache.Get(ctx, h.key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load hide list: %w", err)
	}

	var ids []int
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		h.logger.Warn().Err(err).Msg("discarding malformed hide list payload")
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.ids = make(map[int]struct{}, len(ids))
	for _, id := range ids {
		h.ids[id] = struct{}{}
	}
	return nil
}

// Contains reports whether the task is hidden.
func (h *HideList) Contains(taskID int) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.ids[taskID]
	return ok
}

// IDs returns the hidden task ids in ascending order.
func (h *HideList) IDs() []int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]int, 0, len(h.ids))
	for id := range h.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Hide adds a task to the hide list and persists the new set.
func (h *HideList) Hide(ctx context.Context, taskID int) {
	h.mu.Lock()
	h.ids[taskID] = struct{}{}
	h.mu.Unlock()
	h.persist(ctx)
}

// Show removes a task from the hide list and persists the new set.
func (h *HideList) Show(ctx context.Context, taskID int) {
	h.mu.Lock()
	delete(h.ids, taskID)
	h.mu.Unlock()
	h.persist(ctx)
}

// Clear unhides every task.
func (h *HideList) Clear(ctx context.Context) {
	h.mu.Lock()
	h.ids = make(map[int]struct{})
	h.mu.Unlock()
	h.persist(ctx)
}

// HideAll hides every given task id, replacing the current set.
func (h *HideList) HideAll(ctx context.Context, taskIDs []int) {
	h.mu.Lock()
	h.ids = make(map[int]struct{}, len(taskIDs))
	for _, id := range taskIDs {
		h.ids[id] = struct{}{}
	}
	h.mu.Unlock()
	h.persist(ctx)
}

// persist serialises the set as a JSON array of integers. The key carries
// no TTL; the preference outlives sessions.
func (h *HideList) persist(ctx context.Context) {
	if h.cache == nil {
		return
	}

	payload, err := json.Marshal(h.IDs())
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to serialise hide list")
		return
	}
	if err := h.cache.Set(ctx, h.key, payload, 0).Err(); err != nil {
		h.logger.Warn().Err(err).Msg("failed to persist hide list")
	}
}
