package lock

import (
	"github.com/pixperk/markerlock/pkg/metrics"
	"github.com/pixperk/markerlock/pkg/storage"
	"github.com/pixperk/markerlock/pkg/types"
	"go.uber.org/zap"
)

func (h *Handle) acquireRetained() types.Outcome {
	if h.retained.Held() {
		h.logger.Debug("lock already held by this handle")
		return types.OutcomeSelfOwned
	}

	me := h.identity.Current()

	if !h.store.Exists(h.name) {
		if outcome, done := h.retain(me, false, types.OutcomeFree); done {
			return outcome
		}
		h.logger.Debug("marker created concurrently by another process")
	}

	rec, status := h.store.Read(h.name)
	switch status {
	case storage.ReadContended:
		h.logger.Debug("lock is being held open by another process",
			zap.Stringer("outcome", types.OutcomeContended))
		return types.OutcomeContended
	case storage.ReadNotFound:
		h.logger.Debug("marker vanished or is unreadable, acquiring")
		outcome, _ := h.retain(me, true, types.OutcomeFree)
		return outcome
	}

	//nobody holds the marker open, so whoever wrote it is gone
	h.logger.Debug("taking over unheld marker", ownerFields(rec)...)
	outcome, _ := h.retain(me, true, types.OutcomeStale)
	return outcome
}

// done is false only when replace is false and the marker already exists
func (h *Handle) retain(me types.Identity, replace bool, outcome types.Outcome) (types.Outcome, bool) {
	r, status := h.store.Retain(h.name, types.NewRecord(me, h.clock.Now()), replace)
	switch status {
	case storage.CreateOK:
		h.retained = r
		h.logger.Debug("lock acquired", zap.Stringer("outcome", outcome))
		return outcome, true
	case storage.CreateExists:
		return 0, false
	default:
		h.logger.Debug("could not create marker", zap.Stringer("outcome", types.OutcomeStorageFailure))
		return types.OutcomeStorageFailure, true
	}
}

func (h *Handle) releaseRetained() {
	if !h.retained.Held() {
		h.logger.Debug("no retained marker to release")
		return
	}

	//unlink while the exclusive lock is still held, a contender in between
	//sees the marker as contended or gone, never as unheld
	h.store.Delete(h.name)
	if err := h.retained.Close(); err != nil {
		h.logger.Debug("closing retained marker failed", zap.Error(err))
	}
	h.retained = nil

	h.setHeld(false)
	metrics.ReleaseTotal.WithLabelValues(h.strategy.String()).Inc()
	h.logger.Debug("lock released")
}
