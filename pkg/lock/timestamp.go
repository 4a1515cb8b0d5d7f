package lock

import (
	"github.com/pixperk/markerlock/pkg/metrics"
	"github.com/pixperk/markerlock/pkg/storage"
	"github.com/pixperk/markerlock/pkg/types"
	"go.uber.org/zap"
)

func (h *Handle) acquireTimestamp() types.Outcome {
	me := h.identity.Current()

	if !h.store.Exists(h.name) {
		switch h.store.Create(h.name, types.NewRecord(me, h.clock.Now())) {
		case storage.CreateOK:
			h.logger.Debug("lock acquired", zap.Stringer("outcome", types.OutcomeFree))
			return types.OutcomeFree
		case storage.CreateFailed:
			h.logger.Debug("could not create marker", zap.Stringer("outcome", types.OutcomeStorageFailure))
			return types.OutcomeStorageFailure
		}
		//lost the race to another creator, judge its record below
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
		return h.writeRecord(me, types.OutcomeFree)
	}

	if rec.OwnedBy(me) {
		return h.writeRecord(me, types.OutcomeSelfOwned)
	}

	now := h.clock.Now()
	fields := append(ownerFields(rec),
		zap.Duration("age", h.elapsed.Elapsed(now, rec.AcquiredTime())),
		zap.Duration("timeout", h.timeout))

	if h.elapsed.Expired(now, rec.AcquiredTime(), h.timeout) {
		h.logger.Debug("reclaiming stale lock", fields...)
		return h.writeRecord(me, types.OutcomeStale)
	}

	h.logger.Debug("lock held by another process",
		append(fields, zap.Stringer("outcome", types.OutcomeContended))...)
	return types.OutcomeContended
}

// writes a fresh record for me, reporting outcome on success
func (h *Handle) writeRecord(me types.Identity, outcome types.Outcome) types.Outcome {
	if !h.store.Write(h.name, types.NewRecord(me, h.clock.Now())) {
		h.logger.Debug("could not write marker", zap.Stringer("outcome", types.OutcomeStorageFailure))
		return types.OutcomeStorageFailure
	}

	h.logger.Debug("lock acquired", zap.Stringer("outcome", outcome))
	return outcome
}

// deletes the marker only after re-asserting ownership
// a lock taken over by someone else is left alone
func (h *Handle) releaseTimestamp() {
	if !h.store.Exists(h.name) {
		h.logger.Debug("no marker to release")
		h.setHeld(false)
		return
	}

	//ownership is re-asserted without touching the acquisition metrics
	if outcome := h.acquireTimestamp(); !outcome.Acquired() {
		h.logger.Debug("release skipped, lock is owned elsewhere")
		return
	}

	h.store.Delete(h.name)
	h.setHeld(false)
	metrics.ReleaseTotal.WithLabelValues(h.strategy.String()).Inc()
	h.logger.Debug("lock released")
}
