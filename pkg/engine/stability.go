package engine

import (
	"time"

	"github.com/sim-autonomy/adsc/pkg/adsc"
)

// armStabilityCheck implements the arming rule from spec.md §4.4: represent
// the payload by compound identity (target, needValidation). If an armed
// timer with the same identity exists, do nothing (preserve the earliest
// deadline). Otherwise cancel any armed timer and schedule a new one.
func (e *Engine) armStabilityCheck(target adsc.SlotId, needValidation bool) {
	if e.stabilityArmed && e.selectedTarget == target && e.stabilityNeedValidation == needValidation {
		return // idempotent re-arm: same identity, keep the earliest deadline
	}

	e.stopStabilityTimerLocked()

	e.mu.Lock()
	e.selectedTarget = target
	e.stabilityNeedValidation = needValidation
	e.stabilityArmed = true
	e.stabilityGeneration++
	gen := e.stabilityGeneration
	e.mu.Unlock()

	dwell := e.config.StabilityDwell
	e.logger.Info("stability check armed", "target", int(target), "need_validation", needValidation, "dwell", dwell)
	if e.observer != nil {
		e.observer.OnStabilityArmed(target, needValidation)
	}

	e.stabilityTimer = time.AfterFunc(dwell, func() {
		e.postStabilityFire(target, needValidation, gen)
	})
}

// postStabilityFire enqueues the timer-fire notice for the serial loop to
// process; it must never mutate engine state directly since it runs on the
// timer's own goroutine (spec.md §5).
func (e *Engine) postStabilityFire(target adsc.SlotId, needValidation bool, gen uint64) {
	select {
	case e.inbox <- internalEvent{isStabilityFire: true, fireTarget: target, fireNeedValid: needValidation, fireGeneration: gen}:
	default:
		e.logger.Warn("event inbox full, dropping stability fire", "target", int(target))
	}
}

// handleStabilityFire runs on the serial loop when a stability dwell has
// elapsed. gen guards against a fire from a timer that was since superseded
// by a cancel/re-arm.
func (e *Engine) handleStabilityFire(target adsc.SlotId, needValidation bool, gen uint64) {
	e.mu.Lock()
	if !e.stabilityArmed || gen != e.stabilityGeneration {
		e.mu.Unlock()
		return // superseded
	}
	e.stabilityArmed = false
	e.selectedTarget = adsc.InvalidSlot
	e.mu.Unlock()

	e.logger.Info("stability check fired", "target", int(target), "need_validation", needValidation)
	if e.observer != nil {
		e.observer.OnStabilityFired(target, needValidation)
	}
	e.switcher.RequireValidation(target, needValidation)
}

// cancelAnyPendingSwitch implements spec.md §4.4's cancellation totality
// law: clears selected_target, resets the retry counter, cancels the timer,
// and tells the Switcher to drop any validation in flight on ADSC's behalf.
func (e *Engine) cancelAnyPendingSwitch() {
	hadTarget := e.stopStabilityTimerLocked()

	e.mu.Lock()
	e.selectedTarget = adsc.InvalidSlot
	e.validationFailureCount = 0
	e.mu.Unlock()

	e.switcher.RequireCancelAnyPendingValidation()
	if hadTarget {
		e.logger.Debug("cancelled pending auto-switch validation")
		if e.observer != nil {
			e.observer.OnSwitchCancelled()
		}
	}
}

// stopStabilityTimer is the Run-goroutine-only shutdown path (no return value needed).
func (e *Engine) stopStabilityTimer() {
	e.stopStabilityTimerLocked()
}

// stopStabilityTimerLocked stops any armed timer and clears the armed flag,
// returning whether a timer had in fact been armed.
func (e *Engine) stopStabilityTimerLocked() bool {
	if e.stabilityTimer != nil {
		e.stabilityTimer.Stop()
		e.stabilityTimer = nil
	}

	e.mu.Lock()
	was := e.stabilityArmed
	e.stabilityArmed = false
	e.stabilityGeneration++ // invalidate any in-flight fire for the old timer
	e.mu.Unlock()

	return was
}

// scheduleRetry implements spec.md §4.4's validation-failure retry: if
// validation_failure_count < max_validation_retries, schedule
// Evaluate(RetryValidation) with exponential backoff and increment the
// counter; otherwise reset the counter and give up (spec.md §7, §8.5).
func (e *Engine) scheduleRetry() {
	e.mu.Lock()
	count := e.validationFailureCount
	e.mu.Unlock()

	if count >= e.config.MaxValidationRetries {
		e.mu.Lock()
		e.validationFailureCount = 0
		e.mu.Unlock()
		e.logger.Info("validation retries exhausted, giving up", "retries", count)
		if e.observer != nil {
			e.observer.OnValidationExhausted(count)
		}
		return
	}

	delay := backoff(e.config.StabilityDwell, count)
	e.logger.Info("scheduling validation retry", "attempt", count+1, "delay", delay)
	if e.observer != nil {
		e.observer.OnValidationRetryScheduled(count+1, delay)
	}

	time.AfterFunc(delay, func() {
		e.PostEvent(adsc.RetryValidation())
	})

	e.mu.Lock()
	e.validationFailureCount++
	e.mu.Unlock()
}

// OnValidationFailed is the feedback hook invoked by the Switcher after a
// failed validation attempt (spec.md §4.4, §6: evaluateRetryOnValidationFailed).
func (e *Engine) OnValidationFailed() {
	e.scheduleRetry()
}

// backoff computes stability_dwell_ms << count, saturating to MaxBackoff to
// avoid overflow for large retry counts (spec.md §9 design note).
func backoff(dwell time.Duration, count int) time.Duration {
	if dwell <= 0 {
		return 0
	}
	if count < 0 {
		count = 0
	}
	if count > 40 { // well past any sane max_validation_retries; avoids shift overflow
		return adsc.MaxBackoff
	}
	shifted := dwell << uint(count)
	if shifted <= 0 || shifted > adsc.MaxBackoff { // shifted<=0 catches int64 overflow wraparound
		return adsc.MaxBackoff
	}
	return shifted
}
