package syncworker

import (
	"context"

	"github.com/wb-go/wbf/zlog"

	"sparxfest/internal/dto"
	"sparxfest/internal/mailer"
	"sparxfest/internal/queue"
	"sparxfest/internal/rabbit"
	"sparxfest/internal/repo"
)

// retryDelaySeconds spaces out re-triggers after a drain that left entries
// behind, so a store that is still down is not hammered.
const retryDelaySeconds = 60

// Worker drains the local offline queue whenever a registration-sync trigger
// arrives: replays entries one at a time, removing each only after the store
// accepted it. Failures leave the rest of the queue for the next trigger.
type Worker struct {
	RMQ    *rabbit.Client
	repo   repo.Repository
	store  *queue.Store
	mail   *mailer.Mailer
	done   chan struct{}
	cancel context.CancelFunc
}

func NewWorker(rmq *rabbit.Client, repository repo.Repository, store *queue.Store, mail *mailer.Mailer) *Worker {
	return &Worker{
		RMQ:   rmq,
		repo:  repository,
		store: store,
		mail:  mail,
		done:  make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	zlog.Logger.Info().Msg("registration sync worker started")

	go func() {
		defer close(w.done)

		handler := func(msg dto.SyncTriggerMessage) error {
			if msg.Tag != dto.SyncTag {
				zlog.Logger.Warn().Str("tag", msg.Tag).Msg("ignoring trigger with unknown tag")
				return nil
			}

			w.drain(cctx)
			return nil
		}

		if err := w.RMQ.Consume(handler); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to start consuming sync triggers")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("registration sync worker stopped by context")
	}()
}

// drain replays queued registrations in arrival order. The first failure
// stops the pass; a delayed re-trigger is published so the remainder gets
// another chance without waiting for the next parked submission.
func (w *Worker) drain(ctx context.Context) {
	entries, err := w.store.List(ctx)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to list offline queue")
		return
	}
	if len(entries) == 0 {
		return
	}

	zlog.Logger.Info().Int("pending", len(entries)).Msg("draining offline queue")

	for i, entry := range entries {
		reg := entry.Registration
		id, err := w.repo.CreateRegistration(ctx, &reg)
		if err != nil {
			zlog.Logger.Warn().
				Err(err).
				Str("queue_id", entry.ID).
				Int("remaining", len(entries)-i).
				Msg("replay failed, leaving entry for next trigger")
			w.scheduleRetry()
			return
		}

		if err := w.store.Remove(ctx, entry.ID); err != nil {
			zlog.Logger.Error().Err(err).Str("queue_id", entry.ID).Msg("failed to remove replayed entry")
			return
		}

		zlog.Logger.Info().
			Str("queue_id", entry.ID).
			Int64("registration_id", id).
			Msg("queued registration replayed")

		if w.mail != nil {
			if err := w.mail.SendStatusEmail(reg.Email, reg.Events, reg.Status); err != nil {
				zlog.Logger.Warn().Err(err).Msg("failed to send replay notification")
			}
		}
	}
}

func (w *Worker) scheduleRetry() {
	if w.RMQ == nil {
		return
	}
	msg := dto.SyncTriggerMessage{Tag: dto.SyncTag}
	if err := w.RMQ.PublishTrigger(msg, retryDelaySeconds); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to publish retry trigger")
	}
}

func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
}
