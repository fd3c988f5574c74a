package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/repository"
	"github.com/vancomm/sweeper/internal/round"
	"github.com/vancomm/sweeper/internal/savefile"
	"github.com/vancomm/sweeper/internal/store"
)

var (
	ErrBadSlot      = errors.New("slot names are 1 to 64 letters, digits, '-' or '_'")
	ErrSlotNotFound = errors.New("save slot not found")
	ErrSlotTaken    = errors.New("save slot already used")
	ErrNoResults    = errors.New("results need a database")
)

// SaveSlots holds encoded rounds by name. Both the sqlite store and the
// Postgres repository implement it.
type SaveSlots interface {
	Get(ctx context.Context, slot string) ([]byte, error)
	Put(ctx context.Context, slot string, data []byte) error
	Create(ctx context.Context, slot string, data []byte) error
}

type Results interface {
	RecordResult(ctx context.Context, p repository.RecordResultParams) (*repository.RoundResult, error)
	BestTimes(ctx context.Context, filter repository.ResultFilter) ([]repository.RoundResult, error)
}

type RoundHandler struct {
	logger   *slog.Logger
	sessions *Sessions
	mode     round.Mode
	slots    SaveSlots
	results  Results
	ws       *config.WebSocket
}

// NewRoundHandler wires the round endpoints. results may be nil, in which
// case finished rounds are not recorded.
func NewRoundHandler(
	logger *slog.Logger,
	sessions *Sessions,
	mode round.Mode,
	slots SaveSlots,
	results Results,
	ws *config.WebSocket,
) *RoundHandler {
	return &RoundHandler{
		logger:   logger,
		sessions: sessions,
		mode:     mode,
		slots:    slots,
		results:  results,
		ws:       ws,
	}
}

func slotMissing(err error) bool {
	return errors.Is(err, store.ErrNotFound) || errors.Is(err, repository.ErrNotFound)
}

func slotTaken(err error) bool {
	return errors.Is(err, store.ErrSlotTaken) || errors.Is(err, repository.ErrSlotTaken)
}

func (h RoundHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		sendErrorOrLog(w, h.logger, http.StatusBadRequest, ErrSessionNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h RoundHandler) slotName(w http.ResponseWriter, r *http.Request) (string, bool) {
	slot := r.PathValue("slot")
	if !ValidSlot(slot) {
		sendErrorOrLog(w, h.logger, http.StatusBadRequest, ErrBadSlot)
		return "", false
	}
	return slot, true
}

// withSession runs f under the session lock. A missing session answers 404.
// An error returned by f has already been answered.
func (h RoundHandler) withSession(
	w http.ResponseWriter, r *http.Request, f func(sess *session) error,
) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	err := h.sessions.With(id, f)
	if errors.Is(err, ErrSessionNotFound) {
		sendErrorOrLog(w, h.logger, http.StatusNotFound, err)
	}
}

// settle records a round that has just ended, once.
func (h RoundHandler) settle(ctx context.Context, sess *session) {
	status := sess.c.Status()
	if status == round.InProgress {
		sess.recorded = false
		return
	}
	if sess.recorded {
		return
	}
	sess.recorded = true
	h.logger.Info(
		"round finished",
		slog.String("session", sess.id.String()),
		slog.String("status", status.String()),
		slog.Int("size", sess.c.Size()),
		slog.Float64("elapsed", sess.c.ElapsedTime()),
	)
	if h.results == nil {
		return
	}
	_, err := h.results.RecordResult(ctx, repository.RecordResultParams{
		Mode:      sess.c.Mode().Name,
		Size:      int32(sess.c.Size()),
		Won:       status == round.Won,
		ElapsedMs: int64(sess.c.ElapsedTime() * float64(time.Second/time.Millisecond)),
	})
	if err != nil {
		h.logger.Error("unable to record round result", slog.Any("error", err))
	}
}

// renew marks a freshly started or restored round. A restored round that is
// already over is never recorded.
func (sess *session) renew() {
	sess.recorded = sess.c.Status() != round.InProgress
}

func (h RoundHandler) NewRound(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseNewRoundDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}

	mode := h.mode
	if dto.Mode != "" {
		if mode, err = round.ParseMode(dto.Mode); err != nil {
			sendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
			return
		}
	}

	id, err := h.sessions.Create(mode, dto.Size)
	if errors.Is(err, round.ErrInvalidSize) {
		sendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		sendErrorOrLog(w, h.logger, http.StatusInternalServerError, err)
		h.logger.Error("unable to create round", slog.Any("error", err))
		return
	}
	h.logger.Debug("created session", slog.String("session", id.String()))

	err = h.sessions.With(id, func(sess *session) error {
		sendStatusOrLog(w, h.logger, http.StatusCreated, NewRoundDTO(sess.id, sess.c))
		return nil
	})
	if err != nil {
		sendErrorOrLog(w, h.logger, http.StatusNotFound, err)
	}
}

func (h RoundHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(sess *session) error {
		h.settle(r.Context(), sess)
		sendJSONOrLog(w, h.logger, NewRoundDTO(sess.id, sess.c))
		return nil
	})
}

func (h RoundHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if !h.sessions.Delete(id) {
		sendErrorOrLog(w, h.logger, http.StatusNotFound, ErrSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h RoundHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseMoveDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}
	move, err := ParseMove(dto.Move)
	if err != nil {
		sendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}

	h.withSession(w, r, func(sess *session) error {
		switch move {
		case Reveal:
			sess.c.RevealAt(dto.Row, dto.Col)
		case Flag:
			sess.c.ToggleFlagAt(dto.Row, dto.Col)
		case Chord:
			sess.c.ChordRevealAt(dto.Row, dto.Col)
		}
		h.settle(r.Context(), sess)
		sendJSONOrLog(w, h.logger, NewRoundDTO(sess.id, sess.c))
		return nil
	})
}

func (h RoundHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.restart(w, r, (*round.Controller).Advance)
}

func (h RoundHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.restart(w, r, (*round.Controller).ResetToInitialSize)
}

func (h RoundHandler) restart(
	w http.ResponseWriter, r *http.Request, f func(*round.Controller) error,
) {
	h.withSession(w, r, func(sess *session) error {
		h.settle(r.Context(), sess)
		if err := f(sess.c); err != nil {
			sendErrorOrLog(w, h.logger, http.StatusInternalServerError, err)
			h.logger.Error("unable to start round", slog.Any("error", err))
			return err
		}
		sess.renew()
		sendJSONOrLog(w, h.logger, NewRoundDTO(sess.id, sess.c))
		return nil
	})
}

// Save overwrites the slot. SaveNew refuses a slot that is already used.
func (h RoundHandler) Save(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, h.slots.Put)
}

func (h RoundHandler) SaveNew(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, h.slots.Create)
}

func (h RoundHandler) save(
	w http.ResponseWriter,
	r *http.Request,
	put func(ctx context.Context, slot string, data []byte) error,
) {
	slot, ok := h.slotName(w, r)
	if !ok {
		return
	}
	h.withSession(w, r, func(sess *session) error {
		data, err := savefile.Marshal(sess.c.Snapshot())
		if err != nil {
			sendErrorOrLog(w, h.logger, http.StatusInternalServerError, err)
			return err
		}
		err = put(r.Context(), slot, data)
		if slotTaken(err) {
			sendErrorOrLog(w, h.logger, http.StatusConflict, ErrSlotTaken)
			return err
		}
		if err != nil {
			sendErrorOrLog(w, h.logger, http.StatusInternalServerError, err)
			h.logger.Error("unable to save round", slog.String("slot", slot), slog.Any("error", err))
			return err
		}
		h.logger.Debug("saved round", slog.String("slot", slot), slog.Int("bytes", len(data)))
		sendJSONOrLog(w, h.logger, NewRoundDTO(sess.id, sess.c))
		return nil
	})
}

func (h RoundHandler) Load(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.slotName(w, r)
	if !ok {
		return
	}
	h.withSession(w, r, func(sess *session) error {
		data, err := h.slots.Get(r.Context(), slot)
		if slotMissing(err) {
			sendErrorOrLog(w, h.logger, http.StatusNotFound, ErrSlotNotFound)
			return err
		}
		if err != nil {
			sendErrorOrLog(w, h.logger, http.StatusInternalServerError, err)
			h.logger.Error("unable to read slot", slog.String("slot", slot), slog.Any("error", err))
			return err
		}
		snapshot, err := savefile.Unmarshal(data)
		if err != nil {
			sendErrorOrLog(w, h.logger, http.StatusUnprocessableEntity, err)
			h.logger.Warn("corrupt save", slog.String("slot", slot), slog.Any("error", err))
			return err
		}
		if err := sess.c.Restore(snapshot); err != nil {
			sendErrorOrLog(w, h.logger, http.StatusInternalServerError, err)
			return err
		}
		sess.renew()
		sendJSONOrLog(w, h.logger, NewRoundDTO(sess.id, sess.c))
		return nil
	})
}

func (h RoundHandler) BestTimes(w http.ResponseWriter, r *http.Request) {
	if h.results == nil {
		sendErrorOrLog(w, h.logger, http.StatusNotImplemented, ErrNoResults)
		return
	}
	dto, err := ParseResultsDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}
	results, err := h.results.BestTimes(r.Context(), repository.ResultFilter{
		Mode:  dto.Mode,
		Size:  dto.Size,
		Limit: dto.Limit,
	})
	if err != nil {
		sendErrorOrLog(w, h.logger, http.StatusInternalServerError, err)
		h.logger.Error("unable to fetch results", slog.Any("error", err))
		return
	}
	sendJSONOrLog(w, h.logger, results)
}
