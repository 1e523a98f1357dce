package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"gregoryjjb/cups/pubsub"
	"gregoryjjb/cups/recent"
)

var rlog zerolog.Logger

var ErrRunnerStopped = errors.New("runner stopped")

const historySize = 32

type RunnerCommand string

const (
	CommandPlay    RunnerCommand = "play"
	CommandPlayAll RunnerCommand = "playall"
	CommandStop    RunnerCommand = "stop"
	CommandRun     RunnerCommand = "run"
)

type RunnerState string

const (
	StateIdle    RunnerState = "idle"
	StateRunning RunnerState = "running"
	StateDead    RunnerState = "dead"
)

const (
	EventState    = "state"
	EventProgress = "progress"
	EventReport   = "report"
	EventError    = "error"
)

// RunnerEvent is published for every state change, progress batch and
// finished game.
type RunnerEvent struct {
	Type   string      `json:"type"`
	State  RunnerState `json:"state"`
	Game   string      `json:"game,omitempty"`
	Rounds uint64      `json:"rounds,omitempty"`
	Total  uint64      `json:"total,omitempty"`
	Report *Report     `json:"report,omitempty"`
	Error  string      `json:"error,omitempty"`
}

type runResult struct {
	report Report
	err    error
}

type runnerMessage struct {
	Command RunnerCommand
	Game    Game
	Labels  []int
	reply   chan runResult
	// ctx belongs to the submitter; the game is abandoned when it ends.
	ctx context.Context
}

// Runner plays games one at a time on its own goroutine. Each game gets a
// fresh ring that never leaves that goroutine.
type Runner struct {
	commands chan runnerMessage
	done     chan struct{}
	ps       *pubsub.Pubsub[RunnerEvent]
	history  *recent.History[Report]

	config  *Config
	storage *Storage
	cache   *ResultCache
	queue   CircularList[Game]
	queued  bool

	mu       sync.RWMutex
	state    RunnerState
	game     string
	cancel   context.CancelFunc
	stopping bool
}

// NewRunner starts the worker goroutine; it runs until ctx is cancelled.
// cache may be nil.
func NewRunner(ctx context.Context, config *Config, storage *Storage, cache *ResultCache) *Runner {
	r := &Runner{
		commands: make(chan runnerMessage, 8),
		done:     make(chan struct{}),
		ps:       pubsub.New[RunnerEvent](),
		history:  recent.New[Report](historySize),
		config:   config,
		storage:  storage,
		cache:    cache,
		state:    StateIdle,
	}
	go r.run(ctx)
	return r
}

// Play queues a configured game by name.
func (r *Runner) Play(name string) error {
	game, err := r.config.Game(name)
	if err != nil {
		return err
	}
	return r.send(runnerMessage{Command: CommandPlay, Game: game})
}

// PlayAll plays every configured game once, in order.
func (r *Runner) PlayAll() error {
	return r.send(runnerMessage{Command: CommandPlayAll})
}

// Stop aborts the running game and forgets anything queued.
func (r *Runner) Stop() error {
	r.mu.Lock()
	cancel := r.cancel
	// Keeps the worker from starting another queued game before the stop
	// message reaches it.
	r.stopping = true
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return r.send(runnerMessage{Command: CommandStop})
}

// Submit plays an ad-hoc game and waits for its report.
func (r *Runner) Submit(ctx context.Context, game Game, labels []int) (Report, error) {
	if err := game.Validate(); err != nil {
		return Report{}, err
	}

	reply := make(chan runResult, 1)
	msg := runnerMessage{Command: CommandRun, Game: game, Labels: labels, reply: reply, ctx: ctx}
	if err := r.sendContext(ctx, msg); err != nil {
		return Report{}, err
	}

	select {
	case res := <-reply:
		if res.err != nil && ctx.Err() != nil {
			return Report{}, ctx.Err()
		}
		return res.report, res.err
	case <-ctx.Done():
		return Report{}, ctx.Err()
	case <-r.done:
		return Report{}, ErrRunnerStopped
	}
}

func (r *Runner) send(msg runnerMessage) error {
	return r.sendContext(context.Background(), msg)
}

func (r *Runner) sendContext(ctx context.Context, msg runnerMessage) error {
	select {
	case r.commands <- msg:
		return nil
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe returns a channel of runner events and a function to stop them.
func (r *Runner) Subscribe() (func(), <-chan RunnerEvent) {
	id, ch := r.ps.Subscribe(64)
	return func() {
		r.ps.Unsubscribe(id)
	}, ch
}

func (r *Runner) State() RunnerState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// CurrentGame names the game being played, or "" when idle.
func (r *Runner) CurrentGame() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.game
}

// History returns recently finished reports, oldest first.
func (r *Runner) History() []Report {
	return r.history.Snapshot()
}

// Done is closed once the worker has exited.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

//////////////////////////////////
// Worker

func (r *Runner) run(ctx context.Context) {
	defer func() {
		r.setState(StateDead, "")
		r.ps.Close()
		close(r.done)
	}()

	for {
		if r.queued {
			select {
			case <-ctx.Done():
				return
			case msg := <-r.commands:
				r.handle(ctx, msg)
			default:
				r.playQueued(ctx)
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case msg := <-r.commands:
			r.handle(ctx, msg)
		}
	}
}

func (r *Runner) handle(ctx context.Context, msg runnerMessage) {
	switch msg.Command {
	case CommandPlay:
		r.clearQueue()
		r.queue.Replace([]Game{msg.Game})
		r.queued = true

	case CommandPlayAll:
		r.clearQueue()
		games := r.config.Games()
		if len(games) == 0 {
			r.publishError("", errors.New("cannot play all: no games configured"))
			return
		}
		r.queue.Replace(append([]Game(nil), games...))
		r.queued = true

	case CommandStop:
		r.clearQueue()
		r.mu.Lock()
		r.stopping = false
		r.mu.Unlock()

	case CommandRun:
		if err := msg.ctx.Err(); err != nil {
			msg.reply <- runResult{err: err}
			return
		}
		report, err := r.play(ctx, msg.ctx, msg.Game, msg.Labels)
		msg.reply <- runResult{report: report, err: err}
	}
}

func (r *Runner) clearQueue() {
	r.queue.Clear()
	r.queued = false
}

func (r *Runner) playQueued(ctx context.Context) {
	r.mu.RLock()
	stopping := r.stopping
	r.mu.RUnlock()

	game, ok := r.queue.Current()
	if !ok || stopping {
		r.clearQueue()
		return
	}

	if next, ok := r.queue.PeekNext(); ok && r.queue.Len() > 1 {
		rlog.Debug().Str("game", game.Name).Str("next_up", next.Name).Msg("Playing queued game")
	}

	// Errors are already logged and published.
	_, _ = r.play(ctx, nil, game, r.config.Labels())

	if r.queue.Advance() {
		r.clearQueue()
	}
}

// play runs one game under ctx. A non-nil callerCtx also cancels it.
func (r *Runner) play(ctx, callerCtx context.Context, game Game, labels []int) (Report, error) {
	gameCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if callerCtx != nil {
		stop := context.AfterFunc(callerCtx, cancel)
		defer stop()
	}

	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
	}()

	r.setState(StateRunning, game.Name)
	defer r.setState(StateIdle, "")

	rlog.Info().
		Str("game", game.Name).
		Str("mode", game.Mode()).
		Uint64("rounds", game.TotalRounds()).
		Msg("Playing game")

	report, err := r.cache.Play(gameCtx, game, labels, r.config.ProgressEvery(), func(rounds, total uint64) {
		r.ps.Publish(RunnerEvent{
			Type:   EventProgress,
			State:  StateRunning,
			Game:   game.Name,
			Rounds: rounds,
			Total:  total,
		})
	})
	if err != nil {
		rlog.Err(err).Str("game", game.Name).Msg("Game failed")
		r.publishError(game.Name, err)
		return Report{}, fmt.Errorf("game %q: %w", game.Name, err)
	}

	if err := r.storage.SaveReport(report); err != nil {
		rlog.Warn().Err(err).Str("game", game.Name).Msg("Could not save report")
	}
	r.history.Push(report)

	for _, c := range report.Checkpoints {
		rlog.Info().
			Str("game", game.Name).
			Uint64("rounds", c.Rounds).
			Str("answer", c.Answer()).
			Bool("cached", c.Cached).
			Msg("Checkpoint")
	}

	r.ps.Publish(RunnerEvent{
		Type:   EventReport,
		State:  StateRunning,
		Game:   game.Name,
		Report: &report,
	})

	return report, nil
}

func (r *Runner) setState(state RunnerState, game string) {
	r.mu.Lock()
	r.state = state
	r.game = game
	r.mu.Unlock()

	r.ps.Publish(RunnerEvent{
		Type:  EventState,
		State: state,
		Game:  game,
	})
}

func (r *Runner) publishError(game string, err error) {
	r.ps.Publish(RunnerEvent{
		Type:  EventError,
		State: r.State(),
		Game:  game,
		Error: err.Error(),
	})
}
