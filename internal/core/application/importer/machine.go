package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/watchonly/internal/core/domain"
	"github.com/tdex-network/watchonly/internal/core/ports"
)

const (
	eventsBufferSize  = 32
	updatesBufferSize = 64
)

var (
	// ErrMachineStopped is returned when dispatching events to a stopped
	// machine.
	ErrMachineStopped = errors.New("import machine is stopped")
	// ErrMachineAlreadyStarted ...
	ErrMachineAlreadyStarted = errors.New("import machine is already started")
	// ErrEventQueueFull is returned when dispatching too many events to a
	// machine not started yet.
	ErrEventQueueFull = errors.New("import machine event queue is full")
	// ErrNullExportSource ...
	ErrNullExportSource = errors.New("export source must not be null")
	// ErrNullWalletOpener ...
	ErrNullWalletOpener = errors.New("wallet opener must not be null")
)

// Machine drives the import flow. Events are applied one at a time, in
// arrival order, by a single goroutine that owns the state. Loading exports
// and syncing run on worker goroutines that report back with events.
type Machine struct {
	source ports.ExportSource
	opener WalletOpener

	events  chan Event
	updates chan Update

	lock    *sync.RWMutex
	state   State
	started bool
	stopped bool

	ctx     context.Context
	cancel  context.CancelFunc
	loopWg  *sync.WaitGroup
	tasksWg *sync.WaitGroup
}

// NewMachine returns a machine in the AwaitingExport state.
func NewMachine(source ports.ExportSource, opener WalletOpener) (*Machine, error) {
	if source == nil {
		return nil, ErrNullExportSource
	}
	if opener == nil {
		return nil, ErrNullWalletOpener
	}

	return &Machine{
		source:  source,
		opener:  opener,
		events:  make(chan Event, eventsBufferSize),
		updates: make(chan Update, updatesBufferSize),
		lock:    &sync.RWMutex{},
		state:   AwaitingExport{},
		loopWg:  &sync.WaitGroup{},
		tasksWg: &sync.WaitGroup{},
	}, nil
}

// Start runs the event loop until Stop is called or the given context is
// done.
func (m *Machine) Start(ctx context.Context) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.stopped {
		return ErrMachineStopped
	}
	if m.started {
		return ErrMachineAlreadyStarted
	}
	m.started = true
	m.ctx, m.cancel = context.WithCancel(ctx)

	m.loopWg.Add(1)
	go m.loop()
	return nil
}

// Stop terminates the event loop and the running tasks, closes the active
// wallet if any and closes the updates channel.
func (m *Machine) Stop() {
	m.lock.Lock()
	if m.stopped {
		m.lock.Unlock()
		return
	}
	m.stopped = true
	started := m.started
	if started {
		m.cancel()
	}
	m.lock.Unlock()

	if started {
		m.loopWg.Wait()
		m.tasksWg.Wait()
	}

	if s, ok := m.State().(ActiveWallet); ok {
		s.Session.Close()
	}
	close(m.updates)
	log.Debug("import machine stopped")
}

// Dispatch enqueues the given event. Events are processed in the order they
// are dispatched.
func (m *Machine) Dispatch(event Event) error {
	if event == nil {
		return fmt.Errorf("%w: missing event", domain.ErrIllegalTransition)
	}

	m.lock.RLock()
	stopped, started, ctx := m.stopped, m.started, m.ctx
	m.lock.RUnlock()

	if stopped {
		return ErrMachineStopped
	}
	if !started {
		// events dispatched before Start are queued up to the buffer size
		select {
		case m.events <- event:
			return nil
		default:
			return ErrEventQueueFull
		}
	}

	select {
	case m.events <- event:
		return nil
	case <-ctx.Done():
		return ErrMachineStopped
	}
}

// Updates returns the channel where an Update is published for every
// processed event. It's closed once the machine is stopped. Consumers must
// drain it for the machine to make progress.
func (m *Machine) Updates() <-chan Update {
	return m.updates
}

// State returns the current state.
func (m *Machine) State() State {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.state
}

func (m *Machine) loop() {
	defer m.loopWg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case event := <-m.events:
			m.handle(event)
		}
	}
}

func (m *Machine) handle(event Event) {
	current := m.State()
	next, effects, err := Transition(current, event, m.opener)

	m.lock.Lock()
	m.state = next
	m.lock.Unlock()

	logger := log.WithFields(log.Fields{
		"event": event.String(),
		"from":  current.String(),
		"to":    next.String(),
	})
	switch {
	case errors.Is(err, domain.ErrIllegalTransition):
		logger.WithError(err).Warn("event rejected")
	case err != nil:
		logger.WithError(err).Warn("event failed")
	default:
		logger.Debug("event processed")
	}

	for _, effect := range effects {
		m.run(effect)
	}

	select {
	case m.updates <- Update{State: next, Event: event, Err: err}:
	case <-m.ctx.Done():
	}
}

func (m *Machine) run(effect Effect) {
	m.tasksWg.Add(1)
	go func() {
		defer m.tasksWg.Done()

		switch e := effect.(type) {
		case LoadExport:
			m.post(m.loadExport())
		case SyncWallet:
			err := e.Session.Sync(m.ctx)
			m.post(SyncCompleted{SessionID: e.Session.ID(), Err: err})
		case CloseWallet:
			e.Session.Close()
		}
	}()
}

func (m *Machine) loadExport() ExportLoaded {
	raw, err := m.source.Select(m.ctx)
	if err != nil {
		return ExportLoaded{Err: fmt.Errorf("%w: %s", domain.ErrExportSource, err)}
	}
	export, err := domain.ParseExport(raw)
	if err != nil {
		return ExportLoaded{Err: err}
	}
	return ExportLoaded{Export: export}
}

// post delivers the outcome of a task to the event loop, unless the machine
// is being stopped.
func (m *Machine) post(event Event) {
	select {
	case m.events <- event:
	case <-m.ctx.Done():
	}
}
