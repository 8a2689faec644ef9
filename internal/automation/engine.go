// Package automation evaluates per-board automation rules against item events
// and runs their actions.
package automation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/flowboard/internal/domain"
	"github.com/gosuda/flowboard/internal/event"
)

const SubscriberName = "automation"

// ErrNoItemRef is returned by item actions when the triggering event carries
// no item id.
var ErrNoItemRef = errors.New("automation: event has no item reference") //nolint:gochecknoglobals // sentinel error

// ItemArchiver performs the domain archive operation. Implementations emit
// item.archived themselves.
type ItemArchiver interface {
	ArchiveItem(ctx context.Context, itemID uuid.UUID, userID *uuid.UUID) (*domain.Item, error)
}

// ActionFunc runs one automation action for the event that fired it.
type ActionFunc func(ctx context.Context, a *domain.Automation, ev event.Event) error

// Engine matches active automations of the event's board and executes their
// actions in store order. Each automation runs in isolation.
type Engine struct {
	repo domain.AutomationRepository

	mu      sync.RWMutex
	actions map[string]ActionFunc
}

// NewEngine creates an Engine with the built-in actions registered.
func NewEngine(repo domain.AutomationRepository, archiver ItemArchiver) *Engine {
	e := &Engine{
		repo:    repo,
		actions: make(map[string]ActionFunc),
	}
	e.RegisterAction(domain.ActionArchiveItem, ArchiveItemAction(archiver))
	return e
}

// RegisterAction adds or replaces the handler for an action name.
func (e *Engine) RegisterAction(name string, fn ActionFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actions[name] = fn
}

func (e *Engine) action(name string) (ActionFunc, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn, ok := e.actions[name]
	return fn, ok
}

func (e *Engine) Subscribe(bus event.Subscriber) {
	bus.Subscribe(event.NameItemCreated, SubscriberName, e.Handle)
	bus.Subscribe(event.NameColumnValueUpdated, SubscriberName, e.Handle)
}

// TriggerFor maps an event to the automation trigger it fires.
func TriggerFor(ev event.Event) (domain.Trigger, bool) {
	switch ev.(type) {
	case event.ItemCreated:
		return domain.TriggerItemCreated, true
	case event.ColumnValueUpdated:
		return domain.TriggerColumnValueChanged, true
	default:
		return "", false
	}
}

// Handle evaluates every active automation of the event's board. Failures of
// individual automations are logged and joined into the returned error; they
// never stop the remaining automations.
func (e *Engine) Handle(ctx context.Context, ev event.Event) error {
	trigger, ok := TriggerFor(ev)
	if !ok {
		return nil
	}
	scoped, ok := ev.(event.BoardScoped)
	if !ok || scoped.Board() == uuid.Nil {
		return nil
	}

	automations, err := e.repo.ListActive(ctx, scoped.Board(), trigger)
	if err != nil {
		return fmt.Errorf("automation.Engine.Handle: list %s: %w", trigger, err)
	}

	var errs []error
	for _, a := range automations {
		if !Matches(a, ev) {
			continue
		}
		if err := e.execute(ctx, a, ev); err != nil {
			log.Error().Err(err).
				Str("automation_id", a.ID.String()).
				Str("action", a.Action).
				Msg("automation.Engine: action failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) execute(ctx context.Context, a *domain.Automation, ev event.Event) (err error) {
	fn, ok := e.action(a.Action)
	if !ok {
		log.Warn().
			Str("automation_id", a.ID.String()).
			Str("action", a.Action).
			Msg("automation.Engine: unknown action")
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("automation %s: action %s panicked: %v", a.ID, a.Action, r)
		}
	}()

	log.Debug().
		Str("automation_id", a.ID.String()).
		Str("action", a.Action).
		Str("event", string(ev.EventName())).
		Msg("automation.Engine: executing")

	if err := fn(ctx, a, ev); err != nil {
		return fmt.Errorf("automation %s: %s: %w", a.ID, a.Action, err)
	}
	return nil
}

// Matches reports whether the automation's board, trigger and conditions
// accept ev.
func Matches(a *domain.Automation, ev event.Event) bool {
	if a == nil || !a.IsActive {
		return false
	}
	trigger, ok := TriggerFor(ev)
	if !ok || trigger != a.Trigger {
		return false
	}
	scoped, ok := ev.(event.BoardScoped)
	if !ok || scoped.Board() != a.BoardID {
		return false
	}

	switch e := ev.(type) {
	case event.ColumnValueUpdated:
		c := a.Conditions
		if c.ColumnID != nil && *c.ColumnID != e.ColumnID {
			return false
		}
		if c.Value != nil && !c.Value.Matches(e.Value.Value) {
			return false
		}
		return true
	default:
		return true
	}
}

// ArchiveItemAction archives the item the event refers to.
func ArchiveItemAction(archiver ItemArchiver) ActionFunc {
	return func(ctx context.Context, _ *domain.Automation, ev event.Event) error {
		itemID, ok := event.ItemRef(ev)
		if !ok {
			return ErrNoItemRef
		}
		if _, err := archiver.ArchiveItem(ctx, itemID, nil); err != nil {
			return fmt.Errorf("archive item %s: %w", itemID, err)
		}
		return nil
	}
}
