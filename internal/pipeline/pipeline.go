// Package pipeline subscribes the event consumers to the bus in their
// delivery order.
package pipeline

import (
	"github.com/gosuda/flowboard/internal/activity"
	"github.com/gosuda/flowboard/internal/automation"
	"github.com/gosuda/flowboard/internal/domain"
	"github.com/gosuda/flowboard/internal/event"
	"github.com/gosuda/flowboard/internal/notify"
	"github.com/gosuda/flowboard/internal/realtime"
)

// Deps are the collaborators the consumers need.
type Deps struct {
	Store         domain.Store
	Archiver      automation.ItemArchiver
	Notifications *notify.Service
	Broadcaster   realtime.Broadcaster
}

// Consumers are the subscribed event consumers.
type Consumers struct {
	Activity    *activity.Logger
	AccountLogs *activity.AccountLogger
	Automation  *automation.Engine
	Mentions    *notify.Engine
	Relay       *realtime.Relay
}

// Wire builds every consumer and subscribes it to bus. Subscription order is
// delivery order: loggers first, then automations, then notifications, and the
// realtime relay last so clients only see events after they were recorded.
func Wire(bus event.Subscriber, deps Deps) *Consumers {
	c := &Consumers{
		Activity:    activity.NewLogger(deps.Store.Activity()),
		AccountLogs: activity.NewAccountLogger(deps.Store.AccountLogs()),
		Automation:  automation.NewEngine(deps.Store.Automations(), deps.Archiver),
		Mentions:    notify.NewEngine(deps.Store.Users(), deps.Notifications),
		Relay:       realtime.NewRelay(deps.Broadcaster),
	}

	c.Activity.Subscribe(bus)
	c.AccountLogs.Subscribe(bus)
	c.Automation.Subscribe(bus)
	c.Mentions.Subscribe(bus)
	c.Relay.Subscribe(bus)

	return c
}
