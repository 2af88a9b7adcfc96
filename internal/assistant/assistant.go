// Package assistant answers customer utterances for one session: it
// classifies the utterance, runs order commands against the session ledger
// and produces the reply.
package assistant

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"cantina/internal/generation"
	"cantina/internal/interpreter"
	"cantina/internal/ledger"
	"cantina/internal/models"
	"cantina/internal/monitoring"
	"cantina/internal/session"
)

// Situations handed to the generator when there is nothing better to say
const (
	situationNotOnMenu      = "The user tried to order something that is not on the menu."
	situationNotFound       = "The chatbot couldn't find what the user was looking for."
	situationEmptyView      = "The user asked to see their current order, but the user has not ordered anything."
	situationEmptyCheckout  = "The user tried to finish their order, but the user has not ordered anything."
	situationCancelled      = "The user cancelled the entire order."
	situationNotUnderstood  = "The chatbot couldn't understand the user's question."
	situationFinishedFormat = "The user has finished their order. The final order is %s."
	situationAskedFormat    = "The user asked: '%s'"
)

// Catalog supplies the menu. It is queried on every utterance.
type Catalog interface {
	ListItems(ctx context.Context) ([]models.MenuItem, error)
}

// Archive stores checked-out and cancelled orders.
type Archive interface {
	SaveOrder(ctx context.Context, order *models.Order) error
}

// StaticCatalog is an in-memory catalog.
type StaticCatalog []models.MenuItem

func (c StaticCatalog) ListItems(context.Context) ([]models.MenuItem, error) {
	return c, nil
}

// OrderView is the order as shown to the customer.
type OrderView struct {
	Lines   []ledger.Line `json:"lines"`
	Summary string        `json:"summary"`
	Total   string        `json:"total"`
}

// Outcome is the result of one utterance.
type Outcome struct {
	Intent   interpreter.Intent `json:"intent"`
	Reply    string             `json:"reply"`
	Summary  string             `json:"summary,omitempty"`
	Commands []ledger.Result    `json:"commands,omitempty"`
	Order    OrderView          `json:"order"`
}

// Option configures an Assistant
type Option func(*Assistant)

// WithArchive stores completed and cancelled orders in archive.
func WithArchive(archive Archive) Option {
	return func(a *Assistant) { a.archive = archive }
}

// WithMetrics records intents, commands and generator calls.
func WithMetrics(metrics *monitoring.MetricsCollector) Option {
	return func(a *Assistant) { a.metrics = metrics }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(a *Assistant) { a.log = log }
}

// Assistant dispatches utterances by intent.
type Assistant struct {
	interp    atomic.Pointer[interpreter.Interpreter]
	catalog   Catalog
	generator generation.Generator
	archive   Archive
	metrics   *monitoring.MetricsCollector
	log       *zap.Logger
}

// New creates an assistant.
func New(in *interpreter.Interpreter, catalog Catalog, generator generation.Generator, opts ...Option) *Assistant {
	a := &Assistant{
		catalog:   catalog,
		generator: generator,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.interp.Store(in)
	return a
}

// SetInterpreter swaps the rule table used for subsequent utterances.
func (a *Assistant) SetInterpreter(in *interpreter.Interpreter) {
	a.interp.Store(in)
}

// Interpreter returns the rule table currently in use.
func (a *Assistant) Interpreter() *interpreter.Interpreter {
	return a.interp.Load()
}

// HandleMessage processes one utterance for s. Malformed input never fails;
// an error means the catalog could not be read.
func (a *Assistant) HandleMessage(ctx context.Context, s *session.Session, utterance string) (Outcome, error) {
	catalog, err := a.catalog.ListItems(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to load menu: %w", err)
	}

	in := a.interp.Load()
	simplified := in.Simplify(utterance)
	intent := in.Classify(utterance)

	// "2 crunchy tacos" names a menu category but is an order
	var implied []interpreter.Command
	if _, listing := categories[intent]; listing || intent == interpreter.IntentUnknown {
		if implied = in.ImpliedOrder(utterance, catalog); implied != nil {
			intent = interpreter.IntentAddItem
		}
	}

	log := a.log.With(zap.String("session_id", s.ID), zap.String("intent", string(intent)))

	s.Lock()
	defer s.Unlock()
	l := s.Ledger()

	out := Outcome{Intent: intent}
	switch intent {
	case interpreter.IntentAddItem, interpreter.IntentRemoveItem:
		commands := implied
		if commands == nil {
			commands = in.Parse(utterance, catalog)
		}
		out.Summary, out.Commands = ledger.Apply(l, commands)
		a.recordCommands(out.Commands)
		situation := out.Summary
		if situation == "" {
			situation = situationNotOnMenu
		}
		out.Reply = a.generate(ctx, log, situation)

	case interpreter.IntentGetPrice:
		if item := interpreter.FindItem(simplified, catalog); item != nil {
			out.Reply = fmt.Sprintf("The price of %s is $%s.", item.Name, item.Price.StringFixed(2))
		} else {
			out.Reply = "I couldn't find that item in the menu."
		}

	case interpreter.IntentGetDescription:
		if item := interpreter.FindItem(simplified, catalog); item != nil && item.Description != "" {
			out.Reply = item.Description
		} else {
			out.Reply = a.generate(ctx, log, situationNotFound)
		}

	case interpreter.IntentGetMenu:
		out.Reply = "Here is our menu:\n\n" + listItems(catalog)

	case interpreter.IntentAskQuestion:
		out.Reply = a.generate(ctx, log, fmt.Sprintf(situationAskedFormat, utterance))

	case interpreter.IntentViewOrder:
		if l.IsEmpty() {
			out.Reply = a.generate(ctx, log, situationEmptyView)
		} else {
			out.Reply = fmt.Sprintf("Your current order is \n\n%s\n\nand your total is $%s.", l.Summary(), l.Total().StringFixed(2))
		}

	case interpreter.IntentCompleteOrder:
		if l.IsEmpty() {
			out.Reply = a.generate(ctx, log, situationEmptyCheckout)
			break
		}
		a.archiveOrder(ctx, log, s.ID, l, models.OrderStatusCompleted)
		if a.metrics != nil {
			a.metrics.RecordCheckout(l.Total())
		}
		log.Info("Order completed", zap.String("total", l.Total().StringFixed(2)), zap.Int("lines", l.Len()))
		out.Reply = a.generate(ctx, log, fmt.Sprintf(situationFinishedFormat, l.Summary()))

	case interpreter.IntentCancelOrder:
		if !l.IsEmpty() {
			a.archiveOrder(ctx, log, s.ID, l, models.OrderStatusCancelled)
		}
		l.Clear()
		out.Reply = a.generate(ctx, log, situationCancelled)

	default:
		if category, ok := categories[intent]; ok {
			out.Reply = category.reply(catalog)
			break
		}
		out.Reply = a.generate(ctx, log, situationNotUnderstood)
	}

	out.Order = OrderView{Lines: l.Lines(), Summary: l.Summary(), Total: l.Total().StringFixed(2)}
	s.Record(session.Exchange{At: time.Now(), Utterance: utterance, Intent: string(intent), Reply: out.Reply})
	if a.metrics != nil {
		a.metrics.RecordIntent(string(intent))
	}
	log.Debug("Handled message", zap.Int("commands", len(out.Commands)))
	return out, nil
}

// generate asks the generator for a reply and falls back to the situation
// itself when generation fails.
func (a *Assistant) generate(ctx context.Context, log *zap.Logger, situation string) string {
	start := time.Now()
	reply, err := a.generator.Generate(ctx, situation)
	if a.metrics != nil {
		a.metrics.RecordGeneration(time.Since(start), err)
	}
	if err != nil {
		log.Warn("Response generation failed, using situation as reply", zap.Error(err))
		return situation
	}
	return reply
}

func (a *Assistant) recordCommands(results []ledger.Result) {
	if a.metrics == nil {
		return
	}
	for _, res := range results {
		result := monitoring.ResultApplied
		if !res.Command.Recognized() {
			result = monitoring.ResultUnrecognized
		}
		a.metrics.RecordCommand(string(res.Command.Intent), result)
	}
}

func (a *Assistant) archiveOrder(ctx context.Context, log *zap.Logger, sessionID string, l *ledger.Ledger, status models.OrderStatus) {
	if a.archive == nil {
		return
	}
	order := BuildOrder(sessionID, l, status, time.Now())
	if err := a.archive.SaveOrder(ctx, order); err != nil {
		log.Error("Failed to archive order", zap.String("status", string(status)), zap.Error(err))
		return
	}
	log.Info("Order archived", zap.Uint("order_id", order.ID), zap.String("status", string(status)))
}

// BuildOrder converts a ledger into an archive record.
func BuildOrder(sessionID string, l *ledger.Ledger, status models.OrderStatus, at time.Time) *models.Order {
	order := &models.Order{
		SessionID:     sessionID,
		Status:        string(status),
		Total:         l.Total(),
		TimeCompleted: at,
	}
	for _, line := range l.Lines() {
		mods := ""
		if len(line.Modifications) > 0 {
			mods = interpreter.RenderModifications(line.Modifications)
		}
		order.Lines = append(order.Lines, models.OrderLine{
			Key:           line.Key,
			ItemName:      line.Item.Name,
			Size:          line.Size,
			Modifications: mods,
			Quantity:      line.Quantity,
			UnitPrice:     line.Item.Price,
		})
	}
	return order
}
