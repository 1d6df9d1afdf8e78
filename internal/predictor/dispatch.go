package predictor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/couchcryptid/flight-delay-service/internal/credentials"
	"github.com/couchcryptid/flight-delay-service/internal/domain"
)

// Action names a user action.
type Action string

const (
	ActionCheckDelay    Action = "check-delay"
	ActionShowSchedules Action = "show-schedules"
	ActionValidateKey   Action = "validate-key"
	ActionSaveKey       Action = "save-key"
	ActionClearKey      Action = "clear-key"
)

// Command is one user request. Fields not used by Action are ignored.
type Command struct {
	Action   Action
	Airport  string
	Provider string
	Type     string
	Slot     credentials.Slot
	Key      string
	Persist  bool
}

// Result is what an action produced. Exactly one of Report, Schedules or
// KeyCheck is set, except for key save/clear which only carry Message.
type Result struct {
	Action    Action
	Report    *domain.DelayReport
	Schedules *ScheduleResult
	KeyCheck  *KeyCheck
	Message   string
}

// Handler runs one action.
type Handler func(ctx context.Context, cmd Command) (Result, error)

// Dispatcher routes commands to the handler registered for their action.
type Dispatcher struct {
	handlers map[Action]Handler
}

// NewDispatcher returns a dispatcher with no handlers.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: map[Action]Handler{}}
}

// Register binds h to action, replacing any previous handler.
func (d *Dispatcher) Register(action Action, h Handler) {
	d.handlers[action] = h
}

// Actions lists the registered actions in sorted order.
func (d *Dispatcher) Actions() []Action {
	out := make([]Action, 0, len(d.handlers))
	for a := range d.handlers {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Dispatch runs the handler for cmd.Action.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	h, ok := d.handlers[cmd.Action]
	if !ok {
		return Result{Action: cmd.Action}, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, cmd.Action)
	}
	res, err := h(ctx, cmd)
	res.Action = cmd.Action
	return res, err
}

// NewClientDispatcher registers the command-line actions against svc and keys.
func NewClientDispatcher(svc *Service, keys *credentials.Manager) *Dispatcher {
	d := NewDispatcher()

	d.Register(ActionCheckDelay, func(ctx context.Context, cmd Command) (Result, error) {
		report, err := svc.CheckDelay(ctx, cmd.Airport)
		if err != nil {
			return Result{}, err
		}
		return Result{Report: &report}, nil
	})

	d.Register(ActionShowSchedules, func(ctx context.Context, cmd Command) (Result, error) {
		res, err := svc.Schedules(ctx, cmd.Airport, cmd.Provider, cmd.Type)
		if err != nil {
			return Result{}, err
		}
		return Result{Schedules: &res}, nil
	})

	d.Register(ActionValidateKey, func(ctx context.Context, cmd Command) (Result, error) {
		key := strings.TrimSpace(cmd.Key)
		if key == "" {
			// Fall back to the session or stored key; a missing one is
			// reported by ValidateKey as invalid input.
			key, _ = keys.Credential(ctx, cmd.Slot)
		}
		check, err := svc.ValidateKey(ctx, cmd.Slot, cmd.Provider, key)
		if err != nil {
			return Result{}, err
		}
		return Result{KeyCheck: &check, Message: check.Message}, nil
	})

	d.Register(ActionSaveKey, func(_ context.Context, cmd Command) (Result, error) {
		persisted, err := keys.Save(cmd.Slot, cmd.Key, cmd.Persist)
		if err != nil {
			return Result{}, err
		}
		if !persisted {
			return Result{Message: fmt.Sprintf("%s key set for this session; pass --remember to persist", cmd.Slot)}, nil
		}
		return Result{Message: fmt.Sprintf("%s key saved locally", cmd.Slot)}, nil
	})

	d.Register(ActionClearKey, func(_ context.Context, cmd Command) (Result, error) {
		if err := keys.Clear(cmd.Slot); err != nil {
			return Result{}, err
		}
		return Result{Message: fmt.Sprintf("%s key cleared", cmd.Slot)}, nil
	})

	return d
}
