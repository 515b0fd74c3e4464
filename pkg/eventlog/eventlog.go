package eventlog

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/eventlog/internal/config"
	"github.com/jmylchreest/eventlog/internal/display"
	"github.com/jmylchreest/eventlog/internal/hittest"
	"github.com/jmylchreest/eventlog/internal/model"
	"github.com/jmylchreest/eventlog/internal/overlay"
	"github.com/jmylchreest/eventlog/internal/store"
	"github.com/jmylchreest/eventlog/internal/theme"
	"github.com/jmylchreest/eventlog/internal/uiloop"
)

// Public names for the types that cross the API boundary.
type (
	Event    = model.Event
	Category = model.Category
	Loop     = uiloop.Loop
	Host     = display.Host
	Frame    = display.Frame
	Point    = hittest.Point
	Size     = hittest.Size
)

// Event categories.
const (
	CategoryMessage   = model.CategoryMessage
	CategoryError     = model.CategoryError
	CategoryWarning   = model.CategoryWarning
	CategoryAnalytics = model.CategoryAnalytics
)

// EventLog ties the event stream, the visibility state machine and the
// overlay surface together. Create one per process and share it.
type EventLog struct {
	loop    uiloop.Loop
	stream  *store.EventStream
	machine *overlay.Machine
	overlay *display.Overlay
	themes  *theme.Loader
	config  *config.Config
	logger  *slog.Logger

	category Category
}

// New creates an EventLog whose state is owned by loop. New must be called
// on the loop, or before the loop starts running.
func New(loop uiloop.Loop, opts ...Option) (*EventLog, error) {
	if loop == nil {
		return nil, errors.New("eventlog: nil loop")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.config == nil {
		o.config = config.DefaultConfig()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("eventlog: invalid config: %w", err)
	}
	if !o.category.Valid() {
		return nil, fmt.Errorf("eventlog: %w: %d", model.ErrInvalidCategory, int(o.category))
	}

	themes := theme.NewLoader(o.themesDir, o.logger)
	stream := store.NewEventStream(o.logger)
	machine := overlay.NewMachine(loop, stream, overlay.SettingsFromConfig(o.config), o.logger)

	return &EventLog{
		loop:    loop,
		stream:  stream,
		machine: machine,
		overlay: display.New(machine, o.config.Display, themes.Load(o.config.Theme.Name), o.logger),
		themes:  themes,
		config:  o.config,
		logger:  o.logger,

		category: o.category,
	}, nil
}

// Send emits an event. It is safe to call from any goroutine. Events with
// an empty title are dropped. Use Log to send with the default category
// (CategoryAnalytics unless WithCategory says otherwise).
func (l *EventLog) Send(title, message string, category Category) {
	if err := l.TrySend(title, message, category); err != nil {
		l.logger.Debug("dropped event", "title", title, "error", err)
	}
}

// TrySend is Send, but returns the validation error instead of dropping
// the event silently. The event is appended asynchronously on the loop.
func (l *EventLog) TrySend(title, message string, category Category) error {
	ev, err := model.NewEvent(l.loop.Now(), title, message, category)
	if err != nil {
		return err
	}

	l.loop.Post(func() {
		if err := l.stream.Append(ev); err != nil {
			l.logger.Warn("failed to append event", "id", ev.ID, "error", err)
		}
	})
	return nil
}

// SendParams emits an event whose message lists params as sorted
// "key: value" lines.
func (l *EventLog) SendParams(title string, params map[string]any, category Category) {
	l.Send(title, FormatParams(params), category)
}

// Log is Send with the category configured by WithCategory.
func (l *EventLog) Log(title, message string) {
	l.Send(title, message, l.category)
}

// LogParams is SendParams with the category configured by WithCategory.
func (l *EventLog) LogParams(title string, params map[string]any) {
	l.SendParams(title, params, l.category)
}

// DefaultCategory returns the category used by Log and LogParams.
func (l *EventLog) DefaultCategory() Category {
	return l.category
}

// Sendf emits an event with a formatted message.
func (l *EventLog) Sendf(category Category, title, format string, args ...any) {
	l.Send(title, fmt.Sprintf(format, args...), category)
}

// Attach mounts the overlay on host. Detach before attaching elsewhere.
func (l *EventLog) Attach(host Host) error {
	return l.overlay.Attach(host)
}

// Detach unmounts the overlay. It is safe to call more than once.
func (l *EventLog) Detach() {
	l.overlay.Detach()
}

// ShouldClaim reports whether input at p belongs to the overlay.
func (l *EventLog) ShouldClaim(p Point) bool {
	return l.overlay.ShouldClaim(p)
}

// Tap delivers a tap at p. It reports whether the overlay consumed it.
func (l *EventLog) Tap(p Point) bool {
	return l.overlay.Tap(p)
}

// OnRender sets the callback invoked with every rebuilt frame.
func (l *EventLog) OnRender(fn func(Frame)) {
	l.overlay.SetRenderCallback(fn)
}

// ApplyConfig switches to cfg: timings, capacity, geometry and theme.
// Invalid configs are rejected and the current one stays active.
func (l *EventLog) ApplyConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("eventlog: invalid config: %w", err)
	}

	l.machine.UpdateSettings(overlay.SettingsFromConfig(cfg))
	if cfg.Theme.Name != l.config.Theme.Name {
		l.overlay.SetTheme(l.themes.Load(cfg.Theme.Name))
	}
	l.overlay.SetDisplayConfig(cfg.Display)
	l.config = cfg

	l.logger.Info("configuration applied", "recent_capacity", cfg.Overlay.RecentCapacity, "theme", cfg.Theme.Name)
	return nil
}

// Config returns the active configuration.
func (l *EventLog) Config() *config.Config {
	return l.config
}

// Stream returns the underlying event stream.
func (l *EventLog) Stream() *store.EventStream {
	return l.stream
}

// Machine returns the visibility state machine.
func (l *EventLog) Machine() *overlay.Machine {
	return l.machine
}

// Overlay returns the mounted surface.
func (l *EventLog) Overlay() *display.Overlay {
	return l.overlay
}

// Close detaches the overlay and stops accepting events.
func (l *EventLog) Close() {
	l.overlay.Detach()
	l.machine.Close()
	l.stream.Close()
}
