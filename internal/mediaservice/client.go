package mediaservice

import (
	"errors"
	"time"

	"github.com/llehouerou/mediaplayer/internal/host"
	"github.com/llehouerou/mediaplayer/internal/logger"
	"github.com/llehouerou/mediaplayer/internal/servicebridge"
)

// Client is the in-process handle on the service. Every call is fire and
// forget: delivery failures are logged. Only Start creates the service;
// updates and commands sent while it is not running are dropped.
type Client struct {
	host   *host.Host
	slot   *CallbackSlot
	bridge *servicebridge.Helper
}

// Install registers the service on h. Sessions may be nil to run without a
// media session.
func Install(h *host.Host, cfg Config, sessions SessionFactory) *Client {
	if cfg.DefaultTitle == "" {
		cfg.DefaultTitle = DefaultTitle
	}

	c := &Client{
		host:   h,
		slot:   &CallbackSlot{},
		bridge: servicebridge.New(h),
	}
	h.Register(Name, func() host.Service {
		return &service{
			slot:     c.slot,
			sessions: sessions,
			self:     selfCommands{c},
			cfg:      cfg,
		}
	})
	return c
}

// Register routes transport commands to cb.
func (c *Client) Register(cb Callback) *Registration {
	return c.slot.Register(cb)
}

// Start starts the service in the foreground.
func (c *Client) Start(title string) {
	c.bridge.StartService(title)
}

func (c *Client) Stop() {
	c.bridge.StopService()
}

// Active reports whether the service was last asked to run. It is a hint
// for display only.
func (c *Client) Active() bool {
	return c.bridge.IsActive()
}

// UpdateState pushes a state snapshot to the running service.
func (c *Client) UpdateState(u Update) {
	in := host.NewIntent("").
		With(ExtraIsPlaying, u.IsPlaying).
		With(ExtraPosition, u.Position.Milliseconds()).
		With(ExtraDuration, u.Duration.Milliseconds())
	if u.Title != "" {
		in = in.With(ExtraTitle, u.Title)
	}
	c.deliver(in)
}

// Send delivers a bare command action to the service.
func (c *Client) Send(action string) {
	c.deliver(host.NewIntent(action))
}

// SeekTo sends a seek command carrying pos.
func (c *Client) SeekTo(pos time.Duration) {
	c.deliver(host.NewIntent(ActionSeekTo).With(ExtraPosition, pos.Milliseconds()))
}

func (c *Client) deliver(in host.Intent) {
	err := c.host.Deliver(Name, in)
	if errors.Is(err, host.ErrNotRunning) {
		logger.Log.Debug().Str("action", in.Action).Msg("playback service not running, dropping intent")
		return
	}
	if err != nil {
		logger.Log.Error().Err(err).Str("action", in.Action).Msg("could not reach playback service")
	}
}

// selfCommands turns session commands into intents so that they are
// handled on the service goroutine like any other sender's.
type selfCommands struct{ c *Client }

func (s selfCommands) OnPlay()  { s.c.Send(ActionPlay) }
func (s selfCommands) OnPause() { s.c.Send(ActionPause) }
func (s selfCommands) OnStop()  { s.c.Send(ActionStop) }

func (s selfCommands) OnSeekTo(pos time.Duration) { s.c.SeekTo(pos) }
