package weather

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Coordinator owns the current weather and icon state and drives the
// location → fetch → publish → icon chain.
//
// Every fetch chain is tagged with a generation number. A chain whose
// generation has been superseded by a newer request drops its result, so the
// most recently issued request wins regardless of completion order. A
// location request counts as issued when it is made, not when its fix
// arrives: a fix answering a request that a later city search superseded is
// dropped.
type Coordinator struct {
	queries  QueryBuilder
	fetcher  Fetcher
	icons    IconResolver
	location LocationProvider
	prefs    PreferenceStore
	logger   *zap.Logger

	// base context for fetch chains; request contexts are never used for
	// them since in-flight fetches are not cancelled by their caller.
	ctx context.Context

	mu         sync.RWMutex
	weather    *Record
	icon       *Icon
	generation uint64
	// set while a location request issued here is unanswered
	locationPending    bool
	locationSuperseded bool
	weatherObs []func(Record)
	iconObs    []func(Icon)

	wg sync.WaitGroup
}

// NewCoordinator creates a Coordinator. icons, location and prefs may be nil.
func NewCoordinator(
	queries QueryBuilder,
	fetcher Fetcher,
	icons IconResolver,
	location LocationProvider,
	prefs PreferenceStore,
	logger *zap.Logger,
) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		queries:  queries,
		fetcher:  fetcher,
		icons:    icons,
		location: location,
		prefs:    prefs,
		logger:   logger,
		ctx:      context.Background(),
	}
}

// Start subscribes to location events and performs the initial location
// decision. ctx bounds the subscription and all fetch chains.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	if c.location != nil {
		go c.listen(ctx, c.location.Events())
	}
	c.performLocationFetch(ctx)
}

// Refresh re-runs the start-up location decision. onDone fires as soon as
// the work is dispatched, before any response arrives.
func (c *Coordinator) Refresh(ctx context.Context, onDone func()) {
	c.performLocationFetch(ctx)
	if onDone != nil {
		onDone()
	}
}

// SearchCity persists city as the preferred location and fetches its weather.
func (c *Coordinator) SearchCity(ctx context.Context, city string) {
	if c.prefs != nil {
		if err := c.prefs.SetPreferredLocation(ctx, city); err != nil {
			c.logger.Error("failed to persist preferred location", zap.String("city", city), zap.Error(err))
		}
	}
	c.fetchByCity(city)
}

// CurrentWeather returns a copy of the last published record, or nil before
// the first fetch.
func (c *Coordinator) CurrentWeather() *Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.weather == nil {
		return nil
	}
	rec := c.weather.Clone()
	return &rec
}

// CurrentIcon returns the last published icon, or nil.
func (c *Coordinator) CurrentIcon() *Icon {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.icon
}

// OnWeather registers an observer called after every weather publish.
func (c *Coordinator) OnWeather(fn func(Record)) {
	c.mu.Lock()
	c.weatherObs = append(c.weatherObs, fn)
	c.mu.Unlock()
}

// OnIcon registers an observer called after every icon publish.
func (c *Coordinator) OnIcon(fn func(Icon)) {
	c.mu.Lock()
	c.iconObs = append(c.iconObs, fn)
	c.mu.Unlock()
}

// Wait blocks until every in-flight fetch chain has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) listen(ctx context.Context, events <-chan LocationEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Err != nil {
				// Location failures have no visible effect.
				c.logger.Warn("location update failed", zap.Error(ev.Err))
				c.settleLocationRequest()
				continue
			}
			if c.settleLocationRequest() {
				c.logger.Info("discarding location fix superseded by a city search",
					zap.Float64("latitude", ev.Coordinate.Latitude),
					zap.Float64("longitude", ev.Coordinate.Longitude))
				continue
			}
			c.fetchByCoordinate(ev.Coordinate)
		}
	}
}

func (c *Coordinator) performLocationFetch(ctx context.Context) {
	status := AuthorizationDenied
	if c.location != nil {
		status = c.location.AuthorizationStatus()
	}
	c.logger.Debug("performing location fetch", zap.String("authorization", string(status)))

	switch status {
	case AuthorizationAuthorized:
		c.clearPreferredLocation(ctx)
		c.issueLocationRequest()
		c.location.RequestOneLocation()
	case AuthorizationNotDetermined:
		c.clearPreferredLocation(ctx)
		c.issueLocationRequest()
		c.location.RequestPermissionPrompt()
	default:
		if c.prefs == nil {
			return
		}
		city, err := c.prefs.PreferredLocation(ctx)
		if err != nil {
			c.logger.Error("failed to read preferred location", zap.Error(err))
			return
		}
		if city != "" {
			c.fetchByCity(city)
		}
	}
}

func (c *Coordinator) clearPreferredLocation(ctx context.Context) {
	if c.prefs == nil {
		return
	}
	if err := c.prefs.SetPreferredLocation(ctx, ""); err != nil {
		c.logger.Error("failed to clear preferred location", zap.Error(err))
	}
}

// issueLocationRequest supersedes in-flight chains and marks a location
// request as pending. It must run before the request is made since the fix
// may arrive immediately.
func (c *Coordinator) issueLocationRequest() {
	c.mu.Lock()
	c.generation++
	c.locationPending = true
	c.locationSuperseded = false
	c.mu.Unlock()
}

// settleLocationRequest consumes the pending location request and reports
// whether a city search superseded it.
func (c *Coordinator) settleLocationRequest() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	stale := c.locationPending && c.locationSuperseded
	c.locationPending = false
	c.locationSuperseded = false
	return stale
}

func (c *Coordinator) fetchByCity(city string) {
	c.logger.Info("started fetch", zap.String("city", city))
	c.mu.Lock()
	if c.locationPending {
		c.locationSuperseded = true
	}
	c.mu.Unlock()
	c.dispatch(func() (RequestTarget, error) {
		return c.queries.BuildCityQuery(city)
	})
}

func (c *Coordinator) fetchByCoordinate(coord Coordinate) {
	c.logger.Info("started fetch",
		zap.Float64("latitude", coord.Latitude),
		zap.Float64("longitude", coord.Longitude))
	c.dispatch(func() (RequestTarget, error) {
		return c.queries.BuildCoordinateQuery(coord.Latitude, coord.Longitude)
	})
}

func (c *Coordinator) dispatch(build func() (RequestTarget, error)) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	ctx := c.ctx
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		rec := c.fetch(ctx, build)
		if !c.publishWeather(gen, rec) {
			c.logger.Debug("discarding superseded weather result", zap.Uint64("generation", gen))
			return
		}
		c.fetchIcon(ctx, gen, rec)
	}()
}

// fetch never fails: any error on the fetch path is logged and replaced by
// an empty record so clients always render placeholders.
func (c *Coordinator) fetch(ctx context.Context, build func() (RequestTarget, error)) Record {
	target, err := build()
	if err != nil {
		c.logger.Error("failed to build weather query", zap.Error(err))
		return Record{}
	}
	rec, err := c.fetcher.FetchWeather(ctx, target)
	if err != nil {
		c.logger.Error("weather fetch failed", zap.Error(err))
		return Record{}
	}
	return rec
}

func (c *Coordinator) publishWeather(gen uint64, rec Record) bool {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return false
	}
	stored := rec.Clone()
	c.weather = &stored
	obs := slices.Clone(c.weatherObs)
	c.mu.Unlock()

	for _, fn := range obs {
		fn(rec)
	}
	return true
}

func (c *Coordinator) fetchIcon(ctx context.Context, gen uint64, rec Record) {
	code, ok := rec.IconCode()
	if !ok || c.icons == nil {
		return
	}
	icon := c.icons.Resolve(ctx, code)
	if icon == nil {
		return
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.icon = icon
	obs := slices.Clone(c.iconObs)
	c.mu.Unlock()

	for _, fn := range obs {
		fn(*icon)
	}
}
