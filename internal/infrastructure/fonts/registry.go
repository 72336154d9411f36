package fonts

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/fulluproar/backoffice/internal/infrastructure/telemetry"
)

// ByteCache stores downloaded font files between restarts.
// Implemented by the cache package (Redis, in-memory).
type ByteCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

type family struct {
	name     string
	source   Source
	status   Status
	fonts    map[Variant]*opentype.Font
	done     chan struct{}
	failedAt time.Time
}

func (f *family) variantNames() []string {
	names := make([]string, 0, len(f.fonts))
	for v := range f.fonts {
		names = append(names, v.String())
	}
	sort.Strings(names)
	return names
}

// DefaultMaxRemoteFamilies bounds the families EnsureLoaded will track
const DefaultMaxRemoteFamilies = 256

// Registry resolves family names to renderable faces.
//
// Built-in families are always ready. EnsureLoaded starts one background
// fetch per unknown family; callers that need the result wait on the
// returned channel, everyone else renders with the fallback family until
// IsReady reports true.
type Registry struct {
	mu       sync.RWMutex
	families map[string]*family

	fetcher    *Fetcher
	cache      ByteCache
	cacheTTL   time.Duration
	failureTTL time.Duration
	maxRemote  int
	logger     *zap.Logger
	metrics    *telemetry.DesignerMetrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Registry
type Option func(*Registry)

// WithFetcher enables on-demand loading of unknown families
func WithFetcher(f *Fetcher) Option {
	return func(r *Registry) {
		r.fetcher = f
	}
}

// WithCache keeps downloaded font files in c for ttl
func WithCache(c ByteCache, ttl time.Duration) Option {
	return func(r *Registry) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// WithFailureTTL sets how long a failed family is left alone before the
// next EnsureLoaded retries it
func WithFailureTTL(d time.Duration) Option {
	return func(r *Registry) {
		r.failureTTL = d
	}
}

// WithMaxRemoteFamilies caps how many non built-in families the registry
// tracks. Zero or less removes the cap.
func WithMaxRemoteFamilies(n int) Option {
	return func(r *Registry) {
		r.maxRemote = n
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics records font loads
func WithMetrics(m *telemetry.DesignerMetrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// NewRegistry creates a registry holding the built-in families
func NewRegistry(opts ...Option) (*Registry, error) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		families:   make(map[string]*family),
		failureTTL: 5 * time.Minute,
		maxRemote:  DefaultMaxRemoteFamilies,
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, b := range builtinFamilies() {
		if err := r.Register(b.name, SourceBuiltin, b.variants); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to load built-in family %q: %w", b.name, err)
		}
	}
	return r, nil
}

// Close cancels in-flight fetches and waits for them to finish
func (r *Registry) Close() {
	r.cancel()
	r.wg.Wait()
}

// Register parses font files and installs them as a ready family,
// replacing any family of the same name
func (r *Registry) Register(name string, source Source, files map[Variant][]byte) error {
	parsed, err := parseVariants(files)
	if err != nil {
		return err
	}
	display := displayFamily(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.families[normalizeFamily(display)] = &family{
		name:   display,
		source: source,
		status: StatusReady,
		fonts:  parsed,
		done:   closedChan(),
	}
	return nil
}

// Unregister removes a non built-in family. Built-ins cannot be removed.
func (r *Registry) Unregister(name string) bool {
	key := normalizeFamily(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.families[key]
	if !ok || f.source == SourceBuiltin {
		return false
	}
	delete(r.families, key)
	return true
}

// EnsureLoaded starts loading family if it is unknown and returns a channel
// that is closed once the attempt has finished, successfully or not.
// Concurrent calls for the same family share one attempt.
func (r *Registry) EnsureLoaded(name string) <-chan struct{} {
	display := displayFamily(name)
	key := normalizeFamily(display)
	if key == "" {
		return closedChan()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.families[key]; ok {
		retry := f.status == StatusFailed && time.Since(f.failedAt) >= r.failureTTL
		if !retry {
			return f.done
		}
	} else if !r.hasRoomLocked() {
		r.logger.Warn("Font family not loaded, remote family limit reached",
			zap.String("family", display),
			zap.Int("limit", r.maxRemote),
		)
		return closedChan()
	}
	if r.fetcher == nil {
		f := &family{name: display, source: SourceRemote, status: StatusFailed, done: closedChan(), failedAt: time.Now()}
		r.families[key] = f
		return f.done
	}

	f := &family{
		name:   display,
		source: SourceRemote,
		status: StatusLoading,
		done:   make(chan struct{}),
	}
	r.families[key] = f

	r.wg.Add(1)
	go r.load(key, f)
	return f.done
}

// hasRoomLocked reports whether another remote family may be tracked.
// Failed families past their failure TTL are dropped to make room.
func (r *Registry) hasRoomLocked() bool {
	if r.maxRemote <= 0 {
		return true
	}
	remote := 0
	for key, f := range r.families {
		if f.source != SourceRemote {
			continue
		}
		if f.status == StatusFailed && time.Since(f.failedAt) >= r.failureTTL {
			delete(r.families, key)
			continue
		}
		remote++
	}
	return remote < r.maxRemote
}

// IsReady reports whether family can be rendered without fallback
func (r *Registry) IsReady(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.families[normalizeFamily(name)]
	return ok && f.status == StatusReady
}

// Status returns the load state of a family
func (r *Registry) Status(name string) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.families[normalizeFamily(name)]
	if !ok {
		return "", false
	}
	return f.status, true
}

// Face returns a face for the family at size points (72 DPI). Families that
// are not ready fall back to the Go family; missing variants fall back to
// the closest one the family has. The face is not safe for concurrent use.
func (r *Registry) Face(name string, weight designer.FontWeight, style designer.FontStyle, size float64) (font.Face, error) {
	v := Variant{Weight: weight, Style: style}

	r.mu.RLock()
	f, ok := r.families[normalizeFamily(name)]
	if !ok || f.status != StatusReady {
		f = r.families[normalizeFamily(FallbackFamily)]
	}
	otf := pick(f.fonts, v)
	r.mu.RUnlock()

	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    size,
		DPI:     designer.ReferenceDPI,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face for %q: %w", name, err)
	}
	return face, nil
}

// Families lists every known family, built-ins first, then by name
func (r *Registry) Families() []FamilyInfo {
	r.mu.RLock()
	infos := make([]FamilyInfo, 0, len(r.families))
	for _, f := range r.families {
		infos = append(infos, FamilyInfo{
			Name:     f.name,
			Source:   f.source,
			Status:   f.status,
			Variants: f.variantNames(),
		})
	}
	r.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		bi, bj := infos[i].Source == SourceBuiltin, infos[j].Source == SourceBuiltin
		if bi != bj {
			return bi
		}
		return normalizeFamily(infos[i].Name) < normalizeFamily(infos[j].Name)
	})
	return infos
}

func (r *Registry) load(key string, f *family) {
	defer r.wg.Done()
	defer close(f.done)

	ctx, span := telemetry.StartSpan(r.ctx, "fonts.load",
		telemetry.WithAttribute(telemetry.SpanAttrFontFamily, f.name),
	)
	defer span.End()
	start := time.Now()

	files, source, err := r.resolve(ctx, key, f.name)
	var parsed map[Variant]*opentype.Font
	if err == nil {
		parsed, err = parseVariants(files)
	}

	r.mu.Lock()
	if err != nil {
		f.status = StatusFailed
		f.failedAt = time.Now()
	} else {
		f.status = StatusReady
		f.fonts = parsed
	}
	r.mu.Unlock()

	telemetry.SetAttributes(span, telemetry.SpanAttrFontSource, source)
	if err != nil {
		telemetry.RecordError(span, err)
		r.metrics.FontLoaded(ctx, string(SourceRemote), time.Since(start), telemetry.OutcomeFailure)
		r.logger.Warn("Font family could not be loaded; rendering falls back to "+FallbackFamily,
			zap.String("family", f.name),
			zap.Error(err),
		)
		return
	}

	telemetry.SetOK(span)
	outcome := telemetry.OutcomeSuccess
	if source == "cache" {
		outcome = telemetry.OutcomeCached
	}
	r.metrics.FontLoaded(ctx, string(SourceRemote), time.Since(start), outcome)
	r.logger.Info("Font family loaded",
		zap.String("family", f.name),
		zap.String("from", source),
		zap.Strings("variants", f.variantNames()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// resolve returns the font files of a family from the cache or the fetcher
func (r *Registry) resolve(ctx context.Context, key, name string) (map[Variant][]byte, string, error) {
	cacheKey := "fonts:family:" + key
	if r.cache != nil {
		raw, ok, err := r.cache.Get(ctx, cacheKey)
		if err != nil {
			r.logger.Debug("Font cache read failed", zap.String("family", name), zap.Error(err))
		} else if ok {
			if files, err := decodeFiles(raw); err == nil {
				return files, "cache", nil
			}
		}
	}

	files, err := r.fetcher.Fetch(ctx, name)
	if err != nil {
		return nil, "fetch", err
	}

	if r.cache != nil {
		if raw, err := encodeFiles(files); err == nil {
			if err := r.cache.Set(ctx, cacheKey, raw, r.cacheTTL); err != nil {
				r.logger.Debug("Font cache write failed", zap.String("family", name), zap.Error(err))
			}
		}
	}
	return files, "fetch", nil
}

func parseVariants(files map[Variant][]byte) (map[Variant]*opentype.Font, error) {
	if len(files) == 0 {
		return nil, ErrNoFontFaces
	}
	parsed := make(map[Variant]*opentype.Font, len(files))
	for v, data := range files {
		otf, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", v, err)
		}
		parsed[v] = otf
	}
	return parsed, nil
}

// pick returns the best available font for v
func pick(fonts map[Variant]*opentype.Font, v Variant) *opentype.Font {
	for _, candidate := range v.fallbacks() {
		if f, ok := fonts[candidate]; ok {
			return f
		}
	}
	// A family with only exotic variants: take any, deterministically
	keys := make([]string, 0, len(fonts))
	byName := make(map[string]*opentype.Font, len(fonts))
	for k, f := range fonts {
		keys = append(keys, k.String())
		byName[k.String()] = f
	}
	sort.Strings(keys)
	return byName[keys[0]]
}

func encodeFiles(files map[Variant][]byte) ([]byte, error) {
	m := make(map[string][]byte, len(files))
	for v, data := range files {
		m[v.String()] = data
	}
	return json.Marshal(m)
}

func decodeFiles(raw []byte) (map[Variant][]byte, error) {
	var m map[string][]byte
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	files := make(map[Variant][]byte, len(m))
	for name, data := range m {
		v, ok := ParseVariant(name)
		if !ok {
			return nil, fmt.Errorf("unknown variant %q", name)
		}
		files[v] = data
	}
	if len(files) == 0 {
		return nil, ErrNoFontFaces
	}
	return files, nil
}

func closedChan() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}

var _ designer.FontLoader = (*Registry)(nil)
