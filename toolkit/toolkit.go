package toolkit

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/rickchristie/reagent"
	"github.com/rickchristie/reagent/schema"
)

// registered is a tool with its compiled argument schema.
type registered struct {
	tool      reagent.Tool
	schema    *schema.Schema
	cacheable bool
	group     string
}

// group is a named set of tools equipped and unequipped together.
type group struct {
	description string
	active      bool
}

// Toolkit is the registry of tools available to an agent.
//
// Toolkit is safe for concurrent use. Invocations read a snapshot of the
// registry, so equipping tools from inside a tool call is allowed.
type Toolkit struct {
	mu        sync.RWMutex
	tools     map[string]*registered
	order     []string
	equipped  map[string]bool
	groups    map[string]*group
	reserved  map[string]bool
	autoEquip bool
	cache     *resultCache
	logger    *slog.Logger
}

// Option configures a [Toolkit].
type Option func(*Toolkit)

// WithAutoEquip makes [Toolkit.Register] equip every tool it registers,
// unless the tool belongs to an inactive group.
func WithAutoEquip() Option {
	return func(t *Toolkit) { t.autoEquip = true }
}

// WithCache enables the result cache for tools registered with [Cacheable].
// A non-positive ttl keeps entries until evicted.
func WithCache(size int, ttl time.Duration) Option {
	return func(t *Toolkit) {
		if c, err := newResultCache(size, ttl); err == nil {
			t.cache = c
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Toolkit) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New creates an empty toolkit.
func New(opts ...Option) *Toolkit {
	t := &Toolkit{
		tools:    make(map[string]*registered),
		equipped: make(map[string]bool),
		groups:   make(map[string]*group),
		reserved: make(map[string]bool),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Reserve makes names unavailable to [Toolkit.Register]. Tools already
// registered under a reserved name stay registered.
func (t *Toolkit) Reserve(names ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, name := range names {
		t.reserved[name] = true
	}
}

// RegisterOption configures a single registration.
type RegisterOption func(*registered)

// Cacheable marks a tool whose result depends only on its arguments. Results
// are served from the cache when the toolkit has one, see [WithCache].
func Cacheable() RegisterOption {
	return func(r *registered) { r.cacheable = true }
}

// InGroup puts the tool in a group registered with [Toolkit.RegisterGroup].
func InGroup(name string) RegisterOption {
	return func(r *registered) { r.group = name }
}

// Register adds a tool. Names are unique; registering a name twice returns
// [reagent.ErrDuplicateTool], registering a reserved name returns
// [reagent.ErrReservedName]. The tool is not equipped unless the toolkit was
// built with [WithAutoEquip] or it joins an active group.
func (t *Toolkit) Register(tool reagent.Tool, opts ...RegisterOption) error {
	d := tool.Descriptor()
	if d.Name == "" {
		return fmt.Errorf("register tool: empty name")
	}

	compiled, err := schema.ForTool(d)
	if err != nil {
		return fmt.Errorf("register tool: %w", err)
	}
	r := &registered{tool: tool, schema: compiled}
	for _, opt := range opts {
		opt(r)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.reserved[d.Name] {
		return fmt.Errorf("%w: %s", reagent.ErrReservedName, d.Name)
	}
	if _, exists := t.tools[d.Name]; exists {
		return fmt.Errorf("%w: %s", reagent.ErrDuplicateTool, d.Name)
	}

	equip := t.autoEquip
	if r.group != "" {
		g, ok := t.groups[r.group]
		if !ok {
			return fmt.Errorf("register tool %s: unknown group %q", d.Name, r.group)
		}
		equip = g.active
	}

	t.tools[d.Name] = r
	t.order = append(t.order, d.Name)
	if equip {
		t.equipped[d.Name] = true
	}
	return nil
}

// MustRegister is like [Toolkit.Register] but panics on error.
func (t *Toolkit) MustRegister(tool reagent.Tool, opts ...RegisterOption) {
	if err := t.Register(tool, opts...); err != nil {
		panic(err)
	}
}

// Equip makes the named tools visible and invocable. Unknown names fail with
// [reagent.ErrUnknownAction] and nothing is equipped.
func (t *Toolkit) Equip(names ...string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, name := range names {
		if _, ok := t.tools[name]; !ok {
			return fmt.Errorf("%w: %s", reagent.ErrUnknownAction, name)
		}
	}
	for _, name := range names {
		t.equipped[name] = true
	}
	return nil
}

// Unequip hides the named tools. Unknown names are ignored.
func (t *Toolkit) Unequip(names ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, name := range names {
		delete(t.equipped, name)
	}
}

// Equipped returns the names of the equipped tools in registration order.
func (t *Toolkit) Equipped() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []string
	for _, name := range t.order {
		if t.equipped[name] {
			out = append(out, name)
		}
	}
	return out
}

// IsEquipped reports whether name is equipped.
func (t *Toolkit) IsEquipped(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.equipped[name]
}

// Names returns every registered tool name in registration order.
func (t *Toolkit) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.order)
}

// Descriptors returns the descriptors of the equipped tools in registration
// order. This is what the model sees.
func (t *Toolkit) Descriptors() []reagent.ToolDescriptor {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []reagent.ToolDescriptor
	for _, name := range t.order {
		if t.equipped[name] {
			out = append(out, t.tools[name].tool.Descriptor())
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Groups
// -----------------------------------------------------------------------------

// RegisterGroup declares an inactive group.
func (t *Toolkit) RegisterGroup(name, description string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.groups[name]; exists {
		return fmt.Errorf("group %q already registered", name)
	}
	t.groups[name] = &group{description: description}
	return nil
}

// ActivateGroup equips every tool of the group.
func (t *Toolkit) ActivateGroup(name string) error {
	return t.setGroup(name, true)
}

// DeactivateGroup unequips every tool of the group.
func (t *Toolkit) DeactivateGroup(name string) error {
	return t.setGroup(name, false)
}

func (t *Toolkit) setGroup(name string, active bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.groups[name]
	if !ok {
		return fmt.Errorf("unknown group %q", name)
	}
	g.active = active
	for toolName, r := range t.tools {
		if r.group != name {
			continue
		}
		if active {
			t.equipped[toolName] = true
		} else {
			delete(t.equipped, toolName)
		}
	}
	return nil
}

// ActiveGroups returns the names of the active groups, sorted.
func (t *Toolkit) ActiveGroups() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []string
	for name, g := range t.groups {
		if g.active {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// lookup returns the equipped tool with the given name.
func (t *Toolkit) lookup(name string) (*registered, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.equipped[name] {
		return nil, false
	}
	r, ok := t.tools[name]
	return r, ok
}
