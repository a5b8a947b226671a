package spryk

import "strings"

// Action names a spryk understood by spryk-run.
type Action string

const (
	AddSharedTransferProperty     Action = "AddSharedTransferProperty"
	AddSharedTransferDefinition   Action = "AddSharedTransferDefinition"
	AddMessageBrokerHandlerPlugin Action = "AddMessageBrokerHandlerPlugin"
)

// Mode selects where spryk-run generates code.
type Mode string

const (
	ModeProject Mode = "project"
	ModeCore    Mode = "core"
)

// CoreOrganization switches generation into core mode.
const CoreOrganization = "Spryker"

// ModeFor returns the spryk mode for an organization.
func ModeFor(organization string) Mode {
	if organization == CoreOrganization {
		return ModeCore
	}
	return ModeProject
}

// CommandDescriptor is one invocation of spryk-run.
type CommandDescriptor struct {
	Action       Action
	Mode         Mode
	Organization string
	Module       string
	Name         string // transfer name
	PropertyName string // single name or comma separated name:type pairs
	PropertyType string
	MessageName  string
	Verbose      bool
}

// Key identifies a descriptor inside a Set. Descriptors sharing a key
// replace each other.
func (d CommandDescriptor) Key() string {
	parts := []string{string(d.Action), d.Module, d.Name}
	switch d.Action {
	case AddMessageBrokerHandlerPlugin:
		parts = append(parts, d.MessageName)
	case AddSharedTransferProperty:
		// Transfers built from a whole schema are keyed by the transfer
		// only, single properties by transfer and property.
		if d.PropertyType != "" {
			parts = append(parts, d.PropertyName)
		}
	}
	return strings.Join(parts, "|")
}

// Args renders the argument list following the spryk-run flag convention.
func (d CommandDescriptor) Args() []string {
	args := []string{
		string(d.Action),
		"--mode", string(d.Mode),
		"--organization", d.Organization,
		"--module", d.Module,
	}
	if d.Name != "" {
		args = append(args, "--name", d.Name)
	}
	if d.PropertyName != "" {
		args = append(args, "--propertyName", d.PropertyName)
	}
	if d.PropertyType != "" {
		args = append(args, "--propertyType", d.PropertyType)
	}
	if d.MessageName != "" {
		args = append(args, "--messageName", d.MessageName)
	}
	args = append(args, "-n")
	if d.Verbose {
		args = append(args, "-v")
	}
	return args
}

func (d CommandDescriptor) String() string {
	return strings.Join(d.Args(), " ")
}

// Set is an insertion ordered collection of descriptors keyed by Key.
// Putting a descriptor with a known key keeps the original position and
// replaces the value.
type Set struct {
	keys  []string
	items map[string]CommandDescriptor
}

func NewSet() *Set {
	return &Set{items: make(map[string]CommandDescriptor)}
}

// Put stores d and reports whether an earlier descriptor was replaced.
func (s *Set) Put(d CommandDescriptor) (replaced bool) {
	k := d.Key()
	if _, ok := s.items[k]; ok {
		s.items[k] = d
		return true
	}
	s.keys = append(s.keys, k)
	s.items[k] = d
	return false
}

// Get returns the descriptor stored under key.
func (s *Set) Get(key string) (CommandDescriptor, bool) {
	d, ok := s.items[key]
	return d, ok
}

func (s *Set) Len() int { return len(s.keys) }

// Descriptors returns the stored descriptors in insertion order.
func (s *Set) Descriptors() []CommandDescriptor {
	out := make([]CommandDescriptor, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.items[k])
	}
	return out
}
