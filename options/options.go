// Package options is the UCI option registry: named, typed settings a
// controller can list with "uci" and change with "setoption".
package options

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var (
	// ErrUnknownOption is returned when no option has the requested name.
	ErrUnknownOption = errors.New("no such option")
	// ErrInvalidValue is returned when a value does not fit the option's type.
	ErrInvalidValue = errors.New("invalid option value")
)

// Kind is the UCI type of an option.
type Kind string

const (
	KindCheck  Kind = "check"
	KindSpin   Kind = "spin"
	KindCombo  Kind = "combo"
	KindButton Kind = "button"
	KindString Kind = "string"
)

// Option is one registry entry. The current value is always kept as text,
// the way the protocol carries it.
type Option struct {
	Name     string
	Kind     Kind
	Default  string
	Min, Max int
	Vars     []string
	OnChange func(*Option)

	value string
	idx   int
}

// Check returns a boolean option.
func Check(name string, def bool, onChange func(*Option)) *Option {
	return &Option{Name: name, Kind: KindCheck, Default: strconv.FormatBool(def), OnChange: onChange}
}

// Spin returns an integer option bounded to [min, max].
func Spin(name string, def, min, max int, onChange func(*Option)) *Option {
	return &Option{Name: name, Kind: KindSpin, Default: strconv.Itoa(def), Min: min, Max: max, OnChange: onChange}
}

// Combo returns an option restricted to one of vars.
func Combo(name, def string, vars []string, onChange func(*Option)) *Option {
	return &Option{Name: name, Kind: KindCombo, Default: def, Vars: vars, OnChange: onChange}
}

// Button returns a valueless option that only triggers onChange.
func Button(name string, onChange func(*Option)) *Option {
	return &Option{Name: name, Kind: KindButton, OnChange: onChange}
}

// String returns a free text option.
func String(name, def string, onChange func(*Option)) *Option {
	return &Option{Name: name, Kind: KindString, Default: def, OnChange: onChange}
}

// Value returns the current text value.
func (o *Option) Value() string { return o.value }

// Bool returns the value of a check option.
func (o *Option) Bool() bool { return o.value == "true" }

// Int returns the value of a spin option.
func (o *Option) Int() int {
	n, _ := strconv.Atoi(o.value)
	return n
}

func (o *Option) validate(value string) error {
	switch o.Kind {
	case KindCheck:
		if value != "true" && value != "false" {
			return fmt.Errorf("%w: %s expects true or false, got %q", ErrInvalidValue, o.Name, value)
		}
	case KindSpin:
		n, err := strconv.Atoi(value)
		if err != nil || n < o.Min || n > o.Max {
			return fmt.Errorf("%w: %s expects an integer in [%d, %d], got %q", ErrInvalidValue, o.Name, o.Min, o.Max, value)
		}
	case KindCombo:
		if !slices.ContainsFunc(o.Vars, func(v string) bool { return strings.EqualFold(v, value) }) {
			return fmt.Errorf("%w: %s expects one of %s, got %q", ErrInvalidValue, o.Name, strings.Join(o.Vars, ", "), value)
		}
	case KindString:
		if value == "" {
			return fmt.Errorf("%w: %s expects a value", ErrInvalidValue, o.Name)
		}
	}
	return nil
}

// String formats the option the way "uci" lists it.
func (o *Option) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "option name %s type %s", o.Name, o.Kind)
	switch o.Kind {
	case KindCheck, KindString:
		fmt.Fprintf(&sb, " default %s", o.Default)
	case KindSpin:
		fmt.Fprintf(&sb, " default %s min %d max %d", o.Default, o.Min, o.Max)
	case KindCombo:
		fmt.Fprintf(&sb, " default %s", o.Default)
		for _, v := range o.Vars {
			fmt.Fprintf(&sb, " var %s", v)
		}
	}
	return sb.String()
}

// Registry holds the options by case-insensitive name. It is not safe for
// concurrent use: only the protocol loop touches it.
type Registry struct {
	opts map[string]*Option
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{opts: make(map[string]*Option)}
}

// Add registers o with its default value. Options are listed in the order
// they were added.
func (r *Registry) Add(o *Option) {
	key := strings.ToLower(o.Name)
	if _, ok := r.opts[key]; ok {
		panic(fmt.Sprintf("options: duplicate option %q", o.Name))
	}
	o.idx = len(r.opts)
	o.value = o.Default
	r.opts[key] = o
}

// Get returns the option called name.
func (r *Registry) Get(name string) (*Option, bool) {
	o, ok := r.opts[strings.ToLower(name)]
	return o, ok
}

// Has reports whether an option called name exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Value returns the text value of name, or "" when it does not exist.
func (r *Registry) Value(name string) string {
	if o, ok := r.Get(name); ok {
		return o.value
	}
	return ""
}

// Bool returns the value of the check option name.
func (r *Registry) Bool(name string) bool {
	o, ok := r.Get(name)
	return ok && o.Bool()
}

// Int returns the value of the spin option name.
func (r *Registry) Int(name string) int {
	if o, ok := r.Get(name); ok {
		return o.Int()
	}
	return 0
}

// Set validates and stores value, then fires the option's hook. Buttons only
// fire the hook. On error the stored value is unchanged.
func (r *Registry) Set(name, value string) error {
	o, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}
	if err := o.validate(value); err != nil {
		return err
	}
	if o.Kind != KindButton {
		o.value = value
	}
	if o.OnChange != nil {
		o.OnChange(o)
	}
	return nil
}

// Sorted returns the options in registration order.
func (r *Registry) Sorted() []*Option {
	list := maps.Values(r.opts)
	slices.SortFunc(list, func(a, b *Option) bool { return a.idx < b.idx })
	return list
}

// String lists every option, each on its own line preceded by a newline, so
// that it can be placed between the "id" lines and "uciok".
func (r *Registry) String() string {
	var sb strings.Builder
	for _, o := range r.Sorted() {
		sb.WriteByte('\n')
		sb.WriteString(o.String())
	}
	return sb.String()
}
