package commands

import (
	"fmt"
	"strings"

	"taskdash/internal/service"
)

// optionalString is a string flag that remembers whether it was given, so
// "--description ''" can clear a field while an absent flag leaves it alone.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(v string) error {
	o.value = v
	o.set = true
	return nil
}

// ptr returns nil when the flag was not given.
func (o *optionalString) ptr() *string {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

func (o *optionalString) reset() { *o = optionalString{} }

// statusFlag accepts one of the task states, plus "all" when allowAll is set.
type statusFlag struct {
	value    service.Status
	set      bool
	allowAll bool
}

func (s *statusFlag) String() string { return string(s.value) }

func (s *statusFlag) Set(v string) error {
	st := service.Status(strings.ToLower(strings.TrimSpace(v)))
	if !st.Valid() && !(s.allowAll && st == service.StatusAll) {
		return fmt.Errorf("invalid status: %s", v)
	}
	s.value = st
	s.set = true
	return nil
}

func (s *statusFlag) reset(def service.Status, allowAll bool) {
	*s = statusFlag{value: def, allowAll: allowAll}
}

// ptr returns nil when the flag was not given.
func (s *statusFlag) ptr() *service.Status {
	if !s.set {
		return nil
	}
	v := s.value
	return &v
}
